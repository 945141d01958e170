package metastore

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestHistograms = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "metastore_request_duration_seconds",
		Help:    "request durations for the metastore Store",
		Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"type", "operation", "status"})

// StoreMetricsWrapper wraps any Store with metrics
type StoreMetricsWrapper struct {
	Store     Store
	StoreType string
}

func errorStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrStorageFault):
		return "storage_fault"
	default:
		return "error"
	}
}

func (s *StoreMetricsWrapper) wrapWithMetrics(op string, f func() error) {
	start := time.Now()
	err := f()
	requestHistograms.WithLabelValues(s.StoreType, op, errorStatus(err)).Observe(time.Since(start).Seconds())
}

func (s *StoreMetricsWrapper) Create(ctx context.Context, packageID string, metadata Package, params CreateParams) (*PackageRevisionInfo, error) {
	var res *PackageRevisionInfo
	var err error
	s.wrapWithMetrics("Create", func() error {
		res, err = s.Store.Create(ctx, packageID, metadata, params)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) Fetch(ctx context.Context, packageID, revisionRef string) (*PackageRevisionInfo, error) {
	var res *PackageRevisionInfo
	var err error
	s.wrapWithMetrics("Fetch", func() error {
		res, err = s.Store.Fetch(ctx, packageID, revisionRef)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) Update(ctx context.Context, packageID string, metadata Package, params UpdateParams) (*PackageRevisionInfo, error) {
	var res *PackageRevisionInfo
	var err error
	s.wrapWithMetrics("Update", func() error {
		res, err = s.Store.Update(ctx, packageID, metadata, params)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) Delete(ctx context.Context, packageID string) error {
	var err error
	s.wrapWithMetrics("Delete", func() error {
		err = s.Store.Delete(ctx, packageID)
		return err
	})
	return err
}

func (s *StoreMetricsWrapper) RevisionList(ctx context.Context, packageID string) ([]*PackageRevisionInfo, error) {
	var res []*PackageRevisionInfo
	var err error
	s.wrapWithMetrics("RevisionList", func() error {
		res, err = s.Store.RevisionList(ctx, packageID)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) RevisionFetch(ctx context.Context, packageID, revisionRef string) (*PackageRevisionInfo, error) {
	var res *PackageRevisionInfo
	var err error
	s.wrapWithMetrics("RevisionFetch", func() error {
		res, err = s.Store.RevisionFetch(ctx, packageID, revisionRef)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) TagCreate(ctx context.Context, packageID, revisionRef, name string, params TagCreateParams) (*TagInfo, error) {
	var res *TagInfo
	var err error
	s.wrapWithMetrics("TagCreate", func() error {
		res, err = s.Store.TagCreate(ctx, packageID, revisionRef, name, params)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) TagList(ctx context.Context, packageID string) ([]*TagInfo, error) {
	var res []*TagInfo
	var err error
	s.wrapWithMetrics("TagList", func() error {
		res, err = s.Store.TagList(ctx, packageID)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) TagFetch(ctx context.Context, packageID, name string) (*TagInfo, error) {
	var res *TagInfo
	var err error
	s.wrapWithMetrics("TagFetch", func() error {
		res, err = s.Store.TagFetch(ctx, packageID, name)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) TagUpdate(ctx context.Context, packageID, name string, params TagUpdateParams) (*TagInfo, error) {
	var res *TagInfo
	var err error
	s.wrapWithMetrics("TagUpdate", func() error {
		res, err = s.Store.TagUpdate(ctx, packageID, name, params)
		return err
	})
	return res, err
}

func (s *StoreMetricsWrapper) TagDelete(ctx context.Context, packageID, name string) error {
	var err error
	s.wrapWithMetrics("TagDelete", func() error {
		err = s.Store.TagDelete(ctx, packageID, name)
		return err
	})
	return err
}
