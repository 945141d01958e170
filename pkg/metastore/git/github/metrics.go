package github

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/treeverse/metastore/pkg/metastore/git"
)

var apiRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "metastore_github_request_duration_seconds",
		Help:    "GitHub API request durations",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "status"})

func requestStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, git.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, git.ErrRepositoryExists), errors.Is(err, git.ErrRefExists):
		return "conflict"
	case errors.Is(err, git.ErrRefRejected), errors.Is(err, git.ErrTagRejected):
		return "rejected"
	default:
		return "error"
	}
}

// observe waits for the rate limiter, then runs a single API request and reports its duration
func (h *Host) observe(op string, f func() error) error {
	h.limiter.Take()
	start := time.Now()
	err := f()
	apiRequestDuration.WithLabelValues(op, requestStatus(err)).Observe(time.Since(start).Seconds())
	return err
}
