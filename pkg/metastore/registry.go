package metastore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/treeverse/metastore/pkg/metastore/params"
)

// Driver is the interface to open a Store. Each backend implements a Driver and registers it
// by name.
type Driver interface {
	// Open returns a Store configured by params. Implementations must fail here, not on a
	// later call, when params are incomplete.
	Open(ctx context.Context, params params.Params) (Store, error)
}

// DriverFunc adapts a function to a Driver
type DriverFunc func(ctx context.Context, params params.Params) (Store, error)

func (f DriverFunc) Open(ctx context.Context, params params.Params) (Store, error) {
	return f(ctx, params)
}

var (
	drivers   = make(map[string]Driver)
	driversMu sync.RWMutex
)

// Register 'driver' implementation under 'name'. Panic in case of empty name, nil driver or name already registered.
func Register(name string, driver Driver) {
	if name == "" {
		panic("metastore register name is missing")
	}
	if driver == nil {
		panic("metastore Register driver is nil")
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, found := drivers[name]; found {
		panic("metastore Register driver already registered " + name)
	}
	drivers[name] = driver
}

// UnregisterAllDrivers remove all loaded drivers, used for test code.
func UnregisterAllDrivers() {
	driversMu.Lock()
	defer driversMu.Unlock()
	for k := range drivers {
		delete(drivers, k)
	}
}

// Open looks up the driver registered under params.Type and opens a Store with it.
// The returned store reports request durations.
// Failed with ErrUnknownDriver in case the type is not registered.
func Open(ctx context.Context, p params.Params) (Store, error) {
	driversMu.RLock()
	d, ok := drivers[p.Type]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, p.Type)
	}
	store, err := d.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	return &StoreMetricsWrapper{Store: store, StoreType: p.Type}, nil
}

// Drivers returns the sorted list of registered driver names
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
