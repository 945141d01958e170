package cache

// NoCache calls setFn on every lookup
var NoCache Cache = &noCache{}

type noCache struct{}

func (m *noCache) Name() string { return "no-cache" }

func (m *noCache) GetOrSet(_ interface{}, setFn SetFn) (v interface{}, err error) {
	return setFn()
}
