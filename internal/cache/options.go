package cache

import "github.com/prometheus/client_golang/prometheus"

type options struct {
	registerer prometheus.Registerer
	namespace  string
}

// Option configures a Cache.
type Option func(*options)

// WithMetrics registers hit, miss, eviction and size collectors on reg.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(o *options) {
		o.registerer = reg
		o.namespace = namespace
	}
}
