package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register adds every service collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		MustRegister(prometheus.DefaultRegisterer)
	})
}

// MustRegister adds every service collector to reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(httpCollectors()...)
	reg.MustRegister(embeddingCollectors()...)
	reg.MustRegister(pipelineCollectors()...)
}
