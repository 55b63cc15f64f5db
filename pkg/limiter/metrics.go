package limiter

// Recorder receives the counters and timings emitted by the backends.
type Recorder interface {
	Add(name string, value float64, tags map[string]string)
	Observe(name string, value float64, tags map[string]string)
}

// NopRecorder discards everything. It keeps the hot path free of
// 'if recorder != nil' checks.
type NopRecorder struct{}

func (NopRecorder) Add(name string, value float64, tags map[string]string)     {}
func (NopRecorder) Observe(name string, value float64, tags map[string]string) {}
