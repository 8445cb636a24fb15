package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK      = "ok"
	ResultDropped = "dropped"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	inboxFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antbuf",
			Subsystem: "inbox",
			Name:      "frames_total",
			Help:      "Frames offered to the inbox by result.",
		},
		[]string{"inbox", "result"},
	)
	inboxDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "antbuf",
			Subsystem: "inbox",
			Name:      "depth",
			Help:      "Frames queued in the inbox.",
		},
		[]string{"inbox"},
	)
	codecFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antbuf",
			Subsystem: "codec",
			Name:      "frames_total",
			Help:      "Frames encoded or decoded by the CLI by result.",
		},
		[]string{"op", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(inboxFrames, inboxDepth, codecFrames)
	})
}

func RecordInboxOffer(inbox, result string, depth int) {
	RegisterMetrics()
	inboxFrames.WithLabelValues(inbox, result).Inc()
	inboxDepth.WithLabelValues(inbox).Set(float64(depth))
}

func RecordInboxDepth(inbox string, depth int) {
	RegisterMetrics()
	inboxDepth.WithLabelValues(inbox).Set(float64(depth))
}

func RecordCodec(op string, err error) {
	RegisterMetrics()
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	codecFrames.WithLabelValues(op, result).Inc()
}

// Gather returns the current samples of every antbuf metric family.
func Gather() ([]Sample, error) {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "antbuf_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			out = append(out, Sample{Name: name, Labels: labels, Value: v})
		}
	}
	return out, nil
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}
