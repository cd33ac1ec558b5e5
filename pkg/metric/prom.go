package metric

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	// unit is ms
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocode_store_latency",
		Help:    "point store operation latency",
		Buckets: prometheus.ExponentialBuckets(0.125, 2, 17),
	}, []string{"op"})

	StoreOpCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_store_op_cnt",
		Help: "point store operation counter",
	}, []string{"op"})

	ErrorCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_error_cnt",
		Help: "error counter by component and kind",
	}, []string{"component", "error_info"})

	PointsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geocode_points_indexed_total",
		Help: "points encoded and written to the point store",
	})

	CellOpCnt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_cell_op_cnt",
		Help: "cell operations by source",
	}, []string{"source"})
)

// WriteText gathers g and writes it in the Prometheus text exposition
// format. Commands are short lived, so this is how their counters leave
// the process.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
