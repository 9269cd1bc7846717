package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	Namespace = "snowbridge"
)

type Metrics struct {
	RowsReadCounter        *prometheus.CounterVec
	RowsWrittenCounter     *prometheus.CounterVec
	BytesStagedCounter     *prometheus.CounterVec
	BatchesUploadedCounter *prometheus.CounterVec
	SplitsProcessedCounter *prometheus.CounterVec
	ErrorCounter           *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := Metrics{}
	m.RowsReadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rows_read",
			Help:      "number of rows read from staged source splits",
		}, []string{"pipeline"})
	m.RowsWrittenCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rows_written",
			Help:      "number of rows buffered into sink batches",
		}, []string{"pipeline"})
	m.BytesStagedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_staged",
			Help:      "total bytes of batches uploaded to the stage",
		}, []string{"pipeline"})
	m.BatchesUploadedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batches_uploaded",
			Help:      "number of batches uploaded to the stage",
		}, []string{"pipeline"})
	m.SplitsProcessedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "splits_processed",
			Help:      "number of source splits fully read",
		}, []string{"pipeline"})
	m.ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "error_count",
			Help:      "Total error count during transfers",
		}, []string{"pipeline"})
	return &m
}

func (m *Metrics) RegisterTo(registry prometheus.Registerer) {
	registry.MustRegister(m.RowsReadCounter)
	registry.MustRegister(m.RowsWrittenCounter)
	registry.MustRegister(m.BytesStagedCounter)
	registry.MustRegister(m.BatchesUploadedCounter)
	registry.MustRegister(m.SplitsProcessedCounter)
	registry.MustRegister(m.ErrorCounter)
}

func (m *Metrics) UnregisterFrom(registry *prometheus.Registry) {
	registry.Unregister(m.RowsReadCounter)
	registry.Unregister(m.RowsWrittenCounter)
	registry.Unregister(m.BytesStagedCounter)
	registry.Unregister(m.BatchesUploadedCounter)
	registry.Unregister(m.SplitsProcessedCounter)
	registry.Unregister(m.ErrorCounter)
}

// ReadCounter reports the current value of the counter for a specific pipeline.
func ReadCounter(counterVec *prometheus.CounterVec, pipeline string) float64 {
	if counterVec == nil {
		return math.NaN()
	}
	counter := counterVec.With(prometheus.Labels{"pipeline": pipeline})
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return math.NaN()
	}
	return metric.Counter.GetValue()
}

// AddCounter adds a counter for a specific pipeline.
func AddCounter(counterVec *prometheus.CounterVec, v float64, pipeline string) {
	if counterVec == nil {
		return
	}
	counterVec.With(prometheus.Labels{"pipeline": pipeline}).Add(v)
}
