package statistics

import (
	"sync"
	"time"

	"github.com/markusressel/epfa/internal/transducer"
	"github.com/prometheus/client_golang/prometheus"
)

const adjustSubsystem = "adjust"

const (
	ResultSuccess   = "success"
	ResultMalformed = "malformed"
	ResultError     = "error"
)

type sourceResult struct {
	source string
	result string
}

// AdjustStatistics accumulates the outcome of transducer runs.
// It is safe for concurrent use.
type AdjustStatistics struct {
	mu sync.Mutex

	runs          map[sourceResult]int
	processed     map[string]int
	inserted      map[string]int
	openOverrides map[string]int
	lastRun       map[string]time.Time
}

func NewAdjustStatistics() *AdjustStatistics {
	return &AdjustStatistics{
		runs:          map[sourceResult]int{},
		processed:     map[string]int{},
		inserted:      map[string]int{},
		openOverrides: map[string]int{},
		lastRun:       map[string]time.Time{},
	}
}

// Record adds the outcome of a single run. result is ignored if err is not nil.
func (s *AdjustStatistics) Record(source string, result transducer.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRun[source] = time.Now()

	if err != nil {
		outcome := ResultError
		if transducer.IsMalformedFanCommand(err) {
			outcome = ResultMalformed
		}
		s.runs[sourceResult{source, outcome}]++
		return
	}

	s.runs[sourceResult{source, ResultSuccess}]++
	s.processed[source] += len(result.Lines) - result.Changes
	s.inserted[source] += result.Changes
	if result.OverrideOpenAtEnd {
		s.openOverrides[source]++
	}
}

type AdjustCollector struct {
	statistics *AdjustStatistics

	runs          *prometheus.Desc
	processed     *prometheus.Desc
	inserted      *prometheus.Desc
	openOverrides *prometheus.Desc
	lastRun       *prometheus.Desc
}

func NewAdjustCollector(statistics *AdjustStatistics) *AdjustCollector {
	return &AdjustCollector{
		statistics: statistics,
		runs: prometheus.NewDesc(prometheus.BuildFQName(namespace, adjustSubsystem, "runs_total"),
			"Number of processed G-code files",
			[]string{"source", "result"}, nil,
		),
		processed: prometheus.NewDesc(prometheus.BuildFQName(namespace, adjustSubsystem, "lines_total"),
			"Number of G-code lines passed through the transducer",
			[]string{"source"}, nil,
		),
		inserted: prometheus.NewDesc(prometheus.BuildFQName(namespace, adjustSubsystem, "inserted_lines_total"),
			"Number of fan commands inserted for outer walls",
			[]string{"source"}, nil,
		),
		openOverrides: prometheus.NewDesc(prometheus.BuildFQName(namespace, adjustSubsystem, "open_overrides_total"),
			"Number of files that ended while the outer wall fan speed was still active",
			[]string{"source"}, nil,
		),
		lastRun: prometheus.NewDesc(prometheus.BuildFQName(namespace, adjustSubsystem, "last_run_timestamp_seconds"),
			"Unix time of the last run",
			[]string{"source"}, nil,
		),
	}
}

func (collector *AdjustCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.runs
	ch <- collector.processed
	ch <- collector.inserted
	ch <- collector.openOverrides
	ch <- collector.lastRun
}

// Collect implements required collect function for all prometheus collectors
func (collector *AdjustCollector) Collect(ch chan<- prometheus.Metric) {
	s := collector.statistics
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range s.runs {
		ch <- prometheus.MustNewConstMetric(collector.runs, prometheus.CounterValue, float64(value), key.source, key.result)
	}
	for source, value := range s.processed {
		ch <- prometheus.MustNewConstMetric(collector.processed, prometheus.CounterValue, float64(value), source)
	}
	for source, value := range s.inserted {
		ch <- prometheus.MustNewConstMetric(collector.inserted, prometheus.CounterValue, float64(value), source)
	}
	for source, value := range s.openOverrides {
		ch <- prometheus.MustNewConstMetric(collector.openOverrides, prometheus.CounterValue, float64(value), source)
	}
	for source, value := range s.lastRun {
		ch <- prometheus.MustNewConstMetric(collector.lastRun, prometheus.GaugeValue, float64(value.Unix()), source)
	}
}
