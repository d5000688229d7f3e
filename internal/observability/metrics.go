package observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

const namespace = "chatlens"

// Parse outcomes used as the "result" label.
const (
	ResultOK                 = "ok"
	ResultEmptyChat          = "empty_chat"
	ResultNoMessagesFiltered = "no_messages_after_filtering"
	ResultError              = "error"
)

// Metrics exports parse and analysis telemetry. A nil *Metrics records nothing.
type Metrics struct {
	parseTotal     *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	messagesParsed prometheus.Counter
	resultsStored  prometheus.Counter
}

// NewMetrics registers the chatlens collectors on reg, reusing collectors
// that are already registered. A nil reg means the default registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Chat exports parsed, by outcome.",
		}, []string{"result"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing and analyzing one export.",
			Buckets:   prometheus.DefBuckets,
		}),
		messagesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_parsed_total",
			Help:      "Messages produced by the parser.",
		}),
		resultsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_stored_total",
			Help:      "Analysis results saved by the server.",
		}),
	}

	var err error
	if m.parseTotal, err = register(reg, m.parseTotal); err != nil {
		return nil, err
	}
	if m.parseDuration, err = register(reg, m.parseDuration); err != nil {
		return nil, err
	}
	if m.messagesParsed, err = register(reg, m.messagesParsed); err != nil {
		return nil, err
	}
	if m.resultsStored, err = register(reg, m.resultsStored); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordParse tracks one parse attempt.
func (m *Metrics) RecordParse(duration time.Duration, messages int, err error) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(duration.Seconds())
	m.parseTotal.WithLabelValues(ParseResult(err)).Inc()
	if err == nil {
		m.messagesParsed.Add(float64(messages))
	}
}

// RecordStored counts one saved result.
func (m *Metrics) RecordStored() {
	if m == nil {
		return
	}
	m.resultsStored.Inc()
}

// ParseResult classifies a parse error into a metric label.
func ParseResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, parser.ErrEmptyChat):
		return ResultEmptyChat
	case errors.Is(err, parser.ErrNoMessagesAfterFiltering):
		return ResultNoMessagesFiltered
	default:
		return ResultError
	}
}
