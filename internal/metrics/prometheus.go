// Package metrics counts codec activity in a private Prometheus registry.
// The CLI is short-lived, so metrics are exported with WriteTextfile for
// node_exporter's textfile collector instead of being scraped.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"grimm.is/fwtranslate/internal/iptables"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all codec metrics.
type Registry struct {
	reg *prometheus.Registry

	// Parser metrics
	ParseTotal    *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	ParseDuration prometheus.Histogram
	LinesTotal    *prometheus.CounterVec
	DroppedTokens prometheus.Counter
	RuleSetRules  *prometheus.GaugeVec

	// Serializer and lint metrics
	SerializeTotal prometheus.Counter
	LintWarnings   prometheus.Counter

	// Live adapter metrics
	LiveOps *prometheus.CounterVec
}

// Get returns the process-wide registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = New()
	})
	return registry
}

// New creates an independent registry.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	factory := promauto.With(r.reg)

	r.ParseTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fwtranslate_parse_total",
		Help: "Number of iptables-save parse runs",
	}, []string{"result"})

	r.ParseErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fwtranslate_parse_errors_total",
		Help: "Parse failures by error kind",
	}, []string{"kind"})

	r.ParseDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "fwtranslate_parse_duration_seconds",
		Help:    "Time spent parsing iptables-save text",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	r.LinesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fwtranslate_lines_total",
		Help: "Input lines by kind",
	}, []string{"kind"})

	r.DroppedTokens = factory.NewCounter(prometheus.CounterOpts{
		Name: "fwtranslate_dropped_tokens_total",
		Help: "Unpaired trailing tokens dropped while parsing",
	})

	r.RuleSetRules = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fwtranslate_ruleset_rules",
		Help: "Rules per table in the last parsed rule set",
	}, []string{"table"})

	r.SerializeTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "fwtranslate_serialize_total",
		Help: "Number of rule sets serialized",
	})

	r.LintWarnings = factory.NewCounter(prometheus.CounterOpts{
		Name: "fwtranslate_lint_warnings_total",
		Help: "Lint warnings reported",
	})

	r.LiveOps = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "fwtranslate_live_operations_total",
		Help: "Snapshot and apply operations against the kernel",
	}, []string{"op", "result"})

	return r
}

// RecordParse records one parse run. rs may be nil when err is set.
func (r *Registry) RecordParse(stats iptables.Stats, rs *iptables.RuleSet, d time.Duration, err error) {
	r.ParseDuration.Observe(d.Seconds())
	r.LinesTotal.WithLabelValues("blank").Add(float64(stats.Blank))
	r.LinesTotal.WithLabelValues("comment").Add(float64(stats.Comments))
	r.LinesTotal.WithLabelValues("table").Add(float64(stats.Tables))
	r.LinesTotal.WithLabelValues("chain").Add(float64(stats.Chains))
	r.LinesTotal.WithLabelValues("rule").Add(float64(stats.Rules))
	r.DroppedTokens.Add(float64(stats.DroppedTokens))

	if err != nil {
		r.ParseTotal.WithLabelValues("error").Inc()
		r.ParseErrors.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	r.ParseTotal.WithLabelValues("ok").Inc()
	if rs != nil {
		rs.ForEach(func(t *iptables.Table) {
			n := 0
			t.ForEach(func(c *iptables.Chain) {
				n += c.Len()
			})
			r.RuleSetRules.WithLabelValues(t.Name().String()).Set(float64(n))
		})
	}
}

// RecordSerialize records one serialization.
func (r *Registry) RecordSerialize() {
	r.SerializeTotal.Inc()
}

// RecordLint records the warnings of one lint run.
func (r *Registry) RecordLint(warnings int) {
	r.LintWarnings.Add(float64(warnings))
}

// RecordLive records a snapshot or apply against the kernel.
func (r *Registry) RecordLive(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.LiveOps.WithLabelValues(op, result).Inc()
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is written atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{iptables.ErrUnknownTable, "unknown_table"},
	{iptables.ErrNoActiveTable, "no_active_table"},
	{iptables.ErrUnsupportedOperation, "unsupported_operation"},
	{iptables.ErrUnknownChain, "unknown_chain"},
	{iptables.ErrMissingCommit, "missing_commit"},
	{iptables.ErrMalformedLine, "malformed_line"},
}

// ErrorKind maps a parse error to a metric label.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}
