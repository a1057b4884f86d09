package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	tuplesDesc = prometheus.NewDesc(
		"sieve_operator_tuples_total",
		"Tuples seen by a pipeline operator, by outcome.",
		[]string{"operator", "outcome"}, nil,
	)
	errorsDesc = prometheus.NewDesc(
		"sieve_operator_evaluation_errors_total",
		"Tuples an operator failed to evaluate.",
		[]string{"operator"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- tuplesDesc
	ch <- errorsDesc
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	for _, s := range r.Snapshots() {
		ch <- prometheus.MustNewConstMetric(tuplesDesc, prometheus.CounterValue, float64(s.TuplesIn), s.Operator, "in")
		ch <- prometheus.MustNewConstMetric(tuplesDesc, prometheus.CounterValue, float64(s.TuplesOut), s.Operator, "out")
		ch <- prometheus.MustNewConstMetric(tuplesDesc, prometheus.CounterValue, float64(s.TuplesDropped), s.Operator, "dropped")
		ch <- prometheus.MustNewConstMetric(errorsDesc, prometheus.CounterValue, float64(s.EvaluationErrors), s.Operator)
	}
}

// Flatten gathers g and returns counter and gauge values keyed by
// name{label="value",...} with labels sorted by name.
func Flatten(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v, ok := value(m)
			if !ok {
				continue
			}
			out[seriesKey(mf.GetName(), m.GetLabel())] = v
		}
	}
	return out, nil
}

func value(m *dto.Metric) (float64, bool) {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue(), true
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue(), true
	case m.GetUntyped() != nil:
		return m.GetUntyped().GetValue(), true
	}
	return 0, false
}

func seriesKey(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}
