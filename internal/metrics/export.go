package metrics

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prefix shared by every reader collector
const Prefix = "reader_"

// DefaultJob is the pushgateway job name
const DefaultJob = "reader-cli"

// WriteSummary prints one line per reader series in g, sorted by name.
// Histograms are shown as their count and sum.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, family := range families {
		name := family.GetName()
		if !strings.HasPrefix(name, Prefix) {
			continue
		}

		for _, metric := range family.GetMetric() {
			var labels []string
			for _, label := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}

			series := name
			if len(labels) > 0 {
				series = fmt.Sprintf("%s{%s}", name, strings.Join(labels, ","))
			}

			switch {
			case metric.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", series, metric.GetCounter().GetValue()))
			case metric.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", series, metric.GetGauge().GetValue()))
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", series, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}

	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Push sends everything in g to the pushgateway at url, replacing the
// previous push for job.
func Push(ctx context.Context, url string, job string, g prometheus.Gatherer) error {
	if len(job) == 0 {
		job = DefaultJob
	}

	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
