package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thand-io/reader/internal/metrics"
)

const defaultPushTimeout = 5 * time.Second

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Metrics"))
	return metrics.WriteSummary(w, g)
}

// pushMetrics sends this run's metrics to the configured pushgateway.
// It runs after every command, including failed ones.
func pushMetrics() {
	if cfg == nil || !cfg.HasPushGateway() {
		return
	}

	timeout := cfg.Metrics.Timeout
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := metrics.Push(ctx, cfg.Metrics.PushGateway, cfg.Metrics.Job, prometheus.DefaultGatherer)
	if err != nil {
		logrus.WithError(err).WithField("pushgateway", cfg.Metrics.PushGateway).
			Warnln("Failed to push metrics")
		return
	}

	logrus.WithField("pushgateway", cfg.Metrics.PushGateway).Debugln("Metrics pushed")
}

func init() {
	cobra.OnFinalize(pushMetrics)
}
