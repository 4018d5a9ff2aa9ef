package renderers

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"www.velocidex.com/golang/pstotal/pstotal"
)

// NewMetricsRegistry exposes the report totals as gauges.
func NewMetricsRegistry(result *pstotal.Result) *prometheus.Registry {
	stats := result.Stats()
	registry := prometheus.NewRegistry()

	gauge := func(name, help string, value float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		})
		g.Set(value)
		registry.MustRegister(g)
	}

	gauge("pstotal_processes",
		"Number of process blocks found by the pool scan.",
		float64(stats.Total))
	gauge("pstotal_hidden_processes",
		"Process blocks not reachable through the process list.",
		float64(stats.Hidden))
	gauge("pstotal_exited_processes",
		"Process blocks with an exit time.",
		float64(stats.Exited))
	gauge("pstotal_prior_boot_processes",
		"Process blocks created before the current boot.",
		float64(stats.PriorBoot))
	gauge("pstotal_stale_processes",
		"Prior boot process blocks which exited after the current boot.",
		float64(stats.Stale))
	gauge("pstotal_duplicate_pids",
		"Pids with more than one process block.",
		float64(stats.DuplicatePids))

	boot_time := 0.0
	if result.HasBootTime() {
		boot_time = float64(stats.BootTime.Unix())
	}
	gauge("pstotal_boot_time_seconds",
		"Create time of the boot anchor process, 0 if unknown.",
		boot_time)

	return registry
}

// WriteMetricsFile writes the gauges in the textfile collector
// format.
func WriteMetricsFile(filename string, result *pstotal.Result) error {
	err := prometheus.WriteToTextfile(filename, NewMetricsRegistry(result))
	if err != nil {
		return errors.Wrap(err, "WriteMetricsFile")
	}
	return nil
}
