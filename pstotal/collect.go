package pstotal

import (
	"context"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/logging"
	"www.velocidex.com/golang/pstotal/processes"
)

func OptionsFromConfig(config_obj *config.Config) Options {
	if config_obj == nil || config_obj.Report == nil {
		return Options{}
	}
	return Options{Short: config_obj.Report.Short}
}

// Collect runs the framework collaborators and merges their
// results. Any failure to read memory aborts the report.
func Collect(ctx context.Context,
	config_obj *config.Config,
	source processes.Source,
	options Options) (*Result, error) {

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)

	as, err := source.LoadAddressSpace(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Collect: loading address space")
	}

	scan, err := source.ScanProcesses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Collect: scanning for processes")
	}
	logger.Debug("pstotal: pool scan found %v process blocks", len(scan))

	list, err := source.WalkProcessList(ctx, as)
	if err != nil {
		return nil, errors.Wrap(err, "Collect: walking the process list")
	}
	logger.Debug("pstotal: process list has %v entries", len(list))

	result, err := Merge(scan, list, as, options)
	if err != nil {
		return nil, err
	}

	if !result.HasBootTime() {
		logger.Warn("pstotal: no boot anchor found, prior boot detection is disabled")
	}

	stats := result.Stats()
	logger.Info("pstotal: %v processes, %v hidden from the process list",
		stats.Total, stats.Hidden)

	return result, nil
}
