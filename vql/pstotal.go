package vql

import (
	"context"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/processes"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/renderers"
	"www.velocidex.com/golang/pstotal/sources"
	"www.velocidex.com/golang/pstotal/utils"
	"www.velocidex.com/golang/vfilter"
	"www.velocidex.com/golang/vfilter/arg_parser"
)

type PstotalPluginArgs struct {
	ScanFile        string `vfilter:"optional,field=scan_file,doc=JSON export of the pool scan."`
	ListFile        string `vfilter:"optional,field=list_file,doc=JSON export of the process list walk."`
	Database        string `vfilter:"optional,field=database,doc=SQLite database holding both tables."`
	ScanTable       string `vfilter:"optional,field=scan_table,doc=Scan table name (default PSScan)."`
	ListTable       string `vfilter:"optional,field=list_table,doc=List table name (default PSList)."`
	TranslationFile string `vfilter:"optional,field=translation_file,doc=YAML map of virtual to physical offsets."`
	Identity        bool   `vfilter:"optional,field=identity,doc=Treat list offsets as physical offsets."`
	Short           bool   `vfilter:"optional,field=short,doc=Only emit hidden processes."`
}

type PstotalPlugin struct {
	config_obj *config.Config

	// When set, used instead of building a source from the args.
	source processes.Source
}

func NewPstotalPlugin(
	config_obj *config.Config, source processes.Source) *PstotalPlugin {
	return &PstotalPlugin{config_obj: config_obj, source: source}
}

// Overlay the args on a copy of the configured sources.
func (self *PstotalPlugin) configFromArgs(arg *PstotalPluginArgs) *config.Config {
	config_obj := config.GetDefaultConfig()
	if self.config_obj != nil {
		copied := *self.config_obj
		if copied.Sources != nil {
			sources_config := *copied.Sources
			copied.Sources = &sources_config
		} else {
			copied.Sources = config_obj.Sources
		}

		if copied.Report != nil {
			report_config := *copied.Report
			copied.Report = &report_config
		} else {
			copied.Report = config_obj.Report
		}
		config_obj = &copied
	}

	if arg.ScanFile != "" || arg.ListFile != "" || arg.Database != "" {
		config_obj.Sources.ScanFile = arg.ScanFile
		config_obj.Sources.ListFile = arg.ListFile
		config_obj.Sources.Database = arg.Database
	}

	if arg.ScanTable != "" {
		config_obj.Sources.ScanTable = arg.ScanTable
	}
	if arg.ListTable != "" {
		config_obj.Sources.ListTable = arg.ListTable
	}
	if arg.TranslationFile != "" {
		config_obj.Sources.TranslationFile = arg.TranslationFile
		config_obj.Sources.IdentityTranslation = false
	}
	if arg.Identity {
		config_obj.Sources.IdentityTranslation = true
		config_obj.Sources.TranslationFile = ""
	}
	if arg.Short {
		config_obj.Report.Short = true
	}

	return config_obj
}

func (self *PstotalPlugin) Call(
	ctx context.Context,
	scope vfilter.Scope,
	args *ordereddict.Dict) <-chan vfilter.Row {
	output_chan := make(chan vfilter.Row)

	go func() {
		defer close(output_chan)
		defer utils.RecoverVQL(scope)

		arg := &PstotalPluginArgs{}
		err := arg_parser.ExtractArgsWithContext(ctx, scope, args, arg)
		if err != nil {
			scope.Log("pstotal: %v", err)
			return
		}

		config_obj := self.configFromArgs(arg)
		err = config.Validate(config_obj)
		if err != nil {
			scope.Log("pstotal: %v", err)
			return
		}

		source := self.source
		if source == nil {
			grid_source, err := sources.NewSourceFromConfig(config_obj)
			if err != nil {
				scope.Log("pstotal: %v", err)
				return
			}
			source = grid_source
		}

		result, err := pstotal.Collect(ctx, config_obj, source,
			pstotal.OptionsFromConfig(config_obj))
		if err != nil {
			scope.Log("pstotal: %v", err)
			return
		}

		for _, entry := range result.Entries() {
			select {
			case <-ctx.Done():
				return
			case output_chan <- renderers.EntryRow(result, entry):
			}
		}
	}()

	return output_chan
}

func (self *PstotalPlugin) Info(
	scope vfilter.Scope, type_map *vfilter.TypeMap) *vfilter.PluginInfo {
	return &vfilter.PluginInfo{
		Name: "pstotal",
		Doc: "Cross reference pool scanned process blocks with the " +
			"process list and report hidden processes.",
		ArgType: type_map.AddType(scope, &PstotalPluginArgs{}),
	}
}

func init() {
	RegisterPlugin(NewPstotalPlugin(nil, nil))
}
