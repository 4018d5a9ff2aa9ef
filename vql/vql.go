/*

  The VQL subsystem exposes the pstotal report to Velocidex Query
  Language (VQL) queries so results can be filtered and reshaped
  without another tool.

*/

package vql

import (
	"log"

	"www.velocidex.com/golang/vfilter"
)

var (
	exportedPlugins []vfilter.PluginGeneratorInterface
)

func RegisterPlugin(plugin vfilter.PluginGeneratorInterface) {
	exportedPlugins = append(exportedPlugins, plugin)
}

// MakeScope builds a scope with all registered plugins plus any
// extra ones supplied by the caller.
func MakeScope(logger *log.Logger,
	extra ...vfilter.PluginGeneratorInterface) vfilter.Scope {
	result := vfilter.NewScope()
	for _, plugin := range exportedPlugins {
		result.AppendPlugins(plugin)
	}

	for _, plugin := range extra {
		result.AppendPlugins(plugin)
	}

	if logger != nil {
		result.SetLogger(logger)
	}

	return result
}
