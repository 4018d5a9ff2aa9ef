package renderers

import (
	"io"
	"strings"

	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/utils"
)

type Format int

const (
	FormatText Format = iota
	FormatDot
	FormatJsonl
	FormatSummary
)

var formatNames = map[Format]string{
	FormatText:    "text",
	FormatDot:     "dot",
	FormatJsonl:   "jsonl",
	FormatSummary: "summary",
}

func (self Format) String() string {
	name, pres := formatNames[self]
	if !pres {
		return "unknown"
	}
	return name
}

func FormatNames() []string {
	return []string{"text", "dot", "jsonl", "summary"}
}

func ParseFormat(name string) (Format, error) {
	for k, v := range formatNames {
		if strings.EqualFold(v, name) {
			return k, nil
		}
	}
	return FormatText, utils.Wrap(utils.InvalidArgError,
		"Unknown output format %v", name)
}

type Options struct {
	// Add the command line to graph labels.
	Cmd bool

	// Add the image path to graph labels.
	Path bool

	// 32 or 64
	AddressBits int
}

func OptionsFromConfig(config_obj *config.Config) Options {
	result := Options{AddressBits: config.DefaultAddressBits}
	if config_obj == nil || config_obj.Report == nil {
		return result
	}

	result.Cmd = config_obj.Report.Cmd
	result.Path = config_obj.Report.Path
	if config_obj.Report.AddressBits != 0 {
		result.AddressBits = config_obj.Report.AddressBits
	}
	return result
}

// Render writes the merged result in the requested format. The
// same result can be rendered any number of times.
func Render(out io.Writer,
	result *pstotal.Result, format Format, options Options) error {
	switch format {
	case FormatText:
		return RenderText(out, result, options)

	case FormatDot:
		return RenderDot(out, result, options)

	case FormatJsonl:
		return RenderJsonl(out, result, options)

	case FormatSummary:
		return RenderSummary(out, result, options)

	default:
		return utils.Wrap(utils.InvalidArgError,
			"Unknown output format %v", format)
	}
}
