// Package ppconfig loads and validates the pretty-printer's Configuration value object
// (spec.md §6/§7), sourced from defaults, a config file, environment variables, and flags
// via [viper].
package ppconfig

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/pplang/pplang/indent"
)

// Configuration is the value object the engine (package pp) and the token builder consume.
type Configuration struct {
	// LineLength is the soft target column budget.
	LineLength int
	// Indentation is the unit pushed per Open break fired.
	Indentation indent.Unit
	// TabWidth is the visual width of a tab for measurement.
	TabWidth int
	// MaximumBlankLines is the cap on consecutive blank lines preserved between
	// declarations; two newlines = one blank line.
	MaximumBlankLines int
	// RespectsExistingLineBreaks gates preservation of discretionary newlines.
	RespectsExistingLineBreaks bool
	// ReflowDocComments enables Markdown reflow of doc-line comments.
	ReflowDocComments bool

	// LineBreakBeforeControlFlowKeywords, LineBreakBeforeEachArgument, and
	// LineBreakBeforeEachGenericRequirement are consumed by the token builder, not by the
	// engine itself; the engine only carries them through.
	LineBreakBeforeControlFlowKeywords      bool
	LineBreakBeforeEachArgument             bool
	LineBreakBeforeEachGenericRequirement   bool

	// Rules maps a rule name to whether it is enabled. Consumed outside the engine.
	Rules map[string]bool
}

// Default returns the Configuration applied when no overrides are supplied.
func Default() Configuration {
	return Configuration{
		LineLength:        100,
		Indentation:       indent.SpacesUnit(2),
		TabWidth:          8,
		MaximumBlankLines: 1,
		RespectsExistingLineBreaks: true,
		ReflowDocComments:          false,
		Rules:                      map[string]bool{},
	}
}

// Validate reports a descriptive error for any out-of-range value.
func (c Configuration) Validate() error {
	if c.LineLength <= 0 {
		return fmt.Errorf("lineLength must be positive, got %d", c.LineLength)
	}
	if c.TabWidth <= 0 {
		return fmt.Errorf("tabWidth must be positive, got %d", c.TabWidth)
	}
	if c.MaximumBlankLines < 0 {
		return fmt.Errorf("maximumBlankLines must be >= 0, got %d", c.MaximumBlankLines)
	}
	if c.Indentation.Count <= 0 {
		return fmt.Errorf("indentation width must be positive, got %d", c.Indentation.Count)
	}
	return nil
}

// Load builds a Configuration by layering defaults, an optional config file, environment
// variables prefixed PPLANG_, and any previously bound flags, in increasing priority.
func Load(v *viper.Viper, configFile string) (Configuration, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	v.SetDefault("lineLength", def.LineLength)
	v.SetDefault("indentKind", "spaces")
	v.SetDefault("indentWidth", def.Indentation.Count)
	v.SetDefault("tabWidth", def.TabWidth)
	v.SetDefault("maximumBlankLines", def.MaximumBlankLines)
	v.SetDefault("respectsExistingLineBreaks", def.RespectsExistingLineBreaks)
	v.SetDefault("reflowDocComments", def.ReflowDocComments)
	v.SetDefault("lineBreakBeforeControlFlowKeywords", false)
	v.SetDefault("lineBreakBeforeEachArgument", false)
	v.SetDefault("lineBreakBeforeEachGenericRequirement", false)

	v.SetEnvPrefix("PPLANG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
		slog.Debug("loaded config file", "path", configFile)
	}

	var indentation indent.Unit
	switch v.GetString("indentKind") {
	case "tabs":
		indentation = indent.TabsUnit(v.GetInt("indentWidth"))
	default:
		indentation = indent.SpacesUnit(v.GetInt("indentWidth"))
	}

	rules := map[string]bool{}
	for name, enabled := range v.GetStringMap("rules") {
		if b, ok := enabled.(bool); ok {
			rules[name] = b
		}
	}

	result := Configuration{
		LineLength:                 v.GetInt("lineLength"),
		Indentation:                indentation,
		TabWidth:                   v.GetInt("tabWidth"),
		MaximumBlankLines:          v.GetInt("maximumBlankLines"),
		RespectsExistingLineBreaks: v.GetBool("respectsExistingLineBreaks"),
		ReflowDocComments:          v.GetBool("reflowDocComments"),
		LineBreakBeforeControlFlowKeywords:    v.GetBool("lineBreakBeforeControlFlowKeywords"),
		LineBreakBeforeEachArgument:           v.GetBool("lineBreakBeforeEachArgument"),
		LineBreakBeforeEachGenericRequirement: v.GetBool("lineBreakBeforeEachGenericRequirement"),
		Rules: rules,
	}

	if err := result.Validate(); err != nil {
		return Configuration{}, err
	}
	slog.Debug("resolved configuration",
		"lineLength", result.LineLength,
		"indent", result.Indentation,
		"tabWidth", result.TabWidth,
		"maximumBlankLines", result.MaximumBlankLines)
	return result, nil
}
