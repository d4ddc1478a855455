package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pplang/pplang/indent"
	"github.com/pplang/pplang/pp"
	"github.com/pplang/pplang/ppconfig"
)

var (
	cfgFile       string
	lineLength    int
	indentFlag    string
	tabWidth      int
	maxBlankLines int
	rangeFlag     string
	diffFlag      bool
	writeFlag     bool
	verboseFlag   bool
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pplangfmt [flags] [path...]",
		Short: "Format DOT (Graphviz) graph files",
		Long: `pplangfmt reformats DOT source to a canonical layout using the same pretty-printing
engine as dotx fmt, with support for a config file, colorized diagnostics, unified diffs, and
partial-region formatting.

With no path arguments, it reads from stdin and writes the formatted result to stdout. Given
one or more files or directories, it formats each .dot/.gv file found.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: .pplang.yaml in the working directory)")
	flags.IntVar(&lineLength, "line-length", 0, "soft column budget")
	flags.StringVar(&indentFlag, "indent", "", "indentation unit as kind:width, e.g. spaces:2 or tabs:1")
	flags.IntVar(&tabWidth, "tab-width", 0, "visual width of a tab for measurement")
	flags.IntVar(&maxBlankLines, "max-blank-lines", -1, "cap on consecutive blank lines preserved between statements")
	flags.StringVar(&rangeFlag, "range", "", "restrict formatting to start:end (1-based, inclusive) source lines")
	flags.BoolVar(&diffFlag, "diff", false, "print a unified diff instead of writing output")
	flags.BoolVar(&writeFlag, "write", false, "write the formatted result back to each file instead of stdout")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "log config resolution and per-file decisions at debug level")

	cmd.AddCommand(newVersionCmd(), newDebugCmd())

	return cmd
}

func runRoot(cmd *cobra.Command, v *viper.Viper, args []string) error {
	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(".pplang.yaml"); err == nil {
			path = ".pplang.yaml"
		}
	}
	cfg, err := ppconfig.Load(v, path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("line-length") {
		cfg.LineLength = lineLength
	}
	if flags.Changed("tab-width") {
		cfg.TabWidth = tabWidth
	}
	if flags.Changed("max-blank-lines") {
		cfg.MaximumBlankLines = maxBlankLines
	}
	if flags.Changed("indent") {
		unit, err := parseIndent(indentFlag)
		if err != nil {
			return fmt.Errorf("--indent: %w", err)
		}
		cfg.Indentation = unit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var rng *pp.Range
	if rangeFlag != "" {
		start, end, err := parseRange(rangeFlag)
		if err != nil {
			return fmt.Errorf("--range: %w", err)
		}
		rng = &pp.Range{StartLine: start, EndLine: end}
	}

	opts := runOptions{
		cfg:      cfg,
		rng:      rng,
		diff:     diffFlag,
		write:    writeFlag,
		stdin:    cmd.InOrStdin(),
		stdout:   cmd.OutOrStdout(),
		stderr:   cmd.ErrOrStderr(),
		colorize: isTerminal(os.Stdout),
	}

	return runFormat(opts, args)
}

// parseIndent parses a --indent value of the form "spaces:2" or "tabs:1".
func parseIndent(s string) (indent.Unit, error) {
	kind, width, ok := strings.Cut(s, ":")
	if !ok {
		return indent.Unit{}, fmt.Errorf("expected kind:width (e.g. spaces:2), got %q", s)
	}
	n, err := strconv.Atoi(width)
	if err != nil || n <= 0 {
		return indent.Unit{}, fmt.Errorf("width must be a positive integer, got %q", width)
	}
	switch kind {
	case "spaces":
		return indent.SpacesUnit(n), nil
	case "tabs":
		return indent.TabsUnit(n), nil
	default:
		return indent.Unit{}, fmt.Errorf("kind must be spaces or tabs, got %q", kind)
	}
}

// parseRange parses a --range value of the form "start:end" (1-based, inclusive).
func parseRange(s string) (start, end int, err error) {
	startStr, endStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected start:end, got %q", s)
	}
	start, err = strconv.Atoi(startStr)
	if err != nil || start <= 0 {
		return 0, 0, fmt.Errorf("start must be a positive integer, got %q", startStr)
	}
	end, err = strconv.Atoi(endStr)
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("end must be an integer >= start, got %q", endStr)
	}
	return start, end, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
