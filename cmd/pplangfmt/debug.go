package main

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	dot "github.com/pplang/pplang"
	"github.com/pplang/pplang/dotbuild"
	"github.com/pplang/pplang/ppconfig"
)

// newDebugCmd groups the format={tree,tokens} debug dumps ported from dotx's `inspect`
// subcommand, now dumping the new engine's token stream rather than the old allman Doc tree.
func newDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Dump internal representations used while formatting",
	}
	cmd.AddCommand(newDebugTreeCmd(), newDebugTokensCmd())
	return cmd
}

func newDebugTreeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the parsed DOT syntax tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			ft, err := dot.NewFormat(format)
			if err != nil {
				return fmt.Errorf("--format=%q: %w", format, err)
			}
			parser, err := dot.NewParser(bytes.NewReader(src))
			if err != nil {
				return fmt.Errorf("creating parser: %w", err)
			}
			tree, err := parser.Parse()
			if err != nil {
				return fmt.Errorf("parsing: %w", err)
			}
			for _, parseErr := range parser.Errors() {
				fmt.Fprintln(cmd.ErrOrStderr(), parseErr)
			}
			return tree.Render(cmd.OutOrStdout(), ft)
		},
	}
	cmd.Flags().StringVar(&format, "format", "default", "tree rendering: default or scheme")
	return cmd
}

func newDebugTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Print the ptoken stream the engine consumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			parser, err := dot.NewParser(bytes.NewReader(src))
			if err != nil {
				return fmt.Errorf("creating parser: %w", err)
			}
			tree, err := parser.Parse()
			if err != nil {
				return fmt.Errorf("parsing: %w", err)
			}
			for _, parseErr := range parser.Errors() {
				fmt.Fprintln(cmd.ErrOrStderr(), parseErr)
			}

			cfg := ppconfig.Default()
			tokens := dotbuild.Build(tree, parser.Comments(), &cfg)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer tw.Flush()
			fmt.Fprintf(tw, "KIND\tTEXT\tLINE\n")
			for _, tok := range tokens {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", tok.Kind, tok.Text, tok.SourceLine)
			}
			return nil
		},
	}
}
