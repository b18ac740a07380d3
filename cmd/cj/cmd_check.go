package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cangjie/parser"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse Cangjie source files and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			total := 0
			for _, filename := range args {
				data, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read %s: %w", filename, err)
				}
				res := parser.Parse(data, parser.WithMaxIndentDepth(cfg.MaxIndentDepth))
				reportDiagnostics(os.Stdout, filename, data, res.Errors)
				total += len(res.Errors)
			}
			if total > 0 {
				return fmt.Errorf("%d problems found", total)
			}
			return nil
		},
	}

	return cmd
}

func reportDiagnostics(w io.Writer, filename string, src []byte, diags []parser.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	index := parser.NewLineIndex(src)
	for _, d := range diags {
		line, col := index.Locate(d.Span.Start)
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", filename, line, col, d.Kind, d.Message)
	}
}
