package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cangjie/parser"
)

func newTokensCmd() *cobra.Command {
	var noLayout bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Lex a Cangjie source file and dump its token stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			tokens, diags := parser.Tokenize(data, parser.WithMaxIndentDepth(cfg.MaxIndentDepth))
			for _, tok := range tokens {
				if noLayout {
					switch tok.Kind {
					case parser.TokenNewline, parser.TokenIndent, parser.TokenDedent:
						continue
					}
				}
				fmt.Printf("%5d:%-5d %-20s %q\n", tok.Span.Start, tok.Span.End, tok.Kind, tok.Literal)
			}

			reportDiagnostics(os.Stderr, args[0], data, diags)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noLayout, "no-layout", false, "omit newline, indent, and dedent tokens")

	return cmd
}
