package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/cangjie/parser"
)

var log = commonlog.GetLogger("cj")

func newParseCmd() *cobra.Command {
	var outputFormat string
	var exprOnly bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Cangjie source file and dump the syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputFormat == "" {
				outputFormat = cfg.Format
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			start := time.Now()
			var res *parser.Result
			if exprOnly {
				res = parser.ParseExpression(data, parser.WithMaxIndentDepth(cfg.MaxIndentDepth))
			} else {
				res = parser.Parse(data, parser.WithMaxIndentDepth(cfg.MaxIndentDepth))
			}
			log.Infof("parsed %s in %s (%d diagnostics)", args[0], time.Since(start), len(res.Errors))

			switch outputFormat {
			case "json":
				out, err := json.MarshalIndent(res.Root, "", "  ")
				if err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Println(string(out))
			case "tree":
				fmt.Println(res.Root.String())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			reportDiagnostics(os.Stderr, args[0], data, res.Errors)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (json, tree)")
	cmd.Flags().BoolVarP(&exprOnly, "expression", "e", false, "parse the file as a single expression")

	return cmd
}
