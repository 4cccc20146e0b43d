package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/panyam/graphqxl/loader"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Prints the definitions of a resolved document",
	Long: `The dump command resolves an entry document and prints the documents it
read followed by every definition in declaration order, as YAML or JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := settings.Format
		if cmd.Flags().Changed("format") {
			format = dumpFormat
		}
		entry, err := singleEntry(settings, args)
		if err != nil {
			return err
		}
		l, err := newLoader(settings)
		if err != nil {
			return err
		}
		loaded, err := l.Load(entry)
		if err != nil {
			return err
		}
		return writeDump(cmd.OutOrStdout(), format, DumpOutput{
			Entry:       entry,
			Files:       loaded.Files,
			Definitions: loaded.Spec.Summary(),
		})
	},
}

func init() {
	AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "o", "yaml", "Output format: yaml or json")
}

type DumpOutput struct {
	Entry       string              `json:"entry" yaml:"entry"`
	Files       []string            `json:"files" yaml:"files"`
	Definitions []loader.DefSummary `json:"definitions" yaml:"definitions"`
}

func writeDump(w io.Writer, format string, out DumpOutput) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return fmt.Errorf("unknown format %q, expected yaml or json", format)
}
