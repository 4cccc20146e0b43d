package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/panyam/graphqxl/loader"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [file or directory...]",
	Short: "Resolves documents and reports any errors",
	Long: `The check command resolves each entry document with its imports and
reports syntax errors, duplicate definitions, missing imports and import
cycles.  Directories are expanded to the .graphqxl documents they contain.
Without arguments the entry from the config file is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(settings)
		if err != nil {
			return err
		}
		entries, err := entryPaths(l.FileSystem(), settings, args)
		if err != nil {
			return err
		}
		result := runCheck(l, entries)
		renderCheck(cmd.OutOrStdout(), result, checkJSON)
		if result.HasErrors() {
			return errReported
		}
		return nil
	},
}

func init() {
	AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the result as JSON")
}

type CheckResult struct {
	Entries []CheckEntry
}

type CheckEntry struct {
	Entry       string `json:"entry"`
	Documents   int    `json:"documents"`
	Definitions int    `json:"definitions"`
	Error       string `json:"error,omitempty"`

	files []string
}

func (r CheckResult) HasErrors() bool {
	for _, e := range r.Entries {
		if e.Error != "" {
			return true
		}
	}
	return false
}

func runCheck(l *loader.Loader, entries []string) CheckResult {
	var result CheckResult
	for _, entry := range entries {
		result.Entries = append(result.Entries, checkOne(l, entry))
	}
	return result
}

func checkOne(l *loader.Loader, entry string) CheckEntry {
	out := CheckEntry{Entry: entry}
	loaded, err := l.Load(entry)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Documents = len(loaded.Files)
	out.Definitions = loaded.Spec.Len()
	out.files = loaded.Files
	return out
}

type checkJSONResult struct {
	Type      string       `json:"type"`
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Entries   []CheckEntry `json:"entries"`
}

func renderCheck(w io.Writer, result CheckResult, asJSON bool) {
	if asJSON {
		out := checkJSONResult{
			Type:      "check",
			Status:    "success",
			Timestamp: time.Now(),
			Entries:   result.Entries,
		}
		if result.HasErrors() {
			out.Status = "error"
		}
		if data, err := json.Marshal(out); err == nil {
			fmt.Fprintln(w, string(data))
		}
		return
	}

	for _, e := range result.Entries {
		if e.Error != "" {
			fmt.Fprintln(w, color.RGB(229, 50, 50).Sprint("error:"), e.Error)
			continue
		}
		fmt.Fprintln(w, color.RGB(50, 108, 229).Sprint("ok:"), fmt.Sprintf("%s (%d documents, %d definitions)", e.Entry, e.Documents, e.Definitions))
	}
}
