package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/panyam/graphqxl/loader"
	"github.com/panyam/graphqxl/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Checks a document again whenever one of its files changes",
	Long: `The watch command checks an entry document and then keeps watching the
directories of every document it imports.  Each change re-runs the check
until the command is interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := singleEntry(settings, args)
		if err != nil {
			return err
		}
		l, err := newLoader(settings)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var w *watcher.Watcher
		w, err = watcher.New(watcher.Config{
			Exclude:   settings.Watch.Exclude,
			Debounce:  settings.Watch.Debounce,
			Extension: loader.FileExtension,
		}, func(ctx context.Context) ([]string, error) {
			result := checkOne(l, entry)
			renderCheck(cmd.OutOrStdout(), CheckResult{Entries: []CheckEntry{result}}, false)
			if result.Error == "" {
				return result.files, nil
			}
			// Until one load succeeds, watch the entry's directory so that
			// fixing or creating it is noticed.
			if len(w.Files()) == 0 {
				if files := entryWatchFiles(l.FileSystem(), entry); len(files) > 0 {
					return files, nil
				}
			}
			return nil, errors.New(result.Error)
		})
		if err != nil {
			return err
		}
		slog.Info("watching", "entry", entry)
		return w.Run(ctx)
	},
}

// entryWatchFiles returns the path to watch for an entry that failed to
// load.  An entry that does not exist yet is watched by its absolute path so
// its directory is watched.
func entryWatchFiles(fs loader.FileSystem, entry string) []string {
	if canonical, err := fs.Canonicalize(entry); err == nil {
		return []string{canonical}
	}
	if strings.Contains(entry, "://") {
		return nil
	}
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil
	}
	// Symlinks in the directory are resolved the way LocalFS does it.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	return []string{abs}
}

func init() {
	AddCommand(watchCmd)
}
