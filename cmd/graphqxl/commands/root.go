package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/panyam/graphqxl/config"
	"github.com/spf13/cobra"
)

// errReported is returned by commands that already printed their failures.
var errReported = errors.New("errors reported")

var (
	cfgFile  string
	logLevel string
	maxDepth int
	keyGen   string
)

// settings is filled in before any sub-command runs.
var settings *config.Config

var rootCmd = &cobra.Command{
	Use:   "graphqxl",
	Short: "graphqxl resolves GraphQXL schema documents",
	Long: `graphqxl resolves a GraphQXL entry document and everything it imports
into a single set of definitions, reporting syntax errors, duplicate
definitions and import cycles along the way.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the config file (default: ./"+config.DefaultFileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Maximum import nesting, 0 for no limit")
	rootCmd.PersistentFlags().StringVar(&keyGen, "key-gen", "", "Extension key generator: uuid or counter")
}

// loadSettings layers flags over the config file and environment, then
// installs the logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("max-depth") {
		loaded.MaxDepth = maxDepth
	}
	if flags.Changed("key-gen") {
		loaded.KeyGen = keyGen
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	level, err := loaded.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
	settings = loaded
	return nil
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
