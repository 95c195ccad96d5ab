package main

import (
	"fmt"
	"os"

	"github.com/benjaminschreck/go-docmerge/pkg/docmerge"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	logFile    string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docmerge",
	Short: "Fill placeholders in DOCX templates",
	Long: `docmerge fills ${name} placeholders in Word templates. Values, HTML,
markdown and images can be merged, and table rows or blocks cloned, from
flags or from a YAML plan.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := docmerge.LoadConfig(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			config.LogLevel = logLevel
		}
		if verbose {
			config.LogLevel = "debug"
		}
		if logFile != "" {
			config.LogFile = logFile
		}
		if err := config.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger := docmerge.NewLogger(os.Stderr, docmerge.ParseLogLevel(config.LogLevel))
		if config.LogFile != "" {
			logger, err = docmerge.NewFileLogger(config.LogFile, docmerge.ParseLogLevel(config.LogLevel))
			if err != nil {
				return err
			}
		}
		docmerge.SetLogger(logger)
		docmerge.SetGlobalConfig(config)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = docmerge.GetLogger().Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("docmerge", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to a rotating file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
