package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/curless/curless/internal/output"
)

var version = "0.1.0"

var (
	// settings holds the defaults shared by every command: flags override
	// the environment, which overrides the defaults file.
	settings = newSettings()

	logger = zerolog.Nop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "curless",
	Short:   "A fluent HTTP client for the terminal",
	Version: version,
	Long: `curless performs single HTTP transactions from the command line.
It shows every header block a server sends, decodes JSON bodies, extracts
values with JSONPath and validates responses against JSON Schema.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. An interrupt cancels the running
// transaction.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetDefault("timeout", 10)
	v.SetDefault("insecure", false)
	v.SetDefault("no-follow", false)
	v.SetDefault("no-color", false)
	v.SetDefault("format", "text")
	v.SetEnvPrefix("CURLESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadSettings configures logging and reads the defaults file before any
// subcommand runs.
func loadSettings(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	configFile, _ := cmd.Flags().GetString("config")

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	stderr := cmd.ErrOrStderr()
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.TimeOnly,
		NoColor:    output.ColorDisabled(stderr, false),
	}).
		Level(level).
		With().
		Timestamp().
		Logger()

	settings = newSettings()
	if err := settings.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	if configFile != "" {
		settings.SetConfigFile(configFile)
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading defaults file: %w", err)
		}
		logger.Debug().Str("file", settings.ConfigFileUsed()).Msg("defaults loaded")
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	settings.AddConfigPath(home)
	settings.SetConfigName(".curless")
	settings.SetConfigType("yaml")
	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading defaults file: %w", err)
	}
	logger.Debug().Str("file", settings.ConfigFileUsed()).Msg("defaults loaded")
	return nil
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Defaults file (default $HOME/.curless.yaml)")
	RootCmd.PersistentFlags().Bool("debug", false, "Log transaction details to stderr")

	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(putCmd)
	RootCmd.AddCommand(patchCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(headCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(benchCmd)
}
