package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inhand/internal/platform/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "salarycalc",
		Short: "In-hand salary and Indian income tax breakup calculator",
		Long: `salarycalc turns a monthly salary structure into an itemised in-hand
breakup under the old regime, the current new regime or the post 2025-26
new regime.

Component defaults can be kept in $HOME/.config/salarycalc/config.yaml or in
SALARYCALC_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/salarycalc/config.yaml)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(calculateCmd(v))
	root.AddCommand(compareCmd(v))
	root.AddCommand(slabsCmd())
	root.AddCommand(versionCmd())
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "salarycalc"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SALARYCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := logging.Setup(os.Stderr, v.GetString("logging.level"), v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("configuration loaded", "file", v.ConfigFileUsed())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salarycalc %s\n", version)
		},
	}
}
