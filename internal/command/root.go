// Package command contains the CLI command constructors.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/observability"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	configFilePath := filepath.Join(xdg.ConfigHome, "kangaroo.yaml")
	cmd := &cobra.Command{
		Use:          "kangaroo [command] [flags]",
		Short:        "The application intake backend",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := loadOrInitConfig(configFilePath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.InitSlog(cfg)
			logger.DebugContext(cmd.Context(), "configuration loaded", slog.Any("config", cfg))
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(
		&configFilePath,
		"config", "c",
		configFilePath,
		"path to the configuration file",
	)

	cmd.AddCommand(
		serveCommand(),
		userCommand(),
		loginCommand(),
		programCommand(),
		paymentCommand(),
		applicationCommand(),
	)

	return cmd
}

// loadOrInitConfig loads the config file at configFilePath. When it does not
// exist an interactive user is offered to create one; otherwise the defaults
// and the environment are used.
func loadOrInitConfig(configFilePath string) (*config.Config, error) {
	cfg, err := config.Load(configFilePath)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return config.FromEnv()
	}

	resp, err := prompt(fmt.Sprintf("Config not found at %s. Create one? [y|N] ", configFilePath), false)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(resp, []byte("y")) {
		return config.FromEnv()
	}

	resp, err = prompt("Enter the directory holding the static pages [.]: ", false)
	if err != nil {
		return nil, err
	}

	cfg = config.Default()
	if dir := string(bytes.TrimSpace(resp)); dir != "" {
		cfg.StaticDir = dir
	}
	if err = config.Write(configFilePath, cfg); err != nil {
		return nil, err
	}
	return config.Load(configFilePath)
}
