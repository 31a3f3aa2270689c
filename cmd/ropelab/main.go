package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/ropelab/internal/config"
	"github.com/san-kum/ropelab/internal/lab"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	base       float64
	theme      string
)

// main registers every command, launches the live view when no subcommand
// is given and exits 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ropelab",
		Short:         "rotary positional embedding lab",
		SilenceUsage:  true,
		RunE:          runLive,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".ropelab", "data directory for saved traces")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset configuration")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.Float64Var(&base, "base", 0, "base frequency (overrides config)")
	rootCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive rotation lab",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(mathCommands()...)
	rootCmd.AddCommand(replayCommands()...)
	rootCmd.AddCommand(storeCommands()...)
	rootCmd.AddCommand(configCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadConfig applies preset, then config file, then env, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("base") {
		cfg.Base.Initial = base
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("config loaded", "preset", preset, "file", configFile, "base", cfg.Base.Initial)
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	l, err := lab.New(cfg, sched.NewTimer(), slog.Default())
	if err != nil {
		return err
	}
	defer l.Close()
	return viz.Run(l, theme)
}
