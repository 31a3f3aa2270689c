package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/ropelab/internal/config"
)

func configCommands() []*cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-14s base %-8g tokens %d  rate %g/s\n",
					name, cfg.Base.Initial, len(cfg.Tokens), cfg.Scrub.Rate)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(initCmd)

	return []*cobra.Command{presetsCmd, configCmd}
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "ropelab.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
