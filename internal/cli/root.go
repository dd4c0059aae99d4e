// Package cli is the moodweather command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/moodweather/internal/config"
	"github.com/ewilliams-labs/moodweather/internal/logging"
)

type rootOptions struct {
	configFile string
	envFile    string
	cfg        *config.Config
}

// NewRootCmd builds the moodweather command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "moodweather",
		Short: "Weather-driven moods and music suggestions",
		Long: `MoodWeather turns the current weather into a short mood phrase and a
matching song, using OpenWeather, a text-generation model and a music catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{
				Flags:      cmd.Flags(),
				ConfigFile: opts.configFile,
				EnvFile:    opts.envFile,
			})
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logging.SetGlobalLogger(logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			}))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml, json, toml or env)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	config.RegisterFlags(flags)

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMoodCmd(opts))
	root.AddCommand(newHistoryCmd(opts))

	return root
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(NewRootCmd().Execute())
}
