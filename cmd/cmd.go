package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData   bool
	seedSamples bool
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "hospital-admin",
	Short: "Hospital Admin",
	Long:  `Administrative backend for hospital staff accounts, permissions and role bindings.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// containers get their configuration from plain env vars
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config file: %w", err)
	}

	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")

	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().BoolVar(&seedSamples, "samples", false, "Also seed one sample account per operational role")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
