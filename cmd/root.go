package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	botCmd "f1dashboard/pkg/cmd/bot"
	warmCmd "f1dashboard/pkg/cmd/warm"
	webCmd "f1dashboard/pkg/cmd/web"
	"f1dashboard/pkg/config"
)

const envPrefix = "F1DASH"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "f1dash",
	Short: "Formula 1 schedule, results, race stats and live timing dashboard",
	Long: `f1dash renders Formula 1 data from external APIs either as a web
dashboard or as a Telegram bot.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.f1dash.yml)")

	rootCmd.PersistentFlags().StringVar(&config.ErgastURL, "ergast-url",
		"https://api.jolpi.ca/ergast/f1",
		"Base URL of the Ergast compatible API")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryURL, "telemetry-url",
		"http://localhost:8000",
		"Base URL of the telemetry backend")
	rootCmd.PersistentFlags().StringVar(&config.OpenF1URL, "openf1-url",
		"https://api.openf1.org/v1",
		"Base URL of the OpenF1 API")
	rootCmd.PersistentFlags().StringVar(&config.LiveStreamURL, "live-url",
		"http://localhost:8000/stream",
		"URL of the live timing SSE stream")
	rootCmd.PersistentFlags().StringVar(&config.TimeZone, "timezone",
		"UTC",
		"Time zone used to render dates")
	rootCmd.PersistentFlags().StringVar(&config.HTTPTimeout, "http-timeout",
		"30s",
		"Timeout for requests to the external APIs")
	rootCmd.PersistentFlags().StringVar(&config.CacheTTL, "cache-ttl",
		"10m",
		"Duration upstream responses are cached (0 disables caching)")
	rootCmd.PersistentFlags().StringVar(&config.CacheReset, "cache-reset",
		"1h",
		"Interval after which the in-memory cache is dropped")
	rootCmd.PersistentFlags().StringVar(&config.RedisAddr, "redis-addr",
		"",
		"Cache responses in this redis server instead of memory")
	rootCmd.PersistentFlags().StringVar(&config.RedisPassword, "redis-password",
		"",
		"Password for the redis server")
	rootCmd.PersistentFlags().IntVar(&config.RedisDB, "redis-db",
		0,
		"Redis database number")
	rootCmd.PersistentFlags().StringVar(&config.LiveSyncInterval, "live-sync-interval",
		"30s",
		"Interval in which a dropped live stream is dialed again")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format",
		"json",
		"controls the log output format (json, text)")

	// add commands here
	rootCmd.AddCommand(botCmd.NewBotCmd())
	rootCmd.AddCommand(webCmd.NewWebCmd())
	rootCmd.AddCommand(warmCmd.NewWarmCmd())
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	// a missing .env is fine, the environment may be set elsewhere
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".f1dash" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".f1dash")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --telegram-token to F1DASH_TELEGRAM_TOKEN
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
