// Package commands implements the CLI commands for slotwatch.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/slotwatch/internal/logger"
	"github.com/jmylchreest/slotwatch/internal/output"
	"github.com/jmylchreest/slotwatch/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "Watch the DVSA booking site for practical test slots",
	Long: `Slotwatch drives a browser through the DVSA practical test booking
flow using your saved details, then keeps the test centre results
fresh by reloading them on a randomised 30-60 second interval.

Examples:
  # Save your details once
  slotwatch configure

  # Drive the booking flow in a visible Chrome window
  slotwatch run

  # Share details through Redis and publish poll updates to NATS
  slotwatch run --store redis --redis-addr localhost:6379 \
      --nats-url nats://localhost:4222

  # Check which page a saved HTML file is
  slotwatch detect page.html --simulate`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.slotwatch.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "only log errors")
	pf.Bool("log-json", false, "log as JSON")

	pf.String("store", string(store.KindFile), "where booking details are kept: file, redis, memory")
	pf.String("store-path", "", "file store location (default $HOME/.slotwatch/store.yaml)")
	pf.String("redis-addr", "localhost:6379", "redis address for --store redis")
	pf.Int("redis-db", 0, "redis database for --store redis")
	pf.String("redis-prefix", "slotwatch:", "redis key prefix for --store redis")

	for key, name := range map[string]string{
		"config":       "config",
		"debug":        "debug",
		"quiet":        "quiet",
		"log_json":     "log-json",
		"store":        "store",
		"store_path":   "store-path",
		"redis_addr":   "redis-addr",
		"redis_db":     "redis-db",
		"redis_prefix": "redis-prefix",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(name))
	}
}

func initConfig() {
	// A missing .env is normal; anything else is worth a mention.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".slotwatch")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SLOTWATCH")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
}

func openStore() (store.KV, error) {
	kv, err := store.Open(store.Kind(viper.GetString("store")), store.Options{
		Path:      viper.GetString("store_path"),
		RedisAddr: viper.GetString("redis_addr"),
		RedisDB:   viper.GetInt("redis_db"),
		Prefix:    viper.GetString("redis_prefix"),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "kind", viper.GetString("store"))
	return kv, nil
}

// newWriter returns a report writer for the command's --output flag.
func newWriter(cmd *cobra.Command) (*output.Writer, error) {
	name, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(cmd.OutOrStdout(), format)
}
