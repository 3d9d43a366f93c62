package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/engine"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mastery",
	Short: "A spaced repetition tracker for algorithmic problem practice",
	Long: `Mastery tracks your practice of algorithmic problems and schedules
reviews using a spaced repetition algorithm (SM-2). Rate each review
Again, Hard, Good or Easy and the next review date adjusts to how well
you remembered the approach.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default ~/.mastery)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".mastery"))
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("MASTERY")
	viper.AutomaticEnv()

	viper.SetDefault("initial_ease", 2.5)

	// a missing config file is fine; any other read error is not
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Println("⚠️ Config error:", err)
		}
	}
}

// openStore opens the sqlite store at the configured location.
func openStore() (*db.Store, error) {
	path, err := db.DefaultPath(viper.GetString("data_dir"))
	if err != nil {
		return nil, err
	}
	return db.Open(path, slog.Default())
}

// openEngine wires a transition engine over the configured store. The
// caller closes the returned store.
func openEngine() (*engine.Engine, *db.Store, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	e := engine.New(store, slog.Default(), engine.WithInitialEase(viper.GetFloat64("initial_ease")))
	return e, store, nil
}
