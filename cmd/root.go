/*
Copyright © 2025 Mardromus
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mardromus/scrumdinger/internal/logger"
	"github.com/mardromus/scrumdinger/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scrumdinger",
	Short: "ScrumDinger schedules and runs timed daily scrum meetings.",
	Long: `ScrumDinger is a meeting facilitation tool for agile daily standups.
It schedules scrums, runs a timed round-robin speaking rotation, records
per-speaker transcripts and talk times, and produces AI-generated summaries
with action items.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.HandlePanic()
	logger.SetVersion(version)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.scrumdinger.yaml or ./.scrumdinger.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

// GetDataFilePath returns the full path to the scrums data file.
func GetDataFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Project.DataDir, config.Data.File)
}

// GetStore initializes and returns the scrum store.
func GetStore() (store.ScrumStore, error) {
	s := store.NewFileScrumStore()
	config := GetConfig()

	dataFilePath := GetDataFilePath()

	err := s.Initialize(map[string]string{
		"dataFile":       dataFilePath,
		"dataFileFormat": config.Data.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", dataFilePath, err)
	}
	return s, nil
}
