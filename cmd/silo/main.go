package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/silo/pkg/events"
	"github.com/cuemby/silo/pkg/log"
	"github.com/cuemby/silo/pkg/store"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status: 1 for usage
// errors and missing records, 2 for any other failed store operation.
func exitCode(err error) int {
	var se *store.Error
	if errors.As(err, &se) && se.Kind != store.NotFound &&
		se.Kind != store.MetadataNotFound && se.Kind != store.InvalidUUID {
		return 2
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:     "silo",
	Short:   "Silo - a file-backed persistence engine for object graphs",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("silo version %s\ncommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("root", "./silo-data", "storage root directory")
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file overlaying --root's defaults")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(ttlCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(safeModeCmd)
	rootCmd.AddCommand(maintenanceCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOut})
}

// openStore builds the Store every subcommand operates on, rooted at
// the --root flag.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	root, _ := cmd.Flags().GetString("root")
	configPath, _ := cmd.Flags().GetString("config")

	var cfg store.Config
	if configPath != "" {
		loaded, err := store.LoadConfig(configPath, root)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = store.DefaultConfig(root)
	}

	registry := store.NewRegistry()
	bus := events.NewBus()
	store.WireMetrics(bus)
	return store.New(cfg, registry, bus)
}
