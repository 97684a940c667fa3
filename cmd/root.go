package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pve-planner/pvescrape/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pvescrape",
	Short: "Collect resource profiles of Proxmox VE community scripts",
	Long: `pvescrape reads the VM and LXC installer scripts of the
community-scripts/ProxmoxVE repository and extracts each script's name and default
CPU, RAM and disk allocation into a JSON file used by the planner UI.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.Default)
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("Verbose logging enabled")
		} else if quiet {
			log.SetLevel(log.ErrorLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
		log.Debugf("Config file: %s", configFile)
	},
}

// loadConfig loads the --config file, a discovered .config/pvescrape.yml, or the defaults.
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.LoadOrDiscover(configFile)
	if err != nil {
		log.WithError(err).Error("Failed to load config")
		return nil, err
	}
	if path != "" {
		log.Debugf("Using config file: %s", path)
	} else {
		log.Debug("No config file found, using defaults")
	}
	return cfg, nil
}

func init() {
	// Disable automatic command sorting to maintain semantic order
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: "+config.DefaultPath+" if present)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	RootCmd.AddGroup(&cobra.Group{
		ID:    "workflow",
		Title: "Workflow Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "utility",
		Title: "Utility Commands:",
	})

	RootCmd.SetHelpCommandGroupID("utility")
	RootCmd.SetCompletionCommandGroupID("utility")

	ScrapeCommand.GroupID = "workflow"
	CheckCommand.GroupID = "workflow"
	ListCommand.GroupID = "utility"

	RootCmd.AddCommand(ScrapeCommand) // Step 1: Build images.json
	RootCmd.AddCommand(CheckCommand)  // Step 2: Validate allocations
	RootCmd.AddCommand(ListCommand)   // Utility: Show upstream scripts
}
