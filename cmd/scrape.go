package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/pve-planner/pvescrape/pkg/config"
	"github.com/pve-planner/pvescrape/pkg/output"
	"github.com/pve-planner/pvescrape/pkg/scrape"
	"github.com/pve-planner/pvescrape/pkg/source"
	"github.com/spf13/cobra"
)

var (
	// Flags for scrape command
	scrapeOutputFile string
	scrapeOwner      string
	scrapeRepo       string
	scrapeBranch     string
)

// ScrapeCommand represents the scrape command
var ScrapeCommand = &cobra.Command{
	Use:   "scrape",
	Short: "Build the images JSON file from the upstream scripts",
	Long: `Lists every VM script (vm/*.sh) and then every container script (ct/*.sh)
in the upstream repository, extracts the name and default resources of each one
and writes the collected entries as a JSON array.

Any listing, download or extraction failure aborts the run; the output file is
only replaced after every script was processed.`,
	Example: `  # Write src/images.json from community-scripts/ProxmoxVE@main
  pvescrape scrape

  # Scrape a fork into a custom location
  pvescrape scrape --owner=me --branch=develop -o public/images.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyScrapeFlags(cmd, cfg)

		var progress io.Writer = cmd.OutOrStdout()
		if quiet {
			progress = io.Discard
		}
		return runScrape(cmd.Context(), cfg, progress)
	},
}

func init() {
	ScrapeCommand.Flags().StringVarP(&scrapeOutputFile, "output", "o", output.DefaultPath, "Output path for the images JSON file")
	ScrapeCommand.Flags().StringVar(&scrapeOwner, "owner", source.DefaultOwner, "Owner of the upstream repository")
	ScrapeCommand.Flags().StringVar(&scrapeRepo, "repo", source.DefaultRepo, "Name of the upstream repository")
	ScrapeCommand.Flags().StringVar(&scrapeBranch, "branch", source.DefaultBranch, "Branch to read raw scripts from")
}

// applyScrapeFlags lets explicitly set flags override the config file.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output") {
		cfg.Output = scrapeOutputFile
	}
	if cmd.Flags().Changed("owner") {
		cfg.Owner = scrapeOwner
	}
	if cmd.Flags().Changed("repo") {
		cfg.Repo = scrapeRepo
	}
	if cmd.Flags().Changed("branch") {
		cfg.Branch = scrapeBranch
	}
}

// runScrape scrapes the configured repository and writes the output file.
// Nothing is written when scraping fails.
func runScrape(ctx context.Context, cfg *config.Config, progress io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := source.NewGitHub(cfg.SourceOptions())
	if err != nil {
		log.WithError(err).Error("Failed to create GitHub source")
		return err
	}

	fmt.Fprintln(progress, pendingStyle.Render(fmt.Sprintf("Reading %s/%s@%s...", cfg.Owner, cfg.Repo, cfg.Branch)))

	scraper := scrape.New(src,
		scrape.WithReporter(&progressPrinter{w: progress}),
		scrape.WithAliases(cfg.Aliases),
	)
	entries, err := scraper.Run(ctx)
	if err != nil {
		fmt.Fprintln(progress, failureStyle.Render("Failed."))
		log.WithError(err).Error("Scrape failed, output left untouched")
		return err
	}

	log.Debugf("Writing %d entries to %s", len(entries), cfg.Output)
	if err := output.Write(cfg.Output, entries); err != nil {
		log.WithError(err).Errorf("Failed to write output file: %s", cfg.Output)
		return err
	}

	fmt.Fprintln(progress, successStyle.Render("Done."))
	log.Infof("%d images written to %s", len(entries), cfg.Output)
	return nil
}
