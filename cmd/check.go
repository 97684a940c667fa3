package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/pve-planner/pvescrape/pkg/image"
	"github.com/pve-planner/pvescrape/pkg/output"
	"github.com/spf13/cobra"
)

// CheckCommand represents the check command
var CheckCommand = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Check an images JSON file against the planner's allocation limits",
	Long: fmt.Sprintf(`Reads an images JSON file (default: the configured output path) and reports
every entry that the planner cannot represent:
- cpu greater than %d
- ram not a multiple of %d MB
- disk not a multiple of %d MB
- id that is not lowercase alphanumeric`, image.MaxCPU, image.RAMIncrement, image.DiskIncrement),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running check command...")

		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Output
		}
		return runCheck(path, cmd.OutOrStdout())
	},
}

// runCheck prints a table of problems and fails when there is at least one.
func runCheck(path string, w io.Writer) error {
	log.Debugf("Reading images from: %s", path)
	entries, err := output.Read(path)
	if err != nil {
		log.WithError(err).Errorf("Failed to read images file: %s", path)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	failed := 0
	for _, entry := range entries {
		problems := entry.CheckAllocation()
		if len(problems) == 0 {
			continue
		}
		if failed == 0 {
			fmt.Fprintln(tw, "TYPE\tNAME\tPROBLEMS")
		}
		failed++
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Type, entry.Name, strings.Join(problems, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		fmt.Fprintln(w, failureStyle.Render(fmt.Sprintf("✗ %d of %d entries out of range", failed, len(entries))))
		return fmt.Errorf("%d entries failed the allocation check", failed)
	}
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✓ %d entries within range", len(entries))))
	log.Info("✓ Check completed successfully")
	return nil
}
