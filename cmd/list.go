package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/pve-planner/pvescrape/pkg/config"
	"github.com/pve-planner/pvescrape/pkg/image"
	"github.com/pve-planner/pvescrape/pkg/source"
	"github.com/spf13/cobra"
)

// ListCommand represents the list command
var ListCommand = &cobra.Command{
	Use:   "list [vm|ct]...",
	Short: "List the installer scripts found upstream",
	Long: `Prints the script filenames the scrape command would process, one per line,
grouped by category. Without arguments both categories are listed.`,
	Example: `  # List VM scripts only
  pvescrape list vm`,
	ValidArgs: []string{"vm", "ct"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		types := []image.Type{image.VM, image.LXC}
		if len(args) > 0 {
			types = types[:0]
			for _, arg := range args {
				typ, err := image.ParseType(arg)
				if err != nil {
					return err
				}
				types = append(types, typ)
			}
		}
		return runList(cmd.Context(), cfg, types, cmd.OutOrStdout())
	},
}

func runList(ctx context.Context, cfg *config.Config, types []image.Type, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := source.NewGitHub(cfg.SourceOptions())
	if err != nil {
		return err
	}

	for _, typ := range types {
		names, err := src.ListScripts(ctx, typ.Dir())
		if err != nil {
			log.WithError(err).Errorf("Failed to list %s scripts", typ)
			return err
		}
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("# %s (%s/, %d scripts)", typ, typ.Dir(), len(names))))
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
	}
	return nil
}
