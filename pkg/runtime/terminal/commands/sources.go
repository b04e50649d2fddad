package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/de-tools/peg-lens/pkg/runtime/terminal/export"
	"github.com/de-tools/peg-lens/pkg/services/config"
	"github.com/de-tools/peg-lens/pkg/services/source"
)

type SourcesCmd struct {
	profilePath string
	registry    source.Registry
	reporter    *export.Reporter
}

func NewSourcesCmd(registry source.Registry, reporter *export.Reporter) *cobra.Command {
	sc := &SourcesCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List registered warehouse backends",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "credentials", "",
		"Also list the profiles available in this credentials file")

	return cmd
}

func (sc *SourcesCmd) run(cmd *cobra.Command, args []string) error {
	backends := sc.registry.ListBackends()
	sort.Strings(backends)

	for _, b := range backends {
		fmt.Fprintln(sc.reporter.Writer(), b)
	}

	if sc.profilePath == "" {
		return nil
	}

	profiles, err := config.Profiles(sc.profilePath)
	if err != nil {
		return err
	}
	fmt.Fprintln(sc.reporter.Writer(), "\nprofiles:")
	for _, p := range profiles {
		fmt.Fprintf(sc.reporter.Writer(), "  %s\n", p)
	}
	return nil
}
