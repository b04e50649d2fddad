package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/runtime/terminal/export"
	"github.com/de-tools/peg-lens/pkg/services/config"
	"github.com/de-tools/peg-lens/pkg/services/engine"
	"github.com/de-tools/peg-lens/pkg/services/source"
)

type AnalyzeCmd struct {
	configPath   string
	profilePath  string
	profile      string
	backend      string
	rangeN1      string
	rangeN       string
	analysisType string
	pegs         []string
	registry     source.Registry
	reporter     *export.Reporter
}

func NewAnalyzeCmd(registry source.Registry, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare two measurement windows and run LLM analysis",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to the engine config file")
	cmd.Flags().StringVar(&ac.profilePath, "credentials", "", "Path to the warehouse credentials file")
	cmd.Flags().StringVar(&ac.profile, "profile", config.DefaultProfile, "Credentials profile to use")
	cmd.Flags().StringVar(&ac.backend, "source", "", "Warehouse backend (e.g., postgres)")
	cmd.Flags().StringVar(&ac.rangeN1, "range-n1", "", "Earlier window, e.g. \"2025-06-01 00:00:00~2025-06-02 00:00:00\"")
	cmd.Flags().StringVar(&ac.rangeN, "range-n", "", "Later window")
	cmd.Flags().StringVar(&ac.analysisType, "type", "", "Analysis type: overall, enhanced or specific")
	cmd.Flags().StringSliceVar(&ac.pegs, "pegs", nil, "Restrict the comparison to these PEG names")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("credentials")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("range-n1")
	_ = cmd.MarkFlagRequired("range-n")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load(ac.configPath)
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}

	manager := engine.NewManager(cfg, ac.registry, ac.profilePath)

	report, err := manager.Analyze(ctx, engine.RunRequest{
		Backend: ac.backend,
		Profile: ac.profile,
		Params: engine.Params{
			RangeN1:      ac.rangeN1,
			RangeN:       ac.rangeN,
			AnalysisType: domain.AnalysisType(ac.analysisType),
			SelectedPegs: ac.pegs,
		},
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return ac.reporter.Handle(report)
}
