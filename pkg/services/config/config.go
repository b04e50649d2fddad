package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/services/analysis"
)

// DerivedPegDef is one derived metric definition. Definitions keep their
// declaration order so later formulas may reference earlier derived names.
type DerivedPegDef struct {
	Name    string `mapstructure:"name"`
	Formula string `mapstructure:"formula"`
}

// Engine is the analysis engine configuration.
type Engine struct {
	GroupingScope         domain.GroupingScope      `mapstructure:"grouping_scope"`
	AnalysisType          domain.AnalysisType       `mapstructure:"analysis_type"`
	TokenBudget           int                       `mapstructure:"token_budget"`
	MaxRetriesPerEndpoint int                       `mapstructure:"max_retries_per_endpoint"`
	Timezone              string                    `mapstructure:"timezone"`
	CounterTable          string                    `mapstructure:"counter_table"`
	KnownPegs             []string                  `mapstructure:"known_pegs"`
	SelectedPegs          []string                  `mapstructure:"selected_pegs"`
	DerivedPegs           []DerivedPegDef           `mapstructure:"derived_pegs"`
	Endpoints             []analysis.EndpointConfig `mapstructure:"endpoints"`
}

// Load reads and validates the engine configuration file.
func Load(path string) (*Engine, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("grouping_scope", string(domain.ScopeIntegrated))
	v.SetDefault("analysis_type", string(domain.AnalysisOverall))
	v.SetDefault("token_budget", 3000)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Engine
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Engine) Validate() error {
	switch c.GroupingScope {
	case domain.ScopePerCell, domain.ScopeIntegrated:
	default:
		return fmt.Errorf("invalid grouping_scope %q", c.GroupingScope)
	}
	switch c.AnalysisType {
	case domain.AnalysisOverall, domain.AnalysisEnhanced, domain.AnalysisSpecific:
	default:
		return fmt.Errorf("invalid analysis_type %q", c.AnalysisType)
	}
	if c.TokenBudget <= 0 {
		return fmt.Errorf("token_budget must be positive, got %d", c.TokenBudget)
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one analysis endpoint must be configured")
	}
	for i, ep := range c.Endpoints {
		if ep.URL == "" {
			return fmt.Errorf("endpoint %d is missing a url", i)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *Engine) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DerivedDefs maps the config definitions to domain types, preserving order.
func (c *Engine) DerivedDefs() []domain.DerivedPeg {
	defs := make([]domain.DerivedPeg, 0, len(c.DerivedPegs))
	for _, d := range c.DerivedPegs {
		defs = append(defs, domain.DerivedPeg{Name: d.Name, Formula: d.Formula})
	}
	return defs
}
