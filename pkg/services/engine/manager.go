package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/services/config"
	"github.com/de-tools/peg-lens/pkg/services/source"
)

// RunRequest is one analysis request against a named warehouse backend.
type RunRequest struct {
	Backend string
	Profile string
	Params  Params
}

// Manager opens a warehouse source per request and runs the engine against
// it. It holds only read-only configuration, so concurrent requests are safe.
type Manager struct {
	cfg         *config.Engine
	registry    source.Registry
	profilePath string
}

func NewManager(cfg *config.Engine, registry source.Registry, profilePath string) *Manager {
	return &Manager{
		cfg:         cfg,
		registry:    registry,
		profilePath: profilePath,
	}
}

func (m *Manager) Analyze(ctx context.Context, req RunRequest) (*domain.AnalysisReport, error) {
	logger := zerolog.Ctx(ctx)

	src, err := m.registry.Open(req.Backend, m.profilePath, req.Profile, m.cfg.CounterTable)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q source: %w", req.Backend, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close warehouse source")
		}
	}()

	eng, err := New(m.cfg, src.Rows, nil)
	if err != nil {
		return nil, err
	}

	return eng.Run(ctx, req.Params)
}

func (m *Manager) ListBackends() []string {
	return m.registry.ListBackends()
}
