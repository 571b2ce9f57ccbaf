package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/algonet/backend/internal/algo"
	apperrors "github.com/algonet/backend/internal/errors"
)

// AlgoService executes user-supplied coloring scripts.
type AlgoService struct {
	runner      algo.Runner
	maxFileSize int64
	logger      *slog.Logger
}

// NewAlgoService creates a new custom algorithm service.
func NewAlgoService(runner algo.Runner, maxFileSize int64, logger *slog.Logger) *AlgoService {
	return &AlgoService{runner: runner, maxFileSize: maxFileSize, logger: logger}
}

// Run executes the script against the serialized graph and returns the
// label to color assignment it produces.
func (s *AlgoService) Run(ctx context.Context, script []byte, verticesJSON, edgesJSON string) (map[string]string, error) {
	if len(script) == 0 {
		return nil, apperrors.InvalidInput("script file is empty")
	}
	if int64(len(script)) > s.maxFileSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("script file exceeds %d bytes", s.maxFileSize))
	}

	colors, err := s.runner.Run(ctx, script, verticesJSON, edgesJSON)
	if err != nil {
		s.logger.WarnContext(ctx, "custom algorithm failed", slog.String("error", err.Error()))
		return nil, apperrors.InvalidInput(err.Error())
	}

	s.logger.InfoContext(ctx, "custom algorithm completed", slog.Int("colored_nodes", len(colors)))

	return colors, nil
}
