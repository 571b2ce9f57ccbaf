package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/algonet/backend/internal/domain"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/pagination"
	"github.com/algonet/backend/internal/repository"
)

// GraphService implements the business logic for diagram storage.
type GraphService struct {
	graphs repository.GraphRepository
	logger *slog.Logger
}

// NewGraphService creates a new graph service.
func NewGraphService(graphs repository.GraphRepository, logger *slog.Logger) *GraphService {
	return &GraphService{graphs: graphs, logger: logger}
}

// NodeInput is one node of a submitted graph. Optional attributes are
// pointers so an omitted value can be told apart from a zero.
type NodeInput struct {
	NodeID    string  `json:"nodeId"`
	Label     string  `json:"label"`
	Size      *int    `json:"size"`
	Color     *string `json:"color"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
}

// EdgeInput is one edge of a submitted graph.
type EdgeInput struct {
	EdgeID     string   `json:"edgeId"`
	FromNode   string   `json:"fromNode"`
	ToNode     string   `json:"toNode"`
	Weight     *float64 `json:"weight"`
	IsDirected *bool    `json:"isDirected"`
	ShowWeight *bool    `json:"showWeight"`
}

// LegendEntryInput is one legend entry of a submitted graph. The
// numeric attributes arrive as JSON numbers and may be fractional.
type LegendEntryInput struct {
	Name         string   `json:"name" validate:"required"`
	Color        string   `json:"color" validate:"required"`
	Capacity     *float64 `json:"capacity"`
	Distance     *float64 `json:"distance"`
	UnitDistance *float64 `json:"unitDistance"`
	Size         *float64 `json:"size"`
}

// GraphInput is a full graph submission, used both for creating a new
// graph and for replacing an existing one.
type GraphInput struct {
	Name          string             `json:"name" validate:"required"`
	Nodes         []NodeInput        `json:"nodes"`
	Edges         []EdgeInput        `json:"edges"`
	HasLegend     bool               `json:"hasLegend"`
	LegendEntries []LegendEntryInput `json:"legendEntries"`
}

// toDomain applies defaults and computes the effective legend flag.
// HasLegend holds only when legend entries were actually submitted
// alongside the request flag; without it the entries are discarded.
// Dedup is the replace path's concern, not done here.
func (in GraphInput) toDomain(userID int64) *domain.Graph {
	nodes := make([]domain.Node, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		node := domain.Node{
			NodeID:    n.NodeID,
			Label:     n.Label,
			Size:      domain.DefaultNodeSize,
			Color:     domain.DefaultNodeColor,
			PositionX: n.PositionX,
			PositionY: n.PositionY,
		}
		if n.Size != nil {
			node.Size = *n.Size
		}
		if n.Color != nil {
			node.Color = *n.Color
		}
		nodes = append(nodes, node)
	}

	edges := make([]domain.Edge, 0, len(in.Edges))
	for _, e := range in.Edges {
		edge := domain.Edge{
			EdgeID:     e.EdgeID,
			FromNode:   e.FromNode,
			ToNode:     e.ToNode,
			Weight:     domain.DefaultEdgeWeight,
			ShowWeight: true,
		}
		if e.Weight != nil {
			edge.Weight = *e.Weight
		}
		if e.IsDirected != nil {
			edge.IsDirected = *e.IsDirected
		}
		if e.ShowWeight != nil {
			edge.ShowWeight = *e.ShowWeight
		}
		edges = append(edges, edge)
	}

	entries := make([]domain.LegendEntry, 0, len(in.LegendEntries))
	for _, le := range in.LegendEntries {
		entries = append(entries, domain.LegendEntry{
			Name:         le.Name,
			Color:        le.Color,
			Capacity:     le.Capacity,
			Distance:     le.Distance,
			UnitDistance: le.UnitDistance,
			Size:         le.Size,
		})
	}

	hasLegend := in.HasLegend && len(entries) > 0
	if !hasLegend {
		entries = []domain.LegendEntry{}
	}

	return &domain.Graph{
		UserID:        userID,
		Name:          in.Name,
		Nodes:         nodes,
		Edges:         edges,
		LegendEntries: entries,
		HasLegend:     hasLegend,
	}
}

// Save stores a new graph for the user.
func (s *GraphService) Save(ctx context.Context, userID int64, input GraphInput) (*domain.Graph, error) {
	g := input.toDomain(userID)

	if err := s.graphs.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create graph: %w", err)
	}

	s.logger.InfoContext(ctx, "graph saved",
		slog.Int64("graph_id", g.ID),
		slog.Int64("user_id", userID),
		slog.Int("nodes", len(g.Nodes)),
		slog.Int("edges", len(g.Edges)),
	)

	return g, nil
}

// Update replaces the stored graph wholesale with the submitted one.
// Ownership is checked against the stored row before anything changes.
func (s *GraphService) Update(ctx context.Context, userID, graphID int64, input GraphInput) (*domain.Graph, error) {
	stored, err := s.getOwned(ctx, userID, graphID)
	if err != nil {
		return nil, err
	}

	g := input.toDomain(userID)
	g.ID = stored.ID
	g.CreatedAt = stored.CreatedAt
	g.Nodes = domain.DedupeNodes(g.Nodes)
	g.Edges = domain.DedupeEdges(g.Edges)

	if err := s.graphs.Replace(ctx, g); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.GraphNotFound(graphID)
		}
		return nil, fmt.Errorf("replace graph: %w", err)
	}

	s.logger.InfoContext(ctx, "graph updated",
		slog.Int64("graph_id", g.ID),
		slog.Int64("user_id", userID),
	)

	return g, nil
}

// Get returns the user's graph with all child collections.
func (s *GraphService) Get(ctx context.Context, userID, graphID int64) (*domain.Graph, error) {
	return s.getOwned(ctx, userID, graphID)
}

// Delete removes the user's graph.
func (s *GraphService) Delete(ctx context.Context, userID, graphID int64) error {
	if _, err := s.getOwned(ctx, userID, graphID); err != nil {
		return err
	}

	if err := s.graphs.Delete(ctx, graphID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.GraphNotFound(graphID)
		}
		return fmt.Errorf("delete graph: %w", err)
	}

	s.logger.InfoContext(ctx, "graph deleted",
		slog.Int64("graph_id", graphID),
		slog.Int64("user_id", userID),
	)

	return nil
}

// BulkDelete removes the user's graphs in one pass. IDs that do not
// exist are skipped; a single graph owned by someone else fails the
// whole request before anything is deleted.
func (s *GraphService) BulkDelete(ctx context.Context, userID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.New(http.StatusBadRequest, apperrors.CodeEmptyList, "no graph ids provided")
	}

	owners, err := s.graphs.GetOwners(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("resolve graph owners: %w", err)
	}

	existing := make([]int64, 0, len(ids))
	for _, id := range ids {
		owner, ok := owners[id]
		if !ok {
			continue
		}
		if owner != userID {
			return 0, apperrors.AccessDenied(fmt.Sprintf("graph %d belongs to another user", id))
		}
		existing = append(existing, id)
	}

	if err := s.graphs.DeleteByIDs(ctx, existing); err != nil {
		return 0, fmt.Errorf("delete graphs: %w", err)
	}

	s.logger.InfoContext(ctx, "graphs bulk deleted",
		slog.Int64("user_id", userID),
		slog.Int("requested", len(ids)),
		slog.Int("deleted", len(existing)),
	)

	return len(existing), nil
}

// List returns a page of the user's graphs, most recently updated first.
func (s *GraphService) List(ctx context.Context, userID int64, w pagination.Window) (pagination.Page[domain.Graph], error) {
	graphs, total, err := s.graphs.ListByUser(ctx, userID, w)
	if err != nil {
		return pagination.Page[domain.Graph]{}, fmt.Errorf("list graphs: %w", err)
	}
	return pagination.NewPage(graphs, total, w), nil
}

// ListFull returns all of the user's graphs, most recently updated
// first, without an envelope.
func (s *GraphService) ListFull(ctx context.Context, userID int64) ([]domain.Graph, error) {
	graphs, _, err := s.graphs.ListByUser(ctx, userID, pagination.Window{})
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	return graphs, nil
}

// ListAll returns every stored graph regardless of owner.
func (s *GraphService) ListAll(ctx context.Context) ([]domain.Graph, error) {
	graphs, err := s.graphs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all graphs: %w", err)
	}
	return graphs, nil
}

// getOwned loads a graph and verifies the caller owns it.
func (s *GraphService) getOwned(ctx context.Context, userID, graphID int64) (*domain.Graph, error) {
	g, err := s.graphs.GetByID(ctx, graphID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.GraphNotFound(graphID)
		}
		return nil, fmt.Errorf("load graph: %w", err)
	}

	if g.UserID != userID {
		return nil, apperrors.AccessDenied("graph belongs to another user")
	}

	return g, nil
}
