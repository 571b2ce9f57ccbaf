package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/algonet/backend/internal/database"
	"github.com/algonet/backend/internal/domain"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/pagination"
)

const graphColumns = `id, user_id, name, has_legend, created_at, updated_at`

// GraphRepository implements repository.GraphRepository using PostgreSQL.
type GraphRepository struct {
	pool database.DBTX
}

// NewGraphRepository creates a new PostgreSQL-backed graph repository.
func NewGraphRepository(pool database.DBTX) *GraphRepository {
	return &GraphRepository{pool: pool}
}

// Create inserts a graph with its child collections in one transaction.
func (r *GraphRepository) Create(ctx context.Context, g *domain.Graph) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO graphs (user_id, name, has_legend, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if err := tx.QueryRow(ctx, query, g.UserID, g.Name, g.HasLegend, g.CreatedAt, g.UpdatedAt).Scan(&g.ID); err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}

	if err := insertChildren(ctx, tx, g); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit graph: %w", err)
	}

	return nil
}

// GetByID retrieves a graph with its nodes, edges and legend entries.
func (r *GraphRepository) GetByID(ctx context.Context, id int64) (*domain.Graph, error) {
	var g domain.Graph

	query := `SELECT ` + graphColumns + ` FROM graphs WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.UserID, &g.Name, &g.HasLegend, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan graph: %w", err)
	}

	if g.Nodes, err = r.loadNodes(ctx, id); err != nil {
		return nil, err
	}
	if g.Edges, err = r.loadEdges(ctx, id); err != nil {
		return nil, err
	}
	if g.LegendEntries, err = r.loadLegendEntries(ctx, id); err != nil {
		return nil, err
	}

	return &g, nil
}

// Replace overwrites the graph's name, legend flag and child collections
// in a single transaction. The previous children are removed and the new
// ones inserted, so a failure leaves the stored graph untouched.
func (r *GraphRepository) Replace(ctx context.Context, g *domain.Graph) error {
	g.UpdatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE graphs SET name = $1, has_legend = $2, updated_at = $3 WHERE id = $4`

	ct, err := tx.Exec(ctx, query, g.Name, g.HasLegend, g.UpdatedAt, g.ID)
	if err != nil {
		return fmt.Errorf("update graph: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	for _, table := range []string{"edges", "nodes", "legend_entries"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE graph_id = $1`, g.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertChildren(ctx, tx, g); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit graph replace: %w", err)
	}

	return nil
}

// Delete removes a graph; child rows go with it via ON DELETE CASCADE.
func (r *GraphRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// GetOwners returns the owner user ID for each of the given graph IDs.
func (r *GraphRepository) GetOwners(ctx context.Context, ids []int64) (map[int64]int64, error) {
	owners := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, user_id FROM graphs WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query graph owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, userID int64
		if err := rows.Scan(&id, &userID); err != nil {
			return nil, fmt.Errorf("scan graph owner: %w", err)
		}
		owners[id] = userID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph owners: %w", err)
	}

	return owners, nil
}

// DeleteByIDs removes all of the given graphs.
func (r *GraphRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM graphs WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete graphs: %w", err)
	}

	return nil
}

// ListByUser returns the user's graphs ordered by last update descending.
// A window with a non-positive limit returns every row. Child
// collections are not loaded.
func (r *GraphRepository) ListByUser(ctx context.Context, userID int64, w pagination.Window) ([]domain.Graph, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM graphs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count graphs: %w", err)
	}

	query := `SELECT ` + graphColumns + ` FROM graphs WHERE user_id = $1 ORDER BY updated_at DESC`
	args := []any{userID}
	if w.Limit > 0 {
		query += ` OFFSET $2 LIMIT $3`
		args = append(args, w.Offset, w.Limit)
	}

	graphs, err := r.listGraphs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return graphs, total, nil
}

// ListAll returns every graph of every user ordered by last update
// descending. Child collections are not loaded.
func (r *GraphRepository) ListAll(ctx context.Context) ([]domain.Graph, error) {
	query := `SELECT ` + graphColumns + ` FROM graphs ORDER BY updated_at DESC`

	return r.listGraphs(ctx, query)
}

func (r *GraphRepository) listGraphs(ctx context.Context, query string, args ...any) ([]domain.Graph, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	graphs := []domain.Graph{}
	for rows.Next() {
		var g domain.Graph
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.HasLegend, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}

	return graphs, nil
}

func (r *GraphRepository) loadNodes(ctx context.Context, graphID int64) ([]domain.Node, error) {
	query := `
		SELECT id, node_id, label, size, color, position_x, position_y
		FROM nodes WHERE graph_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []domain.Node{}
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(&n.ID, &n.NodeID, &n.Label, &n.Size, &n.Color, &n.PositionX, &n.PositionY); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *GraphRepository) loadEdges(ctx context.Context, graphID int64) ([]domain.Edge, error) {
	query := `
		SELECT id, edge_id, from_node, to_node, weight, is_directed, show_weight
		FROM edges WHERE graph_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []domain.Edge{}
	for rows.Next() {
		var e domain.Edge
		if err := rows.Scan(&e.ID, &e.EdgeID, &e.FromNode, &e.ToNode, &e.Weight, &e.IsDirected, &e.ShowWeight); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (r *GraphRepository) loadLegendEntries(ctx context.Context, graphID int64) ([]domain.LegendEntry, error) {
	query := `
		SELECT id, name, color, capacity, distance, unit_distance, size
		FROM legend_entries WHERE graph_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("query legend entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.LegendEntry{}
	for rows.Next() {
		var le domain.LegendEntry
		if err := rows.Scan(&le.ID, &le.Name, &le.Color, &le.Capacity, &le.Distance, &le.UnitDistance, &le.Size); err != nil {
			return nil, fmt.Errorf("scan legend entry: %w", err)
		}
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

// insertChildren inserts the graph's nodes, edges and legend entries
// within the given transaction, filling in the generated IDs.
func insertChildren(ctx context.Context, tx pgx.Tx, g *domain.Graph) error {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		query := `
			INSERT INTO nodes (graph_id, node_id, label, size, color, position_x, position_y)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
		if err := tx.QueryRow(ctx, query, g.ID, n.NodeID, n.Label, n.Size, n.Color, n.PositionX, n.PositionY).Scan(&n.ID); err != nil {
			return fmt.Errorf("insert node: %w", err)
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		query := `
			INSERT INTO edges (graph_id, edge_id, from_node, to_node, weight, is_directed, show_weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
		if err := tx.QueryRow(ctx, query, g.ID, e.EdgeID, e.FromNode, e.ToNode, e.Weight, e.IsDirected, e.ShowWeight).Scan(&e.ID); err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}

	for i := range g.LegendEntries {
		le := &g.LegendEntries[i]
		query := `
			INSERT INTO legend_entries (graph_id, name, color, capacity, distance, unit_distance, size)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
		if err := tx.QueryRow(ctx, query, g.ID, le.Name, le.Color, le.Capacity, le.Distance, le.UnitDistance, le.Size).Scan(&le.ID); err != nil {
			return fmt.Errorf("insert legend entry: %w", err)
		}
	}

	return nil
}
