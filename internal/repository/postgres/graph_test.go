package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algonet/backend/internal/domain"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/pagination"
)

func newGraphTestFixture(t *testing.T) (*GraphRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewGraphRepository(mock)
	return repo, mock
}

func sampleGraph() *domain.Graph {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Graph{
		ID:        3,
		UserID:    7,
		Name:      "network",
		HasLegend: true,
		Nodes: []domain.Node{
			{NodeID: "a", Label: "A", Size: 20, Color: "#1976d2"},
		},
		Edges: []domain.Edge{
			{FromNode: "a", ToNode: "a", Weight: 1, ShowWeight: true},
		},
		LegendEntries: []domain.LegendEntry{
			{Name: "hub", Color: "#ff0000"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func graphColumnNames() []string {
	return []string{"id", "user_id", "name", "has_legend", "created_at", "updated_at"}
}

func graphRow(g *domain.Graph) *pgxmock.Rows {
	return pgxmock.NewRows(graphColumnNames()).AddRow(
		g.ID, g.UserID, g.Name, g.HasLegend, g.CreatedAt, g.UpdatedAt,
	)
}

func expectChildInserts(mock pgxmock.PgxPoolIface, g *domain.Graph) {
	for i, n := range g.Nodes {
		mock.ExpectQuery("INSERT INTO nodes").
			WithArgs(g.ID, n.NodeID, n.Label, n.Size, n.Color, n.PositionX, n.PositionY).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(100 + i)))
	}
	for i, e := range g.Edges {
		mock.ExpectQuery("INSERT INTO edges").
			WithArgs(g.ID, e.EdgeID, e.FromNode, e.ToNode, e.Weight, e.IsDirected, e.ShowWeight).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(200 + i)))
	}
	for i, le := range g.LegendEntries {
		mock.ExpectQuery("INSERT INTO legend_entries").
			WithArgs(g.ID, le.Name, le.Color, le.Capacity, le.Distance, le.UnitDistance, le.Size).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(300 + i)))
	}
}

func TestGraphRepository_Create(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()
	g.ID = 0

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO graphs").
		WithArgs(g.UserID, g.Name, g.HasLegend, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	gWithID := *g
	gWithID.ID = 3
	expectChildInserts(mock, &gWithID)
	mock.ExpectCommit()

	err := repo.Create(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, int64(3), g.ID)
	assert.Equal(t, int64(100), g.Nodes[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_Replace(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE graphs").
		WithArgs(g.Name, g.HasLegend, pgxmock.AnyArg(), g.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM edges").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM nodes").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM legend_entries").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	expectChildInserts(mock, g)
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), g)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_Replace_NotFound(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE graphs").
		WithArgs(g.Name, g.HasLegend, pgxmock.AnyArg(), g.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), g)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_Replace_RollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE graphs").
		WithArgs(g.Name, g.HasLegend, pgxmock.AnyArg(), g.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM edges").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM nodes").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM legend_entries").
		WithArgs(g.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery("INSERT INTO nodes").
		WithArgs(g.ID, g.Nodes[0].NodeID, g.Nodes[0].Label, g.Nodes[0].Size, g.Nodes[0].Color, g.Nodes[0].PositionX, g.Nodes[0].PositionY).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), g)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_GetByID(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectQuery("SELECT (.+) FROM graphs WHERE id").
		WithArgs(g.ID).
		WillReturnRows(graphRow(g))
	mock.ExpectQuery("SELECT (.+) FROM nodes").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "node_id", "label", "size", "color", "position_x", "position_y"}).
			AddRow(int64(100), "a", "A", 20, "#1976d2", 0.0, 0.0))
	mock.ExpectQuery("SELECT (.+) FROM edges").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "edge_id", "from_node", "to_node", "weight", "is_directed", "show_weight"}).
			AddRow(int64(200), "", "a", "a", 1.0, false, true))
	capacity := 1.5
	mock.ExpectQuery("SELECT (.+) FROM legend_entries").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "color", "capacity", "distance", "unit_distance", "size"}).
			AddRow(int64(300), "hub", "#ff0000", &capacity, (*float64)(nil), (*float64)(nil), (*float64)(nil)))

	got, err := repo.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, got.Name)
	require.Len(t, got.Nodes, 1)
	require.Len(t, got.Edges, 1)
	require.Len(t, got.LegendEntries, 1)
	assert.Equal(t, "hub", got.LegendEntries[0].Name)
	require.NotNil(t, got.LegendEntries[0].Capacity)
	assert.Equal(t, 1.5, *got.LegendEntries[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM graphs WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(graphColumnNames()))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_GetOwners(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	ids := []int64{3, 4, 99}
	mock.ExpectQuery("SELECT id, user_id FROM graphs").
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id"}).
			AddRow(int64(3), int64(7)).
			AddRow(int64(4), int64(8)))

	owners, err := repo.GetOwners(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{3: 7, 4: 8}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_DeleteByIDs_Empty(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	assert.NoError(t, repo.DeleteByIDs(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_ListByUser(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(g.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))
	mock.ExpectQuery("SELECT (.+) FROM graphs WHERE user_id").
		WithArgs(g.UserID, 20, 10).
		WillReturnRows(graphRow(g))

	graphs, total, err := repo.ListByUser(context.Background(), g.UserID, pagination.Window{Offset: 20, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, graphs, 1)
	assert.Empty(t, graphs[0].Nodes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_ListByUser_ZeroWindowFetchesAll(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(g.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT (.+) FROM graphs WHERE user_id").
		WithArgs(g.UserID).
		WillReturnRows(graphRow(g))

	graphs, total, err := repo.ListByUser(context.Background(), g.UserID, pagination.Window{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, graphs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_ListAll(t *testing.T) {
	repo, mock := newGraphTestFixture(t)
	defer mock.Close()

	g := sampleGraph()

	mock.ExpectQuery("SELECT (.+) FROM graphs ORDER BY updated_at").
		WillReturnRows(graphRow(g))

	graphs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
