// Package repository defines the persistence interfaces for the service
// layer.
package repository

import (
	"context"

	"github.com/algonet/backend/internal/domain"
	"github.com/algonet/backend/internal/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by their identifier.
	Delete(ctx context.Context, id int64) error

	// List returns non-admin users at the given window in insertion
	// order, together with the total non-admin count.
	List(ctx context.Context, w pagination.Window) ([]domain.User, int64, error)
}

// GraphRepository defines the interface for graph persistence operations.
// Reads return graphs with their nodes, edges and legend entries loaded.
type GraphRepository interface {
	// Create inserts a graph with its children and fills in the
	// generated IDs.
	Create(ctx context.Context, g *domain.Graph) error

	// GetByID retrieves a graph with all child collections.
	GetByID(ctx context.Context, id int64) (*domain.Graph, error)

	// Replace overwrites the graph's name, legend flag and child
	// collections in a single transaction.
	Replace(ctx context.Context, g *domain.Graph) error

	// Delete removes a graph and, via cascade, its children.
	Delete(ctx context.Context, id int64) error

	// GetOwners returns the owner of each of the given graph IDs.
	// Missing IDs are absent from the result.
	GetOwners(ctx context.Context, ids []int64) (map[int64]int64, error)

	// DeleteByIDs removes all of the given graphs.
	DeleteByIDs(ctx context.Context, ids []int64) error

	// ListByUser returns the user's graphs at the given window, most
	// recently updated first, together with the user's total graph
	// count. A window with a non-positive limit returns every row.
	// Child collections are not loaded.
	ListByUser(ctx context.Context, userID int64, w pagination.Window) ([]domain.Graph, int64, error)

	// ListAll returns every graph of every user, most recently updated
	// first. Child collections are not loaded.
	ListAll(ctx context.Context) ([]domain.Graph, error)
}
