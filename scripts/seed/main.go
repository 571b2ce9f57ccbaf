// Package main implements a standalone seed script that creates the
// initial admin account and a demo user with a sample diagram. It talks
// to PostgreSQL directly so it can run before the backend is started.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "algonet"),
		getEnv("POSTGRES_PASSWORD", "algonet_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "algonet"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	adminID, err := upsertUser(ctx, pool,
		getEnv("SEED_ADMIN_EMAIL", "admin@algonet.app"),
		getEnv("SEED_ADMIN_PASSWORD", "admin-change-me"),
		"Admin", "User", true)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin account ready (id=%d)", adminID)

	demoID, err := upsertUser(ctx, pool,
		getEnv("SEED_DEMO_EMAIL", "demo@algonet.app"),
		getEnv("SEED_DEMO_PASSWORD", "demo-change-me"),
		"Demo", "User", false)
	if err != nil {
		log.Fatalf("seed demo user: %v", err)
	}
	log.Printf("demo account ready (id=%d)", demoID)

	if err := seedDemoGraph(ctx, pool, demoID); err != nil {
		log.Fatalf("seed demo graph: %v", err)
	}
	log.Println("seed complete")
}

// upsertUser inserts the account if the email is free and returns the id
// either way. The password is only set on first insert.
func upsertUser(ctx context.Context, pool *pgxpool.Pool, email, password, firstName, lastName string, isAdmin bool) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		email, string(hash), firstName, lastName, isAdmin,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert %s: %w", email, err)
	}
	return id, nil
}

// seedDemoGraph creates a small triangle diagram for the demo account
// unless the account already owns a graph.
func seedDemoGraph(ctx context.Context, pool *pgxpool.Pool, userID int64) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM graphs WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return fmt.Errorf("count graphs: %w", err)
	}
	if count > 0 {
		log.Println("demo graph already present, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var graphID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO graphs (user_id, name, has_legend)
		VALUES ($1, 'Demo triangle', FALSE)
		RETURNING id`, userID,
	).Scan(&graphID)
	if err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}

	nodes := []struct {
		nodeID, label string
		x, y          float64
	}{
		{"n1", "A", 100, 100},
		{"n2", "B", 300, 100},
		{"n3", "C", 200, 260},
	}
	for _, n := range nodes {
		_, err = tx.Exec(ctx, `
			INSERT INTO nodes (graph_id, node_id, label, position_x, position_y)
			VALUES ($1, $2, $3, $4, $5)`,
			graphID, n.nodeID, n.label, n.x, n.y)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.nodeID, err)
		}
	}

	edges := [][2]string{{"n1", "n2"}, {"n2", "n3"}, {"n1", "n3"}}
	for i, e := range edges {
		_, err = tx.Exec(ctx, `
			INSERT INTO edges (graph_id, edge_id, from_node, to_node)
			VALUES ($1, $2, $3, $4)`,
			graphID, fmt.Sprintf("e%d", i+1), e[0], e[1])
		if err != nil {
			return fmt.Errorf("insert edge %d: %w", i+1, err)
		}
	}

	return tx.Commit(ctx)
}
