//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DefaultRequesterID is present after every ResetDB.
const DefaultRequesterID = "guest-default"

func CreateTestResource(t *testing.T, db DBLike, id string, capacity int, requiresReturn bool, attrsJSON string) {
	t.Helper()

	if attrsJSON == "" {
		attrsJSON = "{}"
	}
	ctx := context.Background()
	_, err := db.Exec(ctx, `INSERT INTO resources (id, capacity, requires_return, attributes)
		VALUES ($1, $2, $3, $4::jsonb) ON CONFLICT (id) DO NOTHING`,
		id, capacity, requiresReturn, attrsJSON)
	require.NoError(t, err)
}

func CreateTestRequester(t *testing.T, db DBLike, id string) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "INSERT INTO requesters (id, display_name) VALUES ($1, $1) ON CONFLICT (id) DO NOTHING", id)
	require.NoError(t, err)
}

func CountReservations(t *testing.T, db DBLike, resourceID, status string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM reservations WHERE resource_id = $1 AND status = $2", resourceID, status).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO requesters (id, display_name) VALUES ($1, 'Default guest')
		ON CONFLICT (id) DO NOTHING;
	`, DefaultRequesterID)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
