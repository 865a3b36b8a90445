//go:build unit

package pgconv_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"reservation-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestTimeConversions(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, jst)

	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))
	got := pgconv.TimePtrFromPgtype(pgconv.TimeToPgtype(at))
	if assert.NotNil(t, got) {
		assert.True(t, got.Equal(at))
		assert.Equal(t, time.UTC, got.Location())
	}
	assert.False(t, pgconv.TimePtrToPgtype(nil).Valid)
}

func TestUUIDConversions(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, pgconv.UUIDFromPgtype(pgconv.UUIDToPgtype(id)))
	assert.Equal(t, uuid.Nil, pgconv.UUIDFromPgtype(pgtype.UUID{}))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
	assert.False(t, pgconv.IsNoRows(errors.New("other")))

	wrapped := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	assert.Equal(t, "40001", pgconv.SQLState(wrapped))
	assert.Equal(t, "", pgconv.SQLState(errors.New("plain")))
}
