package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TALLY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TALLY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	table := fmt.Sprintf("tally_kv_test_%d", time.Now().UnixNano())

	s, err := NewPostgresStore(ctx, dsn, table)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_, err := s.db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+s.table)
		require.NoError(t, err)
		s.Close()
	})

	runStoreTests(t, s)
}
