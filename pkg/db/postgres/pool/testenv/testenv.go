package testenv

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"

	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
	kpgschema "github.com/dstackai/dstack/pkg/db/postgres/schema"
)

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are cleaned up before returning and after t.
	GetPool(ctx context.Context, t *testing.T) dpool.Pool
}

type pg struct {
	pool *pgxpool.Pool
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) dpool.Pool {
	t.Cleanup(func() {
		t.Helper()
		ClearTables(ctx, p.pool, t)
	})

	ClearTables(ctx, p.pool, t)
	return dpool.Wrap(p.pool)
}

// NewPoolBroaker returns a PoolBroaker over the database named by
// DSTACK_TEST_DATABASE (a postgres:// URL).
//
// The calling test is skipped when the variable is not set.
// The schema is brought up to date before any pool is handed out.
//
// # Args
//
// - ctx: When this context is canceled, the database connection behind
// the pool will be lost.
//
// - t: scope of the PoolBroaker.
func NewPoolBroaker(ctx context.Context, t *testing.T) PoolBroaker {
	t.Helper()

	dsn := os.Getenv("DSTACK_TEST_DATABASE")
	if dsn == "" {
		t.Skip("DSTACK_TEST_DATABASE is not set")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := kpgschema.New(dpool.Wrap(pool)).Upgrade(ctx); err != nil {
		t.Fatal(err)
	}

	return &pg{pool: pool}
}

func ClearTables(ctx context.Context, p *pgxpool.Pool, t *testing.T) {
	t.Helper()

	conn, err := p.Acquire(ctx)
	if err != nil {
		t.Errorf("fail to clean-up tables.: %v", err)
		return
	}
	defer conn.Release()

	for _, command := range []string{
		`truncate "user" cascade`,
		`truncate "sign_key" cascade`,
		`truncate "garbage" cascade`,
		// by cascade, stack, frame, attachment and attachment_param
		// rows follow "user".
	} {
		if _, err := conn.Exec(ctx, command); err != nil {
			t.Errorf("fail to clean-up tables.: %v", err)
		}
	}
}
