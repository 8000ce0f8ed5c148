package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpgfrm "github.com/dstackai/dstack/pkg/db/postgres/frames"
	kpggbg "github.com/dstackai/dstack/pkg/db/postgres/garbage"
	kpgkey "github.com/dstackai/dstack/pkg/db/postgres/keys"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
	kpgschema "github.com/dstackai/dstack/pkg/db/postgres/schema"
	kpgstk "github.com/dstackai/dstack/pkg/db/postgres/stacks"
	kpgusr "github.com/dstackai/dstack/pkg/db/postgres/users"
)

type stackDBPostgres struct {
	pool    *pgxpool.Pool
	stacks  ddb.StackInterface
	frames  ddb.FrameInterface
	users   ddb.UserInterface
	keys    ddb.KeyInterface
	garbage ddb.GarbageInterface
}

// New connects to postgres at url and brings the schema up to date.
func New(ctx context.Context, url string) (ddb.StackDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, err
	}

	p := dpool.Wrap(pool)
	if err := kpgschema.New(p).Upgrade(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &stackDBPostgres{
		pool:    pool,
		stacks:  kpgstk.New(p),
		frames:  kpgfrm.New(p),
		users:   kpgusr.New(p),
		keys:    kpgkey.New(p),
		garbage: kpggbg.New(p),
	}, nil
}

func (d *stackDBPostgres) Stacks() ddb.StackInterface {
	return d.stacks
}

func (d *stackDBPostgres) Frames() ddb.FrameInterface {
	return d.frames
}

func (d *stackDBPostgres) Users() ddb.UserInterface {
	return d.users
}

func (d *stackDBPostgres) Keys() ddb.KeyInterface {
	return d.keys
}

func (d *stackDBPostgres) Garbage() ddb.GarbageInterface {
	return d.garbage
}

func (d *stackDBPostgres) Close() error {
	d.pool.Close()
	return nil
}
