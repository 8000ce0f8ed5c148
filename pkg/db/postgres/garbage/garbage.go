package garbage

import (
	"context"

	ddb "github.com/dstackai/dstack/pkg/db"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

type pgGarbage struct {
	pool dpool.Pool
}

func New(pool dpool.Pool) ddb.GarbageInterface {
	return &pgGarbage{pool: pool}
}

func (g *pgGarbage) Pop(ctx context.Context, callback func(ddb.Garbage) error) (bool, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(
		ctx,
		`
		with "picked" as (
			select "blob_ref" from "garbage" limit 1 for update skip locked
		),
		"removed" as (
			delete from "garbage"
			where "blob_ref" in (select "blob_ref" from "picked")
		)
		select "blob_ref" from "picked"
		`,
	)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	var blobRef string
	popped := false
	for rows.Next() {
		if err := rows.Scan(&blobRef); err != nil {
			return false, err
		}
		popped = true
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	if popped && callback != nil {
		if err := callback(ddb.Garbage{BlobRef: blobRef}); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return popped, nil
}
