package garbage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpggbg "github.com/dstackai/dstack/pkg/db/postgres/garbage"
	"github.com/dstackai/dstack/pkg/db/postgres/pool/testenv"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestGarbage_Pop(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("a record in garbage is popped and removed", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		expected := ddb.Garbage{BlobRef: "blob/garbage-1"}
		if _, err := conn.Exec(
			ctx, `insert into "garbage" ("blob_ref") values ($1)`, expected.BlobRef,
		); err != nil {
			t.Fatal(err)
		}

		testee := kpggbg.New(pgpool)
		popped, err := testee.Pop(ctx, func(g ddb.Garbage) error {
			if g == expected {
				return nil
			}
			return fmt.Errorf("callback got unexpected garbage: %+v", g)
		})
		if !popped || err != nil {
			t.Errorf("(popped, err) = (%v, %v), want (true, nil)", popped, err)
		}

		count := 0
		if err := conn.QueryRow(
			ctx, `select count(*) from "garbage"`,
		).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("record count: got %d, want 0", count)
		}
	})

	t.Run("a nil callback just removes the record", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		if _, err := conn.Exec(
			ctx, `insert into "garbage" ("blob_ref") values ('blob/garbage-1')`,
		); err != nil {
			t.Fatal(err)
		}

		testee := kpggbg.New(pgpool)
		popped, err := testee.Pop(ctx, nil)
		if !popped || err != nil {
			t.Errorf("(popped, err) = (%v, %v), want (true, nil)", popped, err)
		}

		count := 0
		if err := conn.QueryRow(
			ctx, `select count(*) from "garbage"`,
		).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("record count: got %d, want 0", count)
		}
	})

	t.Run("nothing is popped from an empty table", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		used := errors.New("callback was used")
		testee := kpggbg.New(pgpool)
		popped, err := testee.Pop(ctx, func(ddb.Garbage) error {
			return used
		})
		if popped {
			t.Error("popped from an empty table")
		}
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a failing callback keeps the record", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()

		if _, err := conn.Exec(
			ctx, `insert into "garbage" ("blob_ref") values ('blob/garbage-1')`,
		); err != nil {
			t.Fatal(err)
		}

		expectedError := errors.New("blob store is down")
		testee := kpggbg.New(pgpool)
		if _, err := testee.Pop(ctx, func(ddb.Garbage) error {
			return expectedError
		}); !errors.Is(err, expectedError) {
			t.Errorf("unexpected error: %v", err)
		}

		// the delete is rolled back, so the item can be retried later.
		count := 0
		if err := conn.QueryRow(
			ctx, `select count(*) from "garbage"`,
		).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("record count: got %d, want 1", count)
		}
	})
}
