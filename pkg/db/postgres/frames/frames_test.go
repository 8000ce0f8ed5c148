package frames_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dstackai/dstack/pkg/cmp"
	ddb "github.com/dstackai/dstack/pkg/db"
	kpgfrm "github.com/dstackai/dstack/pkg/db/postgres/frames"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
	"github.com/dstackai/dstack/pkg/db/postgres/pool/testenv"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func addUser(ctx context.Context, t *testing.T, conn dpool.Queryer, name string) {
	t.Helper()
	if _, err := conn.Exec(
		ctx,
		`insert into "user" ("name", "token") values ($1, $1 || '-token')`,
		name,
	); err != nil {
		t.Fatal(err)
	}
}

func TestFrame_New(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("it opens a frame and brings the stack into being", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "first of all")).OrFatal(t)

		if frame.FrameId == "" {
			t.Error("frame id is not issued")
		}
		if frame.UserName != "alice" || frame.StackName != "model" || frame.Message != "first of all" {
			t.Errorf("unexpected frame: %+v", frame)
		}
		if frame.CreatedAt.IsZero() {
			t.Error("created_at is not set")
		}
		if frame.ClosedAt != nil {
			t.Error("new frame should be open")
		}

		var private bool
		var head *string
		if err := conn.QueryRow(
			ctx,
			`select "private", "head"::text from "stack" where "user_name" = 'alice' and "name" = 'model'`,
		).Scan(&private, &head); err != nil {
			t.Fatal(err)
		}
		if !private {
			t.Error("new stack should be private")
		}
		if head != nil {
			t.Errorf("head should stay unset until a frame is closed: %v", *head)
		}
	})

	t.Run("a second frame does not duplicate the stack", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		first := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		second := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		if first.FrameId == second.FrameId {
			t.Errorf("frame ids should differ: %s", first.FrameId)
		}

		count := 0
		if err := conn.QueryRow(
			ctx, `select count(*) from "stack" where "user_name" = 'alice' and "name" = 'model'`,
		).Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("stack record count: got %d, want 1", count)
		}
	})

	t.Run("an unknown user cannot own frames", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgfrm.New(pgpool)
		if _, err := testee.New(ctx, "nobody", "model", ""); !errors.Is(err, ddb.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFrame_Get(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("it loads a frame with attachments in index order", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)

		specs := []ddb.AttachmentSpec{
			{
				Description: "loss over epochs",
				ContentType: "image/svg+xml",
				Application: "bokeh",
				Length:      512, Checksum: "c1", BlobRef: "blob/1",
				Params: []ddb.Param{{Key: "epoch", Value: "10"}},
			},
			{
				ContentType: "text/csv",
				Length:      64, Checksum: "c2", BlobRef: "blob/2",
			},
		}
		stored := []ddb.Attachment{}
		for _, s := range specs {
			stored = append(stored, try.To(testee.AddAttachment(ctx, frame.FrameId, s)).OrFatal(t))
		}

		got := try.To(testee.Get(ctx, frame.FrameId)).OrFatal(t)
		if !cmp.SliceEqWith(got.Attachments, stored, ddb.Attachment.Equal) {
			t.Errorf(
				"attachments do not match:\n got: %+v\nwant: %+v",
				got.Attachments, stored,
			)
		}
	})

	t.Run("a frame which does not exist is missing", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgfrm.New(pgpool)
		if _, err := testee.Get(ctx, uuid.NewString()); !errors.Is(err, ddb.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFrame_AddAttachment(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("indexes are assigned serially from zero", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)

		for want := 0; want < 3; want++ {
			a := try.To(testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
				ContentType: "text/plain",
				Length:      1, Checksum: "c", BlobRef: "blob",
			})).OrFatal(t)
			if a.Index != want {
				t.Errorf("index: got %d, want %d", a.Index, want)
			}
		}
	})

	t.Run("concurrent adds do not collide on indexes", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)

		n := 8
		indexes := make([]int, n)
		errs := make([]error, n)
		wg := sync.WaitGroup{}
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, err := testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
					ContentType: "text/plain",
					Length:      1, Checksum: "c", BlobRef: "blob",
				})
				indexes[i], errs[i] = a.Index, err
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Fatalf("add #%d: %v", i, err)
			}
		}
		seen := map[int]bool{}
		for _, index := range indexes {
			if index < 0 || n <= index {
				t.Errorf("index out of range: %d", index)
			}
			if seen[index] {
				t.Errorf("index assigned twice: %d", index)
			}
			seen[index] = true
		}
	})

	t.Run("a closed frame does not take attachments", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		try.To(testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		})).OrFatal(t)
		try.To(testee.Close(ctx, frame.FrameId)).OrFatal(t)

		_, err := testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		})
		if !errors.Is(err, ddb.ErrFrameClosed) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a frame which does not exist is missing", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgfrm.New(pgpool)
		_, err := testee.AddAttachment(ctx, uuid.NewString(), ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		})
		if !errors.Is(err, ddb.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFrame_Close(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("it seals the frame and moves the head of the stack", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		attachment := try.To(testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		})).OrFatal(t)

		closed := try.To(testee.Close(ctx, frame.FrameId)).OrFatal(t)
		if closed.ClosedAt == nil {
			t.Error("closed_at is not set")
		}
		if !cmp.SliceEqWith(closed.Attachments, []ddb.Attachment{attachment}, ddb.Attachment.Equal) {
			t.Errorf("attachments do not match: %+v", closed.Attachments)
		}

		var head *string
		if err := conn.QueryRow(
			ctx,
			`select "head"::text from "stack" where "user_name" = 'alice' and "name" = 'model'`,
		).Scan(&head); err != nil {
			t.Fatal(err)
		}
		if head == nil || *head != frame.FrameId {
			t.Errorf("head: got %v, want %s", head, frame.FrameId)
		}
	})

	t.Run("closing the next frame moves the head again", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		spec := ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		}
		first := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		try.To(testee.AddAttachment(ctx, first.FrameId, spec)).OrFatal(t)
		try.To(testee.Close(ctx, first.FrameId)).OrFatal(t)

		second := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		try.To(testee.AddAttachment(ctx, second.FrameId, spec)).OrFatal(t)
		try.To(testee.Close(ctx, second.FrameId)).OrFatal(t)

		var head *string
		if err := conn.QueryRow(
			ctx,
			`select "head"::text from "stack" where "user_name" = 'alice' and "name" = 'model'`,
		).Scan(&head); err != nil {
			t.Fatal(err)
		}
		if head == nil || *head != second.FrameId {
			t.Errorf("head: got %v, want %s", head, second.FrameId)
		}
	})

	t.Run("an empty frame is rejected and nothing changes", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)

		if _, err := testee.Close(ctx, frame.FrameId); !errors.Is(err, ddb.ErrFrameEmpty) {
			t.Errorf("unexpected error: %v", err)
		}

		var closedAt *string
		var head *string
		if err := conn.QueryRow(
			ctx,
			`
			select "frame"."closed_at"::text, "stack"."head"::text
			from "frame"
				inner join "stack" on ("stack"."user_name", "stack"."name") = ("frame"."user_name", "frame"."stack_name")
			where "frame_id" = $1
			`,
			frame.FrameId,
		).Scan(&closedAt, &head); err != nil {
			t.Fatal(err)
		}
		if closedAt != nil {
			t.Errorf("rejected frame should stay open: closed at %s", *closedAt)
		}
		if head != nil {
			t.Errorf("head should stay unset: %s", *head)
		}
	})

	t.Run("a closed frame cannot be closed twice", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)
		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		addUser(ctx, t, conn, "alice")

		testee := kpgfrm.New(pgpool)
		frame := try.To(testee.New(ctx, "alice", "model", "")).OrFatal(t)
		try.To(testee.AddAttachment(ctx, frame.FrameId, ddb.AttachmentSpec{
			ContentType: "text/plain",
			Length:      1, Checksum: "c", BlobRef: "blob",
		})).OrFatal(t)
		try.To(testee.Close(ctx, frame.FrameId)).OrFatal(t)

		if _, err := testee.Close(ctx, frame.FrameId); !errors.Is(err, ddb.ErrFrameClosed) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a frame which does not exist is missing", func(t *testing.T) {
		ctx := context.Background()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgfrm.New(pgpool)
		if _, err := testee.Close(ctx, uuid.NewString()); !errors.Is(err, ddb.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
