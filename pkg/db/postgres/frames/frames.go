package frames

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpgerr "github.com/dstackai/dstack/pkg/db/postgres/errors"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

type pgFrame struct {
	pool dpool.Pool
}

func New(pool dpool.Pool) ddb.FrameInterface {
	return &pgFrame{pool: pool}
}

func (f *pgFrame) New(ctx context.Context, userName string, stackName string, message string) (ddb.Frame, error) {
	tx, err := f.pool.Begin(ctx)
	if err != nil {
		return ddb.Frame{}, err
	}
	defer tx.Rollback(ctx)

	// the stack comes into being with its first frame.
	if _, err := tx.Exec(
		ctx,
		`
		insert into "stack" ("user_name", "name")
		values ($1, $2)
		on conflict do nothing
		`,
		userName, stackName,
	); err != nil {
		if kpgerr.IsForeignKeyViolation(err) {
			return ddb.Frame{}, kpgerr.Missing{
				Table: "user", Identity: userName,
			}
		}
		return ddb.Frame{}, err
	}

	frameId := uuid.NewString()
	frame := ddb.Frame{
		FrameId:   frameId,
		UserName:  userName,
		StackName: stackName,
		Message:   message,
	}
	if err := tx.QueryRow(
		ctx,
		`
		insert into "frame" ("frame_id", "user_name", "stack_name", "message")
		values ($1, $2, $3, $4)
		returning "created_at"
		`,
		frameId, userName, stackName, message,
	).Scan(&frame.CreatedAt); err != nil {
		if kpgerr.IsUniqueViolation(err) {
			return ddb.Frame{}, kpgerr.AlreadyExists{Table: "frame", Identity: frameId}
		}
		return ddb.Frame{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ddb.Frame{}, err
	}
	return frame, nil
}

func (f *pgFrame) Get(ctx context.Context, frameId string) (ddb.Frame, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return ddb.Frame{}, err
	}
	defer conn.Release()

	frame := ddb.Frame{}
	if err := conn.QueryRow(
		ctx,
		`
		select "frame_id"::text, "user_name", "stack_name", "message", "created_at", "closed_at"
		from "frame"
		where "frame_id" = $1
		`,
		frameId,
	).Scan(
		&frame.FrameId, &frame.UserName, &frame.StackName,
		&frame.Message, &frame.CreatedAt, &frame.ClosedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ddb.Frame{}, kpgerr.Missing{Table: "frame", Identity: frameId}
		}
		return ddb.Frame{}, err
	}

	attachments, err := loadAttachments(ctx, conn, frameId)
	if err != nil {
		return ddb.Frame{}, err
	}
	frame.Attachments = attachments

	return frame, nil
}

func (f *pgFrame) FindByStack(ctx context.Context, userName string, stackName string) ([]ddb.Frame, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	var found bool
	if err := conn.QueryRow(
		ctx,
		`select exists (select 1 from "stack" where "user_name" = $1 and "name" = $2)`,
		userName, stackName,
	).Scan(&found); err != nil {
		return nil, err
	}
	if !found {
		return nil, kpgerr.Missing{
			Table: "stack", Identity: userName + "/" + stackName,
		}
	}

	rows, err := conn.Query(
		ctx,
		`
		select "frame_id"::text, "user_name", "stack_name", "message", "created_at", "closed_at"
		from "frame"
		where "user_name" = $1 and "stack_name" = $2
		order by "created_at" desc
		`,
		userName, stackName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := []ddb.Frame{}
	for rows.Next() {
		frame := ddb.Frame{}
		if err := rows.Scan(
			&frame.FrameId, &frame.UserName, &frame.StackName,
			&frame.Message, &frame.CreatedAt, &frame.ClosedAt,
		); err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

func (f *pgFrame) AddAttachment(ctx context.Context, frameId string, spec ddb.AttachmentSpec) (ddb.Attachment, error) {
	tx, err := f.pool.Begin(ctx)
	if err != nil {
		return ddb.Attachment{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockOpenFrame(ctx, tx, frameId); err != nil {
		return ddb.Attachment{}, err
	}

	attachment := ddb.Attachment{
		FrameId:     frameId,
		Description: spec.Description,
		ContentType: spec.ContentType,
		Application: spec.Application,
		Length:      spec.Length,
		Checksum:    spec.Checksum,
		BlobRef:     spec.BlobRef,
		Params:      spec.Params,
	}
	if err := tx.QueryRow(
		ctx,
		`
		insert into "attachment" (
			"frame_id", "index", "description", "content_type",
			"application", "length", "checksum", "blob_ref"
		)
		select $1, count(*), $2, $3, $4, $5, $6, $7
		from "attachment" where "frame_id" = $1
		returning "index"
		`,
		frameId, spec.Description, spec.ContentType, spec.Application,
		spec.Length, spec.Checksum, spec.BlobRef,
	).Scan(&attachment.Index); err != nil {
		return ddb.Attachment{}, err
	}

	for _, p := range spec.Params {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "attachment_param" ("frame_id", "index", "key", "value")
			values ($1, $2, $3, $4)
			on conflict do nothing
			`,
			frameId, attachment.Index, p.Key, p.Value,
		); err != nil {
			return ddb.Attachment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ddb.Attachment{}, err
	}
	return attachment, nil
}

func (f *pgFrame) Close(ctx context.Context, frameId string) (ddb.Frame, error) {
	tx, err := f.pool.Begin(ctx)
	if err != nil {
		return ddb.Frame{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockOpenFrame(ctx, tx, frameId); err != nil {
		return ddb.Frame{}, err
	}

	var count int
	if err := tx.QueryRow(
		ctx,
		`select count(*) from "attachment" where "frame_id" = $1`,
		frameId,
	).Scan(&count); err != nil {
		return ddb.Frame{}, err
	}
	if count == 0 {
		return ddb.Frame{}, ddb.ErrFrameEmpty
	}

	frame := ddb.Frame{FrameId: frameId}
	if err := tx.QueryRow(
		ctx,
		`
		update "frame" set "closed_at" = now()
		where "frame_id" = $1
		returning "user_name", "stack_name", "message", "created_at", "closed_at"
		`,
		frameId,
	).Scan(
		&frame.UserName, &frame.StackName,
		&frame.Message, &frame.CreatedAt, &frame.ClosedAt,
	); err != nil {
		return ddb.Frame{}, err
	}

	if _, err := tx.Exec(
		ctx,
		`update "stack" set "head" = $3 where "user_name" = $1 and "name" = $2`,
		frame.UserName, frame.StackName, frameId,
	); err != nil {
		return ddb.Frame{}, err
	}

	attachments, err := loadAttachments(ctx, tx, frameId)
	if err != nil {
		return ddb.Frame{}, err
	}
	frame.Attachments = attachments

	if err := tx.Commit(ctx); err != nil {
		return ddb.Frame{}, err
	}
	return frame, nil
}

// lockOpenFrame locks a frame row and verifies it is still open.
func lockOpenFrame(ctx context.Context, tx dpool.Tx, frameId string) error {
	var closedAt *time.Time
	if err := tx.QueryRow(
		ctx,
		`select "closed_at" from "frame" where "frame_id" = $1 for update`,
		frameId,
	).Scan(&closedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpgerr.Missing{Table: "frame", Identity: frameId}
		}
		return err
	}
	if closedAt != nil {
		return ddb.ErrFrameClosed
	}
	return nil
}

func loadAttachments(ctx context.Context, conn dpool.Queryer, frameId string) ([]ddb.Attachment, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "index", "description", "content_type", "application",
			"length", "checksum", "blob_ref"
		from "attachment"
		where "frame_id" = $1
		order by "index"
		`,
		frameId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []ddb.Attachment{}
	for rows.Next() {
		a := ddb.Attachment{FrameId: frameId, Params: []ddb.Param{}}
		if err := rows.Scan(
			&a.Index, &a.Description, &a.ContentType, &a.Application,
			&a.Length, &a.Checksum, &a.BlobRef,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := conn.Query(
		ctx,
		`
		select "index", "key", "value" from "attachment_param"
		where "frame_id" = $1
		order by "index", "key", "value"
		`,
		frameId,
	)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var index int
		var p ddb.Param
		if err := prows.Scan(&index, &p.Key, &p.Value); err != nil {
			return nil, err
		}
		if 0 <= index && index < len(attachments) {
			attachments[index].Params = append(attachments[index].Params, p)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	return attachments, nil
}
