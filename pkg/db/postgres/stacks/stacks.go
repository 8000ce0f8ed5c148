package stacks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpgerr "github.com/dstackai/dstack/pkg/db/postgres/errors"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

type pgStack struct {
	pool dpool.Pool
}

func New(pool dpool.Pool) ddb.StackInterface {
	return &pgStack{pool: pool}
}

func (s *pgStack) Find(ctx context.Context, args ddb.StackFindArgs) ([]ddb.Stack, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query := new(strings.Builder)
	query.WriteString(`
		select "user_name", "name", "private", coalesce("head"::text, ''), "created_at"
		from "stack"
		where (not "private" or "user_name" = $1)
	`)
	params := []interface{}{args.Requester}

	if args.Owner != "" {
		params = append(params, args.Owner)
		fmt.Fprintf(query, ` and "user_name" = $%d`, len(params))
	}

	// each param must be carried by some attachment of the head frame.
	for _, p := range args.Params {
		params = append(params, p.Key, p.Value)
		fmt.Fprintf(
			query,
			` and exists (
				select 1 from "attachment_param"
				where "frame_id" = "stack"."head"
					and "key" = $%d and "value" = $%d
			)`,
			len(params)-1, len(params),
		)
	}

	query.WriteString(` order by "user_name", "name"`)

	rows, err := conn.Query(ctx, query.String(), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := []ddb.Stack{}
	for rows.Next() {
		var stack ddb.Stack
		if err := rows.Scan(
			&stack.UserName, &stack.Name, &stack.Private,
			&stack.Head, &stack.CreatedAt,
		); err != nil {
			return nil, err
		}
		found = append(found, stack)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return found, nil
}

func (s *pgStack) Get(ctx context.Context, userName string, name string) (ddb.Stack, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return ddb.Stack{}, err
	}
	defer conn.Release()

	return getStack(ctx, conn, userName, name)
}

func getStack(ctx context.Context, conn dpool.Queryer, userName string, name string) (ddb.Stack, error) {
	stack := ddb.Stack{}
	err := conn.QueryRow(
		ctx,
		`
		select "user_name", "name", "private", coalesce("head"::text, ''), "created_at"
		from "stack"
		where "user_name" = $1 and "name" = $2
		`,
		userName, name,
	).Scan(
		&stack.UserName, &stack.Name, &stack.Private,
		&stack.Head, &stack.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ddb.Stack{}, kpgerr.Missing{
				Table:    "stack",
				Identity: fmt.Sprintf("%s/%s", userName, name),
			}
		}
		return ddb.Stack{}, err
	}
	return stack, nil
}

func (s *pgStack) UpdateAccess(ctx context.Context, userName string, name string, private bool) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(
		ctx,
		`update "stack" set "private" = $3 where "user_name" = $1 and "name" = $2`,
		userName, name, private,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return kpgerr.Missing{
			Table:    "stack",
			Identity: fmt.Sprintf("%s/%s", userName, name),
		}
	}
	return nil
}

func (s *pgStack) Delete(ctx context.Context, userName string, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// blob refs of the attachments become garbage; the blob store is
	// swept out of band. See GarbageInterface.
	if _, err := tx.Exec(
		ctx,
		`
		insert into "garbage" ("blob_ref", "created_at")
		select "attachment"."blob_ref", $3
		from "attachment"
			inner join "frame" on "frame"."frame_id" = "attachment"."frame_id"
		where "frame"."user_name" = $1 and "frame"."stack_name" = $2
		on conflict do nothing
		`,
		userName, name, time.Now(),
	); err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`delete from "stack" where "user_name" = $1 and "name" = $2`,
		userName, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return kpgerr.Missing{
			Table:    "stack",
			Identity: fmt.Sprintf("%s/%s", userName, name),
		}
	}

	return tx.Commit(ctx)
}
