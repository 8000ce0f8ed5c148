package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpgerr "github.com/dstackai/dstack/pkg/db/postgres/errors"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

type pgUser struct {
	pool dpool.Pool
}

func New(pool dpool.Pool) ddb.UserInterface {
	return &pgUser{pool: pool}
}

func (u *pgUser) GetByToken(ctx context.Context, token string) (ddb.User, error) {
	conn, err := u.pool.Acquire(ctx)
	if err != nil {
		return ddb.User{}, err
	}
	defer conn.Release()

	user := ddb.User{}
	if err := conn.QueryRow(
		ctx,
		`select "name", "token", "created_at" from "user" where "token" = $1`,
		token,
	).Scan(&user.Name, &user.Token, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ddb.User{}, kpgerr.Missing{Table: "user", Identity: "(token)"}
		}
		return ddb.User{}, err
	}
	return user, nil
}

func (u *pgUser) Get(ctx context.Context, name string) (ddb.User, error) {
	conn, err := u.pool.Acquire(ctx)
	if err != nil {
		return ddb.User{}, err
	}
	defer conn.Release()

	user := ddb.User{}
	if err := conn.QueryRow(
		ctx,
		`select "name", "token", "created_at" from "user" where "name" = $1`,
		name,
	).Scan(&user.Name, &user.Token, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ddb.User{}, kpgerr.Missing{Table: "user", Identity: name}
		}
		return ddb.User{}, err
	}
	return user, nil
}

func (u *pgUser) Ensure(ctx context.Context, name string, token string) (ddb.User, bool, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return ddb.User{}, false, err
	}
	defer tx.Rollback(ctx)

	user := ddb.User{}
	created := false
	err = tx.QueryRow(
		ctx,
		`
		insert into "user" ("name", "token") values ($1, $2)
		on conflict ("name") do nothing
		returning "name", "token", "created_at"
		`,
		name, token,
	).Scan(&user.Name, &user.Token, &user.CreatedAt)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, pgx.ErrNoRows):
		// already there. keep the stored token.
		if err := tx.QueryRow(
			ctx,
			`select "name", "token", "created_at" from "user" where "name" = $1`,
			name,
		).Scan(&user.Name, &user.Token, &user.CreatedAt); err != nil {
			return ddb.User{}, false, err
		}
	default:
		if kpgerr.IsUniqueViolation(err) {
			// same token, different name. tokens identify users.
			return ddb.User{}, false, kpgerr.AlreadyExists{Table: "user", Identity: "(token)"}
		}
		return ddb.User{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ddb.User{}, false, err
	}
	return user, created, nil
}
