package keys

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	ddb "github.com/dstackai/dstack/pkg/db"
	kpgerr "github.com/dstackai/dstack/pkg/db/postgres/errors"
	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

const (
	// signing algorithm of issued keys.
	alg = "HS256"

	// bytes of HMAC secret per key.
	secretLength = 32

	// how long an issued key is used for signing.
	keyLifetime = 24 * time.Hour
)

type pgKey struct {
	pool dpool.Pool
}

func New(pool dpool.Pool) ddb.KeyInterface {
	return &pgKey{pool: pool}
}

func (k *pgKey) Provide(ctx context.Context, margin time.Duration) (ddb.SignKey, error) {
	tx, err := k.pool.Begin(ctx)
	if err != nil {
		return ddb.SignKey{}, err
	}
	defer tx.Rollback(ctx)

	// keys expired longer ago than the verification margin are useless.
	if _, err := tx.Exec(
		ctx,
		`delete from "sign_key" where "exp" < $1`,
		time.Now().Add(-margin),
	); err != nil {
		return ddb.SignKey{}, err
	}

	key := ddb.SignKey{}
	err = tx.QueryRow(
		ctx,
		`
		select "kid"::text, "alg", "secret", "exp" from "sign_key"
		where "exp" > $1
		order by "exp" desc
		limit 1
		`,
		time.Now().Add(margin),
	).Scan(&key.KID, &key.Alg, &key.Secret, &key.Exp)
	switch {
	case err == nil:
		// found one.
	case errors.Is(err, pgx.ErrNoRows):
		key, err = issue(ctx, tx)
		if err != nil {
			return ddb.SignKey{}, err
		}
	default:
		return ddb.SignKey{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ddb.SignKey{}, err
	}
	return key, nil
}

func issue(ctx context.Context, tx dpool.Tx) (ddb.SignKey, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return ddb.SignKey{}, err
	}

	key := ddb.SignKey{
		KID:    uuid.NewString(),
		Alg:    alg,
		Secret: secret,
		Exp:    time.Now().Add(keyLifetime),
	}
	if _, err := tx.Exec(
		ctx,
		`insert into "sign_key" ("kid", "alg", "secret", "exp") values ($1, $2, $3, $4)`,
		key.KID, key.Alg, key.Secret, key.Exp,
	); err != nil {
		return ddb.SignKey{}, err
	}
	return key, nil
}

func (k *pgKey) Get(ctx context.Context, kid string) (ddb.SignKey, error) {
	conn, err := k.pool.Acquire(ctx)
	if err != nil {
		return ddb.SignKey{}, err
	}
	defer conn.Release()

	key := ddb.SignKey{}
	if err := conn.QueryRow(
		ctx,
		`select "kid"::text, "alg", "secret", "exp" from "sign_key" where "kid" = $1`,
		kid,
	).Scan(&key.KID, &key.Alg, &key.Secret, &key.Exp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ddb.SignKey{}, kpgerr.Missing{Table: "sign_key", Identity: kid}
		}
		return ddb.SignKey{}, err
	}
	return key, nil
}
