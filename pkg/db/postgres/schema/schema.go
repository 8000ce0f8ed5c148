package schema

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	dpool "github.com/dstackai/dstack/pkg/db/postgres/pool"
)

//go:embed versions/*.sql
var repository embed.FS

type pgSchema struct {
	pool dpool.Pool
}

// New creates a Schema over the embedded schema repository.
func New(pool dpool.Pool) *pgSchema {
	return &pgSchema{pool: pool}
}

type version struct {
	Version int
	Path    string
}

func (v version) Apply(ctx context.Context, conn dpool.Queryer) error {
	query, err := repository.ReadFile(v.Path)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, string(query)); err != nil {
		return err
	}
	return nil
}

// Version reads the schema version stored in the database.
//
// Returns 0 when the schema has never been applied.
func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, err
	}
	defer conn.Release()

	var ver int
	if err := conn.QueryRow(
		ctx, `SELECT max("version") FROM "schema_version"`,
	).Scan(&ver); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}

	return ver, nil
}

// Upgrade applies schema versions newer than the stored one, in order.
func (s *pgSchema) Upgrade(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	schemaVersions, err := versions()
	if err != nil {
		return err
	}

	currentVersion, err := s.Version(ctx)
	if err != nil {
		return err
	}

	for _, v := range schemaVersions {
		if v.Version <= currentVersion {
			continue
		}
		if err := v.Apply(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx, `DELETE FROM "schema_version"`,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO "schema_version" ("version") VALUES ($1)`,
			v.Version,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// versions lists the schema versions found in the embedded repository,
// sorted by version number. Each version is a file "versions/<N>.sql".
func versions() ([]version, error) {
	entries, err := fs.ReadDir(repository, "versions")
	if err != nil {
		return nil, err
	}

	vs := make([]version, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".sql"))
		if err != nil {
			continue
		}
		vs = append(vs, version{Version: n, Path: "versions/" + name})
	}

	slices.SortFunc(vs, func(a, b version) int { return a.Version - b.Version })
	return vs, nil
}
