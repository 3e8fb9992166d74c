package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const schema = `
create table if not exists page (
	key text primary key,
	contents blob not null,
	created_at integer not null
);
`

type SQL struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQL opens a cache backed by `driver` which is either "sqlite" (a local
// file, or ":memory:") or "libsql" (a remote libsql database url).
func OpenSQL(ctx context.Context, driver, dsn string, ttl time.Duration) (SQL, error) {
	if dsn == "" {
		return SQL{}, fmt.Errorf("pagecache: a dsn was not specified for %s", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return SQL{}, err
	}
	if driver == "sqlite" {
		// see https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return SQL{}, err
		}
	}
	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return SQL{}, fmt.Errorf("pagecache: create schema: %w", err)
	}
	return SQL{db: db, ttl: ttl, now: time.Now}, nil
}

func (s SQL) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var contents []byte
	var createdAt int64
	err := s.db.QueryRowContext(
		ctx,
		"select contents, created_at from page where key = ?",
		key.String(),
	).Scan(&contents, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(createdAt, 0)) > s.ttl {
		return nil, false, nil
	}
	return contents, true, nil
}

func (s SQL) Put(ctx context.Context, key Key, page []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into page (key, contents, created_at) values (?, ?, ?)
		on conflict (key) do update set contents = excluded.contents, created_at = excluded.created_at`,
		key.String(), page, s.now().Unix(),
	)
	return err
}

func (s SQL) Close() error {
	return s.db.Close()
}
