package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

const createSamplesTable = `
create table if not exists samples (
	id            uuid primary key,
	configuration text        not null,
	idx           integer     not null,
	split         text        not null,
	target        integer     not null,
	sample_json   jsonb       not null,
	created_at    timestamptz not null default now()
)`

const insertSample = `
insert into samples(id, configuration, idx, split, target, sample_json)
values ($1,$2,$3,$4,$5,$6)
on conflict (id) do update set sample_json=excluded.sample_json, created_at=now()`

// Postgres stores each record as a row with the full sample in a jsonb column.
type Postgres struct {
	DB     *sql.DB
	closed bool
}

// OpenPostgres connects with the pgx driver and creates the samples table.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an open database.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

// Migrate creates the samples table if needed.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, createSamplesTable); err != nil {
		return fmt.Errorf("create samples table: %w", err)
	}
	return nil
}

// Write upserts r by ID.
func (p *Postgres) Write(ctx context.Context, r Record) error {
	if p.closed {
		return ErrClosed
	}
	js, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode sample %s: %w", r.ID, err)
	}
	if _, err := p.DB.ExecContext(ctx, insertSample, r.ID, r.Configuration, r.Index, r.Split, r.Target, js); err != nil {
		return fmt.Errorf("insert sample %s: %w", r.ID, err)
	}
	return nil
}

// Close closes the database.
func (p *Postgres) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.DB.Close()
}
