package config

import (
	"context"
	"fmt"
	"os"

	"crosswarped.com/ravengen/pkg/sink"
)

// Output kinds.
const (
	OutputJSONLines = "jsonl"
	OutputBigQuery  = "bigquery"
	OutputPostgres  = "postgres"
)

// BigQuery locates the destination table.
type BigQuery struct {
	Project         string `yaml:"project"`
	Dataset         string `yaml:"dataset"`
	Table           string `yaml:"table"`
	CredentialsFile string `yaml:"credentials_file"`
	BatchSize       int    `yaml:"batch_size"`
	CreateTable     bool   `yaml:"create_table"`
}

// Postgres locates the database.
type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Output selects where samples go. Path "-" is standard output.
type Output struct {
	Kind     string   `yaml:"kind"`
	Path     string   `yaml:"path"`
	BigQuery BigQuery `yaml:"bigquery"`
	Postgres Postgres `yaml:"postgres"`
}

// Validate checks that the selected kind has what it needs.
func (o Output) Validate() error {
	switch o.Kind {
	case OutputJSONLines:
		if o.Path == "" {
			return fmt.Errorf("jsonl output without path: %w", ErrInvalid)
		}
	case OutputBigQuery:
		if o.BigQuery.Project == "" || o.BigQuery.Dataset == "" || o.BigQuery.Table == "" {
			return fmt.Errorf("bigquery output needs project, dataset and table: %w", ErrInvalid)
		}
	case OutputPostgres:
		dsn := o.Postgres.DSN
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		if dsn == "" {
			return fmt.Errorf("postgres output without dsn or DATABASE_URL: %w", ErrInvalid)
		}
	default:
		return fmt.Errorf("output kind %q: %w", o.Kind, ErrInvalid)
	}
	return nil
}

// Open creates the sink.
func (o Output) Open(ctx context.Context) (sink.Sink, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	switch o.Kind {
	case OutputBigQuery:
		b := o.BigQuery
		bq, err := sink.NewBigQuery(ctx, sink.BigQueryOptions{
			Project:         b.Project,
			Dataset:         b.Dataset,
			Table:           b.Table,
			CredentialsFile: b.CredentialsFile,
			BatchSize:       b.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		if b.CreateTable {
			if err := bq.EnsureTable(ctx, b.Dataset, b.Table); err != nil {
				bq.Close()
				return nil, err
			}
		}
		return bq, nil
	case OutputPostgres:
		dsn := o.Postgres.DSN
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		return sink.OpenPostgres(ctx, dsn)
	}
	if o.Path == "-" {
		return sink.NewJSONLines(nopCloser{os.Stdout}), nil
	}
	f, err := os.Create(o.Path)
	if err != nil {
		return nil, err
	}
	return sink.NewJSONLines(f), nil
}

type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }
