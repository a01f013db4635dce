package sink

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// BigQueryOptions locates the destination table.
type BigQueryOptions struct {
	Project         string
	Dataset         string
	Table           string
	CredentialsFile string
	// BatchSize is the number of records buffered before an insert.
	BatchSize int
}

// BigQuery streams records into a table, buffering them into batches.
type BigQuery struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	batch    []*Record
	size     int
	closed   bool
}

// NewBigQuery connects to BigQuery. Application default credentials are used when no
// credentials file is given.
func NewBigQuery(ctx context.Context, opts BigQueryOptions) (*BigQuery, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	client, err := bigquery.NewClient(ctx, opts.Project, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	size := opts.BatchSize
	if size <= 0 {
		size = 500
	}
	return &BigQuery{
		client:   client,
		inserter: client.Dataset(opts.Dataset).Table(opts.Table).Inserter(),
		size:     size,
	}, nil
}

// Schema returns the table schema records are inserted with.
func Schema() (bigquery.Schema, error) {
	return bigquery.InferSchema(Record{})
}

// EnsureTable creates the destination table when it does not exist yet.
func (b *BigQuery) EnsureTable(ctx context.Context, dataset, table string) error {
	t := b.client.Dataset(dataset).Table(table)
	if _, err := t.Metadata(ctx); err == nil {
		return nil
	}
	schema, err := Schema()
	if err != nil {
		return fmt.Errorf("infer schema: %w", err)
	}
	if err := t.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("create table %s.%s: %w", dataset, table, err)
	}
	return nil
}

// Write buffers r and flushes a full batch.
func (b *BigQuery) Write(ctx context.Context, r Record) error {
	if b.closed {
		return ErrClosed
	}
	b.batch = append(b.batch, &r)
	if len(b.batch) < b.size {
		return nil
	}
	return b.Flush(ctx)
}

// Flush inserts every buffered record.
func (b *BigQuery) Flush(ctx context.Context) error {
	if len(b.batch) == 0 {
		return nil
	}
	if err := b.inserter.Put(ctx, b.batch); err != nil {
		return fmt.Errorf("insert %d samples: %w", len(b.batch), err)
	}
	b.batch = b.batch[:0]
	return nil
}

// Close flushes the remaining records and closes the client.
func (b *BigQuery) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	flushErr := b.Flush(context.Background())
	if err := b.client.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
