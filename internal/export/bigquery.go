package export

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
)

type inserter interface {
	Put(ctx context.Context, src interface{}) error
}

// BigQuerySink streams registrations into a BigQuery table. Rows carry the
// registration id as insert id so repeated exports do not duplicate.
type BigQuerySink struct {
	client   *bigquery.Client
	inserter inserter
	table    string
	logger   logging.Logger
}

// NewBigQuerySink opens a client for project and targets dataset.table.
func NewBigQuerySink(ctx context.Context, project, dataset, table string, logger logging.Logger) (*BigQuerySink, error) {
	if project == "" || dataset == "" || table == "" {
		return nil, fmt.Errorf("bigquery project, dataset and table are required")
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQuerySink{
		client:   client,
		inserter: client.Dataset(dataset).Table(table).Inserter(),
		table:    dataset + "." + table,
		logger:   logger,
	}, nil
}

// Put inserts the registrations.
func (s *BigQuerySink) Put(ctx context.Context, regs []models.Registration) error {
	if len(regs) == 0 {
		return nil
	}
	savers := make([]*bigquery.StructSaver, 0, len(regs))
	for _, row := range NewRows(regs) {
		savers = append(savers, &bigquery.StructSaver{Struct: row, InsertID: row.ID})
	}
	if err := s.inserter.Put(ctx, savers); err != nil {
		s.logger.WithError(err).Error("BigQuery insert failed", logging.F("table", s.table))
		return fmt.Errorf("bigquery insert into %s: %w", s.table, err)
	}
	s.logger.Info("Registrations exported to BigQuery",
		logging.F("table", s.table),
		logging.F(logging.FieldCount, len(savers)))
	return nil
}

// Close releases the client.
func (s *BigQuerySink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
