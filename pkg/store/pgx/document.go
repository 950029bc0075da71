package pgx

import (
	"context"
	"errors"
	"fmt"

	"graphkb/pkg/common"
	"graphkb/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// CreateDocument registers a document before its chunks are ingested.
func (s *GraphDBStorage) CreateDocument(ctx context.Context, doc common.Document) error {
	status := doc.Status
	if status == "" {
		status = common.DocumentProcessing
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO documents (id, name, upload_date, status)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status`,
		doc.ID, doc.Name, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to create document %s:\n%w", doc.ID, err)
	}
	return nil
}

// GetDocument looks a document up by id.
func (s *GraphDBStorage) GetDocument(ctx context.Context, id string) (*common.Document, error) {
	var doc common.Document
	var status string
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, upload_date, status
		FROM documents
		WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Name, &doc.UploadDate, &status)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s:\n%w", id, err)
	}
	doc.Status = common.DocumentStatus(status)
	return &doc, nil
}

// SetDocumentStatus moves a document through the ingestion lifecycle.
func (s *GraphDBStorage) SetDocumentStatus(ctx context.Context, id string, status common.DocumentStatus) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE documents SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to set status of document %s:\n%w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDocumentNotFound
	}
	return nil
}

// DeleteDocument removes a document with its chunks and mention links,
// then sweeps entities no remaining chunk mentions. Edges follow their
// entities via the schema's cascade rules.
func (s *GraphDBStorage) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s:\n%w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDocumentNotFound
	}

	_, err = s.conn.Exec(ctx, `
		DELETE FROM entities e
		WHERE NOT EXISTS (SELECT 1 FROM mentions m WHERE m.entity_id = e.id)`,
	)
	if err != nil {
		return fmt.Errorf("failed to sweep orphaned entities:\n%w", err)
	}
	return nil
}
