package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"tokend/internal/models"
)

// DocumentStore is a RemoteStore keeping each user document as one row per
// field. MergeUserDoc upserts the given fields in a single transaction and
// leaves every other field alone.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(path string) (*DocumentStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	return &DocumentStore{db: db}, nil
}

func (d *DocumentStore) GetUserDoc(ctx context.Context, userID string) (models.UserDoc, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT field, value FROM user_docs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get doc %s: %w", userID, err)
	}
	defer rows.Close()

	doc := make(models.UserDoc)
	for rows.Next() {
		var field string
		var value []byte
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("get doc %s: %w", userID, err)
		}
		doc[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get doc %s: %w", userID, err)
	}
	return doc, nil
}

func (d *DocumentStore) MergeUserDoc(ctx context.Context, userID string, fields models.UserDoc) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge doc %s: %w", userID, err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for field, value := range fields {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_docs (user_id, field, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id, field) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, userID, field, value, now)
		if err != nil {
			return fmt.Errorf("merge doc %s field %s: %w", userID, field, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("merge doc %s: %w", userID, err)
	}
	return nil
}

func (d *DocumentStore) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
