package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/epd-student-api/internal/models"
)

// WaitingListRepository persists waiting-list entries as JSONB documents keyed by UUID.
type WaitingListRepository struct {
	db *sqlx.DB
}

// NewWaitingListRepository constructs a WaitingListRepository.
func NewWaitingListRepository(db *sqlx.DB) *WaitingListRepository {
	return &WaitingListRepository{db: db}
}

type waitingListRow struct {
	ID       string         `db:"id"`
	Document types.JSONText `db:"document"`
}

// List returns entries ordered by creation time. Search matches the name or
// referral case-insensitively, or a phone number prefix or suffix.
func (r *WaitingListRepository) List(ctx context.Context, search string) ([]models.WaitingListEntry, error) {
	query := "SELECT id, document FROM waiting_list"
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		escaped := likeEscaper.Replace(search)
		args = append(args, "%"+escaped+"%", escaped+"%", "%"+escaped)
		query += ` WHERE document->>'name' ILIKE $1
        OR document->>'referral' ILIKE $1
        OR EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(document->'phoneNumbers', '[]'::jsonb)) p
            WHERE p->>'number' LIKE $2 OR p->>'number' LIKE $3)`
	}
	query += " ORDER BY created_at ASC, id ASC"

	var rows []waitingListRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list waiting list: %w", err)
	}
	entries := make([]models.WaitingListEntry, 0, len(rows))
	for _, row := range rows {
		var entry models.WaitingListEntry
		if err := json.Unmarshal(row.Document, &entry); err != nil {
			return nil, fmt.Errorf("decode waiting list entry %s: %w", row.ID, err)
		}
		entry.ID = row.ID
		entries = append(entries, entry)
	}
	return entries, nil
}

// Create stores a new entry. ID and CreatedAt must already be set.
func (r *WaitingListRepository) Create(ctx context.Context, entry *models.WaitingListEntry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode waiting list entry: %w", err)
	}
	const query = `INSERT INTO waiting_list (id, document, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, types.JSONText(doc), entry.CreatedAt); err != nil {
		return fmt.Errorf("insert waiting list entry %s: %w", entry.ID, err)
	}
	return nil
}
