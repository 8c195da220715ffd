package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/epd-student-api/internal/models"
)

func TestWaitingListRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewWaitingListRepository(db)

	mock.ExpectQuery(`SELECT id, document FROM waiting_list ORDER BY created_at ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document"}).
			AddRow("7f1c1a3e-0000-4000-8000-000000000001", []byte(`{"name":"Huda","outcome":"Enrolled","phoneNumbers":[{"number":799000111}]}`)).
			AddRow("7f1c1a3e-0000-4000-8000-000000000002", []byte(`{"name":"Omar"}`)))

	entries, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "7f1c1a3e-0000-4000-8000-000000000001", entries[0].ID)
	assert.Equal(t, "Enrolled", entries[0].Outcome)
	assert.Equal(t, int64(799000111), entries[0].PhoneNumbers[0].Number)
	assert.Empty(t, entries[1].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitingListRepositoryListSearchEscapesWildcards(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewWaitingListRepository(db)

	mock.ExpectQuery(`WHERE document->>'name' ILIKE \$1`).
		WithArgs(`%50\%%`, `50\%%`, `%50\%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document"}))

	entries, err := repo.List(context.Background(), " 50% ")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitingListRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewWaitingListRepository(db)

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO waiting_list \(id, document, created_at\)`).
		WithArgs("id-1", sqlmock.AnyArg(), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.WaitingListEntry{ID: "id-1", Name: "Huda", CreatedAt: created})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
