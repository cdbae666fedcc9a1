package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, dim int) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(context.Background(), Config{DB: db, Dimension: dim})
	require.NoError(t, err)
	return s, mock
}

func TestSearch(t *testing.T) {
	s, mock := newMockStore(t, 3)

	rows := sqlmock.NewRows([]string{"path", "content", "score"}).
		AddRow("packages/core/src/a.ts", "export const a = 1", 0.92).
		AddRow("packages/core/src/b.ts", "export const b = 2", 0.87)
	mock.ExpectQuery(`SELECT path, content, 1 - \(embedding <=> \$1\) AS score`).
		WithArgs(sqlmock.AnyArg(), 2).
		WillReturnRows(rows)

	hits, err := s.Search(context.Background(), []float32{0.1, 0.2, 0.3}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "packages/core/src/a.ts", hits[0].Path)
	require.InDelta(t, 0.92, hits[0].Score, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFiles(t *testing.T) {
	s, mock := newMockStore(t, 3)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO code_files`)
	mock.ExpectExec(`INSERT INTO code_files`).
		WithArgs("a.ts", "content a", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO code_files`).
		WithArgs("b.ts", "content b", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.UpsertFiles(context.Background(), []CodeFile{
		{Path: "a.ts", Content: "content a", Embedding: []float32{1, 2, 3}},
		{Path: "b.ts", Content: "content b", Embedding: []float32{4, 5, 6}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFilesDimensionMismatch(t *testing.T) {
	s, mock := newMockStore(t, 3)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO code_files`)
	mock.ExpectRollback()

	err := s.UpsertFiles(context.Background(), []CodeFile{
		{Path: "a.ts", Content: "x", Embedding: []float32{1, 2}},
	})
	require.ErrorContains(t, err, "dimension")
}

func TestUpsertFilesEmptyBatch(t *testing.T) {
	s, _ := newMockStore(t, 3)
	require.NoError(t, s.UpsertFiles(context.Background(), nil))
}

func TestCount(t *testing.T) {
	s, mock := newMockStore(t, 3)
	mock.ExpectQuery(`SELECT count\(\*\) FROM code_files`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 42, count)
}

func TestNewRequiresConnection(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}
