package credstore

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Lookup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)

	t.Run("secret found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"password"}).AddRow("secret-1")
		mock.ExpectQuery(`SELECT password FROM databroker.users`).
			WithArgs("example.com/abc123").
			WillReturnRows(rows)

		secret, found, err := store.Lookup("example.com/abc123")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "secret-1", secret)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("secret not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT password FROM databroker.users`).
			WithArgs("example.com/missing").
			WillReturnError(sql.ErrNoRows)

		secret, found, err := store.Lookup("example.com/missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, secret)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT password FROM databroker.users`).
			WithArgs("example.com/abc123").
			WillReturnError(sql.ErrConnDone)

		_, _, err := store.Lookup("example.com/abc123")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)

	t.Run("successful insert", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO databroker.users`).
			WithArgs("example.com/abc123", "secret-1").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := store.Insert("example.com/abc123", "secret-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("write error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO databroker.users`).
			WithArgs("example.com/abc123", "secret-1").
			WillReturnError(sql.ErrConnDone)

		err := store.Insert("example.com/abc123", "secret-1")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
