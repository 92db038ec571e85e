package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/curatorhq/curator/internal/curator"
)

func TestSeasonStoreList(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSeasonStoreWithPool(mock)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"name"}).AddRow("Summer").AddRow("Winter")
	mock.ExpectQuery("SELECT name FROM seasons").WillReturnRows(rows)

	names, err := store.ListSeasons(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Summer", "Winter"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasonStoreCreateConflict(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSeasonStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO seasons").
		WithArgs("Summer").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, store.CreateSeason(context.Background(), "Summer"))

	mock.ExpectExec("INSERT INTO seasons").
		WithArgs("Summer").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	require.ErrorIs(t, store.CreateSeason(context.Background(), "Summer"), curator.ErrSeasonExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasonStoreRenameAndDelete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSeasonStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE seasons SET name").
		WithArgs("Summer", "Spring").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, store.RenameSeason(context.Background(), "Summer", "Spring"))

	mock.ExpectExec("UPDATE seasons SET name").
		WithArgs("missing", "x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, store.RenameSeason(context.Background(), "missing", "x"), curator.ErrSeasonNotFound)

	mock.ExpectExec("DELETE FROM seasons").
		WithArgs("Spring").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, store.DeleteSeason(context.Background(), "Spring"))

	require.NoError(t, mock.ExpectationsWereMet())
}
