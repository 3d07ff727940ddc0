package settings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	return NewSettingsRepository(db), mock, db
}

func TestGetStringList(t *testing.T) {
	// Arrange
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM site_settings").
		WithArgs(BannerKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow(`["banner1.jpg","banner2.jpg"]`))

	// Act
	values, err := repo.GetStringList(context.Background(), BannerKey)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"banner1.jpg", "banner2.jpg"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStringList_MissingKeyReturnsEmpty(t *testing.T) {
	// Arrange
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM site_settings").
		WithArgs(CategoriesKey).
		WillReturnError(sql.ErrNoRows)

	// Act
	values, err := repo.GetStringList(context.Background(), CategoriesKey)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, values)
	assert.NotNil(t, values)
}

func TestGetStringList_MalformedValueDegrades(t *testing.T) {
	// Valor corrompido no banco degrada para lista vazia
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM site_settings").
		WithArgs(BannerKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{not json]`))

	values, err := repo.GetStringList(context.Background(), BannerKey)

	assert.NoError(t, err)
	assert.Empty(t, values)
}

func TestSetStringList(t *testing.T) {
	// Arrange
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO site_settings").
		WithArgs(CategoriesKey, `["Sarees","Kurtas"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Act
	err := repo.SetStringList(context.Background(), CategoriesKey, []string{"Sarees", "Kurtas"})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStringList_NilBecomesEmptyList(t *testing.T) {
	// Arrange
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO site_settings").
		WithArgs(BannerKey, `[]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Act
	err := repo.SetStringList(context.Background(), BannerKey, nil)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
