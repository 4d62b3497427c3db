package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

func TestMaterialRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "file_url", "file_name", "created_by", "created_at", "updated_at"}).
		AddRow(materialOne, "Hafalan Doa", nil, "https://files.example/doa.pdf", "doa.pdf", userTwo, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM materials WHERE id = $1")).
		WithArgs(materialOne).
		WillReturnRows(rows)

	material, err := repo.FindByID(context.Background(), materialOne)
	require.NoError(t, err)
	assert.Equal(t, "Hafalan Doa", material.Title)
	assert.Nil(t, material.Description)
	require.NotNil(t, material.FileName)
	assert.Equal(t, "doa.pdf", *material.FileName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec("INSERT INTO materials").
		WithArgs(sqlmock.AnyArg(), "Adab", nil, nil, nil, userTwo, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE materials SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	material := &models.Material{Title: "Adab", CreatedBy: userTwo}
	require.NoError(t, repo.Create(context.Background(), material))
	material.Title = "Adab Makan"
	require.NoError(t, repo.Update(context.Background(), material))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM materials WHERE id = $1")).
		WithArgs(materialOne).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), materialOne)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepositoryMalformedIDsMatchNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMaterialRepository(db)

	material, err := repo.FindByID(context.Background(), "m-1")
	assert.Nil(t, material)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	deleted, err := repo.Delete(context.Background(), "m-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
