package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	deleteErr error
	created   int
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	m.created++
	if student.ID == "" {
		student.ID = fmt.Sprintf("s-%d", m.created)
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.students[id]; !ok {
		return false, nil
	}
	delete(m.students, id)
	return true, nil
}

func strPtr(v string) *string { return &v }

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		FullName:   " Ahmad Fauzi ",
		BirthPlace: "Bandung",
		BirthDate:  "2010-03-01",
		Group:      "Kelompok 1",
		Gender:     "Laki-laki",
		Level:      "SMP",
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, "Ahmad Fauzi", student.FullName)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, models.NewDate(2010, time.March, 1), student.BirthDate)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	req := validStudentRequest()
	req.Level = "TK"
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validStudentRequest()
	req.BirthDate = "01/03/2010"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validStudentRequest()
	req.Gender = "L"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentServicePartialUpdate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())
	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{
		Level:  strPtr("SMA"),
		Skills: strPtr("Kaligrafi"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LevelSenior, updated.Level)
	require.NotNil(t, updated.Skills)
	assert.Equal(t, "Kaligrafi", *updated.Skills)
	assert.Equal(t, "Ahmad Fauzi", updated.FullName)
	assert.Equal(t, "Bandung", updated.BirthPlace)
	assert.Equal(t, models.GenderMale, updated.Gender)
}

func TestStudentServiceUpdateMissing(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{FullName: strPtr("X")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, zap.NewNop())
	created, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentServiceDeleteWithAttendanceConflicts(t *testing.T) {
	repo := &mockStudentRepo{deleteErr: fmt.Errorf("delete student: %w", &pq.Error{Code: "23503"})}
	svc := NewStudentService(repo, nil, zap.NewNop())

	_, err := svc.Delete(context.Background(), "s-1")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}
