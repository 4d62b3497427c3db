package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

// memoryStore keeps sessions, attendance rows and students in memory so tests can inspect
// exactly what was persisted.
type memoryStore struct {
	students    map[string]bool
	sessions    map[string]models.ClassSession
	attendances []models.Attendance
	seq         int
}

func newMemoryStore(studentIDs ...string) *memoryStore {
	store := &memoryStore{students: map[string]bool{}, sessions: map[string]models.ClassSession{}}
	for _, id := range studentIDs {
		store.students[id] = true
	}
	return store
}

func (m *memoryStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	for _, id := range ids {
		if m.students[id] {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

func (m *memoryStore) CreateWithAttendances(ctx context.Context, session *models.ClassSession, attendances []models.Attendance) error {
	m.seq++
	session.ID = fmt.Sprintf("k-%d", m.seq)
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	for i := range attendances {
		if !m.students[attendances[i].StudentID] {
			return fmt.Errorf("insert attendance: unknown student %s", attendances[i].StudentID)
		}
	}
	m.sessions[session.ID] = *session
	for i := range attendances {
		attendances[i].ID = fmt.Sprintf("%s-a-%d", session.ID, i)
		attendances[i].SessionID = session.ID
		m.attendances = append(m.attendances, attendances[i])
	}
	return nil
}

func (m *memoryStore) List(ctx context.Context) ([]models.ClassSession, error) {
	out := make([]models.ClassSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryStore) ListByUser(ctx context.Context, userID string) ([]models.ClassSession, error) {
	out := make([]models.ClassSession, 0)
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) Delete(ctx context.Context, id string) (bool, error) {
	kept := m.attendances[:0]
	for _, a := range m.attendances {
		if a.SessionID != id {
			kept = append(kept, a)
		}
	}
	m.attendances = kept
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *memoryStore) AttendanceBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	out := make([]models.AttendanceRecord, 0)
	for _, a := range m.attendances {
		if a.SessionID == sessionID {
			out = append(out, models.AttendanceRecord{Attendance: a})
		}
	}
	return out, nil
}

func (m *memoryStore) countFor(sessionID string) int {
	n := 0
	for _, a := range m.attendances {
		if a.SessionID == sessionID {
			n++
		}
	}
	return n
}

type countingCacheRepo struct {
	invalidated []string
}

func (c *countingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *countingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *countingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	c.invalidated = append(c.invalidated, pattern)
	return 0, nil
}

func newSessionService(store *memoryStore) (*SessionService, *countingCacheRepo) {
	cacheRepo := &countingCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	users := fakeUsers{"u-1": {ID: "u-1", Role: models.RoleTeacher, Active: true}}
	return NewSessionService(store, store, users, cache, NewMetricsService(), nil, zap.NewNop()), cacheRepo
}

func sessionRequest(entries ...models.AttendanceEntry) CreateSessionRequest {
	return CreateSessionRequest{
		Date:        "2024-01-01",
		TeacherName: "Ustadz Hasan",
		Material:    "Tajwid",
		Attendances: entries,
	}
}

func TestSessionServiceCreatePersistsEveryAttendance(t *testing.T) {
	store := newMemoryStore("s-1", "s-2", "s-3")
	svc, cacheRepo := newSessionService(store)

	entries := []models.AttendanceEntry{
		{StudentID: "s-1", Status: models.AttendanceStatusPresent},
		{StudentID: "s-2", Status: models.AttendanceStatusSick},
		{StudentID: "s-3", Status: models.AttendanceStatusAbsent},
	}
	session, err := svc.Create(context.Background(), "u-1", sessionRequest(entries...))
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.Equal(t, "Senin", session.Day)
	assert.Equal(t, "u-1", session.UserID)

	require.Equal(t, len(entries), store.countFor(session.ID))
	for i, a := range store.attendances {
		assert.Equal(t, session.ID, a.SessionID)
		assert.Equal(t, entries[i].StudentID, a.StudentID)
		assert.Equal(t, entries[i].Status, a.Status)
		assert.True(t, store.students[a.StudentID])
	}
	assert.Equal(t, []string{statisticsCachePattern}, cacheRepo.invalidated)
}

func TestSessionServiceCreateUnknownStudentPersistsNothing(t *testing.T) {
	store := newMemoryStore("s-1")
	svc, cacheRepo := newSessionService(store)

	_, err := svc.Create(context.Background(), "u-1", sessionRequest(
		models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusPresent},
		models.AttendanceEntry{StudentID: "s-404", Status: models.AttendanceStatusPresent},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "s-404")
	assert.Empty(t, store.sessions)
	assert.Empty(t, store.attendances)
	assert.Empty(t, cacheRepo.invalidated)
}

func TestSessionServiceCreateMalformedStudentIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	students := repository.NewStudentRepository(sqlx.NewDb(db, "sqlmock"))

	store := newMemoryStore()
	users := fakeUsers{"u-1": {ID: "u-1", Role: models.RoleTeacher, Active: true}}
	svc := NewSessionService(store, students, users, nil, nil, nil, zap.NewNop())

	_, err = svc.Create(context.Background(), "u-1", sessionRequest(
		models.AttendanceEntry{StudentID: "abc", Status: models.AttendanceStatusPresent},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "student abc not found")
	assert.Empty(t, store.sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionServiceCreateUnknownOwner(t *testing.T) {
	store := newMemoryStore("s-1")
	svc, _ := newSessionService(store)

	_, err := svc.Create(context.Background(), "ghost", sessionRequest(models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusPresent}))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "user not found")
	assert.Empty(t, store.sessions)
}

func TestSessionServiceCreateWithoutAttendances(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newSessionService(store)

	session, err := svc.Create(context.Background(), "u-1", sessionRequest())
	require.NoError(t, err)
	assert.Zero(t, store.countFor(session.ID))
	assert.Len(t, store.sessions, 1)
}

func TestSessionServiceCreateValidation(t *testing.T) {
	store := newMemoryStore("s-1")
	svc, _ := newSessionService(store)

	cases := map[string]CreateSessionRequest{
		"malformed date": {Date: "01-01-2024", TeacherName: "T", Material: "M"},
		"missing teacher": {Date: "2024-01-01", Material: "M"},
		"unknown status": sessionRequest(models.AttendanceEntry{StudentID: "s-1", Status: "Terlambat"}),
		"duplicate student": sessionRequest(
			models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusPresent},
			models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusSick},
		),
		"day mismatch": {Date: "2024-01-01", Day: "Selasa", TeacherName: "T", Material: "M"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u-1", req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
	assert.Empty(t, store.sessions)
}

func TestSessionServiceCreateAcceptsMatchingDay(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newSessionService(store)

	req := sessionRequest()
	req.Date = "2024-02-02"
	req.Day = "jumat"
	session, err := svc.Create(context.Background(), "u-1", req)
	require.NoError(t, err)
	assert.Equal(t, "Jumat", session.Day)
}

func TestSessionServiceDeleteCascades(t *testing.T) {
	store := newMemoryStore("s-1", "s-2")
	svc, cacheRepo := newSessionService(store)
	ctx := context.Background()

	session, err := svc.Create(ctx, "u-1", sessionRequest(
		models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusPresent},
		models.AttendanceEntry{StudentID: "s-2", Status: models.AttendanceStatusExcused},
	))
	require.NoError(t, err)
	other, err := svc.Create(ctx, "u-1", sessionRequest(models.AttendanceEntry{StudentID: "s-1", Status: models.AttendanceStatusPresent}))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, store.countFor(session.ID))
	assert.Equal(t, 1, store.countFor(other.ID))

	_, err = svc.Get(ctx, session.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Attendance(ctx, session.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, cacheRepo.invalidated, 3)

	deleted, err = svc.Delete(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSessionServiceListByUser(t *testing.T) {
	store := newMemoryStore()
	svc, _ := newSessionService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u-1", sessionRequest())
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := svc.ListByUser(ctx, "u-9")
	require.NoError(t, err)
	assert.Empty(t, others)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, strings.HasPrefix(all[0].ID, "k-"))
}
