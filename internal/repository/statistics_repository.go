package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

const attendanceJoin = `FROM attendances a JOIN class_sessions cs ON cs.id = a.session_id`

// StatisticsRepository runs the aggregation queries behind attendance statistics.
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository constructs a StatisticsRepository.
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// StatusCounts groups attendance rows in the range by status.
func (r *StatisticsRepository) StatusCounts(ctx context.Context, rng models.DateRange) ([]models.StatusCount, error) {
	where, args := whereClause(appendDateRange(nil, nil, rng))
	query := fmt.Sprintf("SELECT a.status, COUNT(*) AS count %s%s GROUP BY a.status", attendanceJoin, where)
	counts := make([]models.StatusCount, 0, len(models.AttendanceStatuses))
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}
	return counts, nil
}

// DistinctStudents counts the students with at least one attendance row in the range,
// optionally restricted to a status.
func (r *StatisticsRepository) DistinctStudents(ctx context.Context, rng models.DateRange, status *models.AttendanceStatus) (int, error) {
	var conditions []string
	var args []interface{}
	if status != nil {
		conditions = append(conditions, "a.status = $1")
		args = append(args, *status)
	}
	where, args := whereClause(appendDateRange(conditions, args, rng))
	query := fmt.Sprintf("SELECT COUNT(DISTINCT a.student_id) %s%s", attendanceJoin, where)
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count distinct students: %w", err)
	}
	return total, nil
}

// CountSessions counts the sessions dated within [from, to].
func (r *StatisticsRepository) CountSessions(ctx context.Context, from, to models.Date) (int, error) {
	const query = `SELECT COUNT(*) FROM class_sessions WHERE session_date >= $1 AND session_date <= $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, from, to); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}

// PresentTotals counts present attendance rows dated within [from, to] and the distinct students behind them.
func (r *StatisticsRepository) PresentTotals(ctx context.Context, from, to models.Date) (models.PresentTotals, error) {
	query := `SELECT COUNT(*) AS attendances, COUNT(DISTINCT a.student_id) AS students ` + attendanceJoin +
		` WHERE a.status = $1 AND cs.session_date >= $2 AND cs.session_date <= $3`
	var totals models.PresentTotals
	if err := r.db.GetContext(ctx, &totals, query, models.AttendanceStatusPresent, from, to); err != nil {
		return models.PresentTotals{}, fmt.Errorf("count present attendance: %w", err)
	}
	return totals, nil
}

func whereClause(conditions []string, args []interface{}) (string, []interface{}) {
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
