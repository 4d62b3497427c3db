package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

const (
	statisticsCachePrefix  = "statistics:"
	statisticsCachePattern = statisticsCachePrefix + "*"
	unboundedLabel         = "N/A"
	weeksPerMonth          = 4
	daysPerWeek            = 7
)

type statisticsRepository interface {
	StatusCounts(ctx context.Context, rng models.DateRange) ([]models.StatusCount, error)
	DistinctStudents(ctx context.Context, rng models.DateRange, status *models.AttendanceStatus) (int, error)
	CountSessions(ctx context.Context, from, to models.Date) (int, error)
	PresentTotals(ctx context.Context, from, to models.Date) (models.PresentTotals, error)
}

type studentAttendanceRepository interface {
	AttendanceByStudent(ctx context.Context, studentID string, rng models.DateRange) ([]models.AttendanceRecord, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// StatisticsService aggregates attendance into period summaries and monthly breakdowns.
type StatisticsService struct {
	repo       statisticsRepository
	attendance studentAttendanceRepository
	students   studentFinder
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewStatisticsService constructs a StatisticsService.
func NewStatisticsService(repo statisticsRepository, attendance studentAttendanceRepository, students studentFinder, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{repo: repo, attendance: attendance, students: students, cache: cache, metrics: metrics, logger: logger}
}

// PeriodSummary counts attendance whose session falls within the optional inclusive range. The
// boolean reports whether the result came from cache.
func (s *StatisticsService) PeriodSummary(ctx context.Context, start, end string) (*models.AttendanceSummary, bool, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	rng, err := parseRange(start, end)
	if err != nil {
		return nil, false, err
	}

	key := fmt.Sprintf("%ssummary:%s:%s", statisticsCachePrefix, labelOr(start), labelOr(end))
	var cached models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}
	generation := s.cache.Generation()

	began := time.Now()
	counts, err := s.repo.StatusCounts(ctx, rng)
	if err != nil {
		return nil, false, internalError(err, "failed to count attendance")
	}
	students, err := s.repo.DistinctStudents(ctx, rng, nil)
	if err != nil {
		return nil, false, internalError(err, "failed to count students")
	}
	s.metrics.ObserveDBQuery("statistics_summary", time.Since(began))

	summary := &models.AttendanceSummary{
		TotalStudents: students,
		Period:        fmt.Sprintf("%s - %s", labelOr(start), labelOr(end)),
	}
	for _, c := range counts {
		switch c.Status {
		case models.AttendanceStatusPresent:
			summary.Present += c.Count
		case models.AttendanceStatusSick:
			summary.Sick += c.Count
		case models.AttendanceStatusExcused:
			summary.Excused += c.Count
		case models.AttendanceStatusAbsent:
			summary.Absent += c.Count
		default:
			s.logger.Warn("unknown attendance status in store", zap.String("status", string(c.Status)))
		}
	}

	_ = s.cache.SetIfCurrent(ctx, key, summary, 0, generation)
	return summary, false, nil
}

// MonthlyBreakdown returns one breakdown per requested month of year: every month in order when
// month is nil, otherwise only that month.
func (s *StatisticsService) MonthlyBreakdown(ctx context.Context, year int, month *int) ([]models.MonthlyBreakdown, bool, error) {
	if year < 1 || year > 9999 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year must be between 1 and 9999")
	}
	months := make([]time.Month, 0, 12)
	monthLabel := "all"
	if month != nil {
		if *month < 1 || *month > 12 {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
		}
		months = append(months, time.Month(*month))
		monthLabel = fmt.Sprintf("%02d", *month)
	} else {
		for m := time.January; m <= time.December; m++ {
			months = append(months, m)
		}
	}

	key := fmt.Sprintf("%smonthly:%04d:%s", statisticsCachePrefix, year, monthLabel)
	var cached []models.MonthlyBreakdown
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}
	generation := s.cache.Generation()

	began := time.Now()
	results := make([]models.MonthlyBreakdown, 0, len(months))
	for _, m := range months {
		breakdown, err := s.monthBreakdown(ctx, year, m)
		if err != nil {
			return nil, false, internalError(err, "failed to build monthly breakdown")
		}
		results = append(results, breakdown)
	}
	s.metrics.ObserveDBQuery("statistics_monthly", time.Since(began))

	_ = s.cache.SetIfCurrent(ctx, key, results, 0, generation)
	return results, false, nil
}

// StudentAttendance lists a student's attendance within the optional inclusive range.
func (s *StatisticsService) StudentAttendance(ctx context.Context, studentID, start, end string) ([]models.AttendanceRecord, error) {
	rng, err := parseRange(strings.TrimSpace(start), strings.TrimSpace(end))
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	records, err := s.attendance.AttendanceByStudent(ctx, studentID, rng)
	if err != nil {
		return nil, internalError(err, "failed to list student attendance")
	}
	return records, nil
}

func (s *StatisticsService) monthBreakdown(ctx context.Context, year int, month time.Month) (models.MonthlyBreakdown, error) {
	lastDay := models.LastDayOfMonth(year, month).Day()
	first := models.NewDate(year, month, 1)
	last := models.NewDate(year, month, lastDay)

	sessions, err := s.repo.CountSessions(ctx, first, last)
	if err != nil {
		return models.MonthlyBreakdown{}, err
	}
	present, err := s.repo.PresentTotals(ctx, first, last)
	if err != nil {
		return models.MonthlyBreakdown{}, err
	}

	breakdown := models.MonthlyBreakdown{
		Month:         month.String(),
		MonthNumber:   int(month),
		Year:          year,
		TotalSessions: sessions,
		WeeklyData:    make([]models.WeeklyBucket, 0, weeksPerMonth),
	}
	if sessions > 0 {
		breakdown.AvgAttendance = round2(float64(present.Attendances) / float64(sessions))
	}

	for week := 1; week <= weeksPerMonth; week++ {
		from, to := weekBounds(year, month, week, lastDay)
		totals, err := s.repo.PresentTotals(ctx, from, to)
		if err != nil {
			return models.MonthlyBreakdown{}, err
		}
		breakdown.WeeklyData = append(breakdown.WeeklyData, models.WeeklyBucket{
			Week:            week,
			StartDate:       from.String(),
			EndDate:         to.String(),
			AttendanceCount: totals.Attendances,
			TotalStudents:   totals.Students,
		})
	}
	return breakdown, nil
}

// weekBounds returns days [(week-1)*7+1, week*7] of the month, the end clamped to lastDay.
// Days after the 28th belong to no bucket.
func weekBounds(year int, month time.Month, week, lastDay int) (models.Date, models.Date) {
	startDay := (week-1)*daysPerWeek + 1
	endDay := week * daysPerWeek
	if endDay > lastDay {
		endDay = lastDay
	}
	return models.NewDate(year, month, startDay), models.NewDate(year, month, endDay)
}

func parseRange(start, end string) (models.DateRange, error) {
	from, err := models.ParseOptionalDate(start)
	if err != nil {
		return models.DateRange{}, validationError(err, "start must be a YYYY-MM-DD date")
	}
	to, err := models.ParseOptionalDate(end)
	if err != nil {
		return models.DateRange{}, validationError(err, "end must be a YYYY-MM-DD date")
	}
	if from != nil && to != nil && from.After(to.Time) {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "start must not be after end")
	}
	return models.DateRange{From: from, To: to}, nil
}

func labelOr(value string) string {
	if value == "" {
		return unboundedLabel
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
