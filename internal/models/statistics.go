package models

import "time"

// AttendanceSummary aggregates attendance over an optional date range.
type AttendanceSummary struct {
	TotalStudents int    `json:"total_students"`
	Present       int    `json:"present"`
	Sick          int    `json:"sick"`
	Excused       int    `json:"excused"`
	Absent        int    `json:"absent"`
	Period        string `json:"period"`
}

// StatusCount is a grouped attendance count.
type StatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"count"`
}

// DateRange is an inclusive range of calendar days; nil bounds are unbounded.
type DateRange struct {
	From *Date
	To   *Date
}

// PresentTotals counts present rows and the distinct students behind them.
type PresentTotals struct {
	Attendances int `db:"attendances"`
	Students    int `db:"students"`
}

// WeeklyBucket is one of the four fixed week slices of a month.
type WeeklyBucket struct {
	Week            int    `json:"week"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	AttendanceCount int    `json:"attendance_count"`
	TotalStudents   int    `json:"total_students"`
}

// MonthlyBreakdown holds the session count, average presence and weekly slices of a month.
type MonthlyBreakdown struct {
	Month         string         `json:"month"`
	MonthNumber   int            `json:"month_number"`
	Year          int            `json:"year"`
	TotalSessions int            `json:"total_kbm"`
	AvgAttendance float64        `json:"avg_attendance"`
	WeeklyData    []WeeklyBucket `json:"weekly_data"`
}

// SystemMetrics is a lightweight instrumentation snapshot.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
