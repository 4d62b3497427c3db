package models

import "time"

// AttendanceStatus represents the status of a student at one session.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Hadir"
	AttendanceStatusSick    AttendanceStatus = "Sakit"
	AttendanceStatusExcused AttendanceStatus = "Izin"
	AttendanceStatusAbsent  AttendanceStatus = "Tidak Hadir/Alfa"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusSick,
	AttendanceStatusExcused,
	AttendanceStatusAbsent,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusSick, AttendanceStatusExcused, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Attendance links a student to a class session. Rows are append-only and deleted together
// with their session.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	SessionID string           `db:"session_id" json:"session_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceRecord extends an attendance row with session and student context.
type AttendanceRecord struct {
	Attendance
	StudentName string `db:"student_name" json:"student_name"`
	SessionDate Date   `db:"session_date" json:"session_date"`
	SessionDay  string `db:"session_day" json:"session_day"`
	Material    string `db:"material" json:"material"`
}

// AttendanceEntry is one (student, status) pair submitted with a session.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,attendance_status"`
}
