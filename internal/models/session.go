package models

import "time"

// ClassSession is one recorded teaching occasion (KBM report).
type ClassSession struct {
	ID          string    `db:"id" json:"id"`
	Date        Date      `db:"session_date" json:"date"`
	Day         string    `db:"day" json:"day"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	UserID      string    `db:"user_id" json:"user_id"`
	Material    string    `db:"material" json:"material"`
	Notes       *string   `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
