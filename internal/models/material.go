package models

import "time"

// Material is a shared learning resource.
type Material struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	FileURL     *string   `db:"file_url" json:"file_url"`
	FileName    *string   `db:"file_name" json:"file_name"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
