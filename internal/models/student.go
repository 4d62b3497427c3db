package models

import "time"

// Gender of a student.
type Gender string

const (
	GenderMale   Gender = "Laki-laki"
	GenderFemale Gender = "Perempuan"
)

// Valid returns true when the gender is supported.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// EducationLevel is the school level a student is currently at.
type EducationLevel string

const (
	LevelElementary EducationLevel = "SD"
	LevelJunior     EducationLevel = "SMP"
	LevelSenior     EducationLevel = "SMA"
	LevelUniversity EducationLevel = "Kuliah"
)

// Valid returns true when the level is supported.
func (l EducationLevel) Valid() bool {
	switch l {
	case LevelElementary, LevelJunior, LevelSenior, LevelUniversity:
		return true
	default:
		return false
	}
}

// StudentStatus tracks whether a student still takes part in the programme.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "Aktif"
	StudentStatusInactive StudentStatus = "Tidak Aktif"
	StudentStatusAlumni   StudentStatus = "Alumni"
)

// Valid returns true when the status is supported.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusAlumni:
		return true
	default:
		return false
	}
}

// Student (generus) is a learner registered in the programme.
type Student struct {
	ID         string         `db:"id" json:"id"`
	FullName   string         `db:"full_name" json:"full_name"`
	BirthPlace string         `db:"birth_place" json:"birth_place"`
	BirthDate  Date           `db:"birth_date" json:"birth_date"`
	Group      string         `db:"group_name" json:"group"`
	Gender     Gender         `db:"gender" json:"gender"`
	Level      EducationLevel `db:"level" json:"level"`
	Status     StudentStatus  `db:"status" json:"status"`
	Profession *string        `db:"profession" json:"profession"`
	Skills     *string        `db:"skills" json:"skills"`
	Notes      *string        `db:"notes" json:"notes"`
	PhotoURL   *string        `db:"photo_url" json:"photo_url"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
