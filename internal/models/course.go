package models

import "time"

// CourseClassType distinguishes lectures from lab sessions.
type CourseClassType string

const (
	ClassTypeLecture CourseClassType = "Lecture"
	ClassTypeLab     CourseClassType = "Lab"
)

// CourseStatus marks whether a course participates in generation.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "Active"
	CourseStatusInactive CourseStatus = "Inactive"
)

// Course represents an offered course.
type Course struct {
	ID          string          `db:"id" json:"id"`
	CourseName  string          `db:"course_name" json:"courseName"`
	CourseCode  string          `db:"course_code" json:"courseCode"`
	CreditHours int             `db:"credit_hours" json:"creditHours"`
	ClassType   CourseClassType `db:"class_type" json:"classType"`
	Semester    string          `db:"semester" json:"semester"`
	Department  string          `db:"department" json:"department"`
	Status      CourseStatus    `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Department string
	Semester   string
	Status     *CourseStatus
	Search     string
	Page       int
	PageSize   int
}
