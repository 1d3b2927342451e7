package models

import "time"

// Booklet types are the variant answer-sheet orderings handed out per student.
const (
	BookletA = "A"
	BookletB = "B"
	BookletC = "C"
	BookletD = "D"
)

// Student is a registered learner. National id and student number are unique
// across the whole system; class membership is nullable because deleting a
// class clears the reference rather than deleting the student.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:255;not null" json:"first_name"`
	LastName      string    `gorm:"size:255;not null" json:"last_name"`
	NationalID    string    `gorm:"size:64;uniqueIndex;not null" json:"national_id"`
	StudentNumber string    `gorm:"size:64;uniqueIndex;not null" json:"student_number"`
	ClassID       *uint     `gorm:"index" json:"class_id"`
	Class         *Class    `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	SchoolID      uint      `gorm:"index;not null" json:"school_id"`
	School        *School   `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	BookletType   string    `gorm:"size:1;not null;default:A" json:"booklet_type"`
	Phone         string    `gorm:"size:32" json:"phone"`
	CreatedByID   uint      `gorm:"not null" json:"created_by_id"`
	CreatedBy     *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ValidBookletType reports whether the value is one of A/B/C/D.
func ValidBookletType(bt string) bool {
	switch bt {
	case BookletA, BookletB, BookletC, BookletD:
		return true
	}
	return false
}
