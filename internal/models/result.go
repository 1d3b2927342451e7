package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is the scored outcome of one student on one exam. The (exam, student)
// pair is unique; re-scoring replaces the row rather than appending a duplicate.
type Result struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ExamID    uint           `gorm:"not null;uniqueIndex:idx_results_exam_student" json:"exam_id"`
	Exam      *Exam          `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_results_exam_student" json:"student_id"`
	Student   *Student       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Score     float64        `gorm:"not null" json:"score"`
	Answers   datatypes.JSON `gorm:"not null" json:"answers"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ResultAnswer is one graded entry of a result's answer list.
type ResultAnswer struct {
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
	IsCorrect      bool   `json:"isCorrect"`
}
