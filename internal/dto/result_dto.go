package dto

import (
	"encoding/json"
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// SubmittedAnswer is one marked entry from a student's answer sheet.
type SubmittedAnswer struct {
	QuestionNumber int    `json:"question_number" validate:"required,min=1"`
	Answer         string `json:"answer"`
}

// ComputeResultRequest scores a student's submission against the exam's
// template key.
type ComputeResultRequest struct {
	ExamID    uint              `json:"exam_id" validate:"required"`
	StudentID uint              `json:"student_id" validate:"required"`
	Answers   []SubmittedAnswer `json:"answers" validate:"dive"`
}

// ResultResponse is the public view of a scored result.
type ResultResponse struct {
	ID        uint                  `json:"id"`
	ExamID    uint                  `json:"exam_id"`
	StudentID uint                  `json:"student_id"`
	Score     float64               `json:"score"`
	Answers   []models.ResultAnswer `json:"answers"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewResultResponse maps a result model to its response shape.
func NewResultResponse(result models.Result) ResultResponse {
	resp := ResultResponse{
		ID:        result.ID,
		ExamID:    result.ExamID,
		StudentID: result.StudentID,
		Score:     result.Score,
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}
	// Answers were marshalled by the scoring service; a decode failure here
	// would mean corrupted storage, so the zero list is returned instead.
	_ = json.Unmarshal(result.Answers, &resp.Answers)
	return resp
}
