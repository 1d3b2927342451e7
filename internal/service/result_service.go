package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

// ErrResultNotFound indicates a missing result reference.
var ErrResultNotFound = errors.New("result not found")

// ResultService scores submissions and serves stored results.
type ResultService interface {
	Compute(ctx context.Context, req dto.ComputeResultRequest) (dto.ResultResponse, error)
	Get(ctx context.Context, id uint) (dto.ResultResponse, error)
	ListByExam(ctx context.Context, examID uint) ([]dto.ResultResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.ResultResponse, error)
	Delete(ctx context.Context, id uint) error
}

type resultService struct {
	results   repository.ResultRepository
	exams     repository.ExamRepository
	students  repository.StudentRepository
	templates repository.OpticalTemplateRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewResultService constructs the result service.
func NewResultService(results repository.ResultRepository, exams repository.ExamRepository, students repository.StudentRepository, templates repository.OpticalTemplateRepository, validate *validator.Validate, logger zerolog.Logger) ResultService {
	return &resultService{
		results:   results,
		exams:     exams,
		students:  students,
		templates: templates,
		validator: validate,
		logger:    logger.With().Str("component", "result_service").Logger(),
		tracer:    otel.Tracer("github.com/optikform/optik-api/internal/service/result"),
	}
}

// Compute loads the exam's template key, grades the submission and upserts the
// result for the (exam, student) pair, so re-scoring identical input is
// idempotent.
func (s *resultService) Compute(ctx context.Context, req dto.ComputeResultRequest) (dto.ResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "result.compute")
	defer span.End()
	span.SetAttributes(
		attribute.Int("exam.id", int(req.ExamID)),
		attribute.Int("student.id", int(req.StudentID)),
	)

	if err := s.validator.Struct(req); err != nil {
		return dto.ResultResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrExamNotFound
		}
		return dto.ResultResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrStudentNotFound
		}
		return dto.ResultResponse{}, err
	}

	template, err := s.templates.GetByID(ctx, exam.OpticalTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrTemplateNotFound
		}
		return dto.ResultResponse{}, err
	}

	var components []models.TemplateComponent
	if err := json.Unmarshal(template.Components, &components); err != nil {
		return dto.ResultResponse{}, ErrInvalidComponents
	}

	score, graded := gradeSubmission(components, req.Answers)

	answersJSON, err := json.Marshal(graded)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	result := models.Result{
		ExamID:    req.ExamID,
		StudentID: req.StudentID,
		Score:     score,
		Answers:   datatypes.JSON(answersJSON),
	}
	if err := s.results.Upsert(ctx, &result); err != nil {
		return dto.ResultResponse{}, err
	}

	stored, err := s.results.GetByExamAndStudent(ctx, req.ExamID, req.StudentID)
	if err != nil {
		return dto.ResultResponse{}, err
	}

	s.logger.Info().
		Uint("exam_id", req.ExamID).
		Uint("student_id", req.StudentID).
		Float64("score", score).
		Msg("result computed")

	return dto.NewResultResponse(stored), nil
}

// gradeSubmission walks the template key in order. Every keyed component
// yields one graded entry: a missing answer counts as incorrect, submitted
// answers for unknown question numbers are ignored, and components without a
// correct answer are layout-only and produce neither points nor entries.
func gradeSubmission(components []models.TemplateComponent, answers []dto.SubmittedAnswer) (float64, []models.ResultAnswer) {
	submitted := make(map[int]string, len(answers))
	for _, answer := range answers {
		submitted[answer.QuestionNumber] = strings.TrimSpace(answer.Answer)
	}

	var score float64
	graded := make([]models.ResultAnswer, 0, len(components))
	for _, component := range components {
		key := strings.TrimSpace(component.CorrectAnswer)
		if key == "" {
			continue
		}

		answer := submitted[component.QuestionNumber]
		correct := answer != "" && strings.EqualFold(answer, key)
		if correct {
			score += component.Points
		}

		graded = append(graded, models.ResultAnswer{
			QuestionNumber: component.QuestionNumber,
			Answer:         answer,
			IsCorrect:      correct,
		})
	}

	return score, graded
}

func (s *resultService) Get(ctx context.Context, id uint) (dto.ResultResponse, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrResultNotFound
		}
		return dto.ResultResponse{}, err
	}
	return dto.NewResultResponse(result), nil
}

func (s *resultService) ListByExam(ctx context.Context, examID uint) ([]dto.ResultResponse, error) {
	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	results, err := s.results.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	return resultResponses(results), nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID uint) ([]dto.ResultResponse, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	results, err := s.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return resultResponses(results), nil
}

func (s *resultService) Delete(ctx context.Context, id uint) error {
	if _, err := s.results.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResultNotFound
		}
		return err
	}
	return s.results.Delete(ctx, id)
}

func resultResponses(results []models.Result) []dto.ResultResponse {
	responses := make([]dto.ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewResultResponse(result))
	}
	return responses
}
