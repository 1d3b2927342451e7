package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
	"github.com/optikform/optik-api/internal/service"
)

func setupExamService(t *testing.T) (service.ExamService, *gorm.DB, models.School, models.OpticalTemplate, service.Actor) {
	t.Helper()

	db := newTestDB(t)
	school := seedSchool(t, db, "Gazi Ilkokulu")

	template := models.OpticalTemplate{
		Name:        "Standart",
		Components:  datatypes.JSON(`[{"questionNumber":1,"correctAnswer":"A","points":5}]`),
		CreatedByID: 7,
	}
	require.NoError(t, db.Create(&template).Error)

	svc := service.NewExamService(
		db,
		repository.NewExamRepository(db),
		repository.NewSchoolRepository(db),
		repository.NewClassRepository(db),
		repository.NewOpticalTemplateRepository(db),
		noopStorage{},
		newValidator(),
		discardLogger(),
	)

	actor := service.Actor{UserID: 7, Role: models.RoleTeacher, SchoolID: &school.ID}
	return svc, db, school, template, actor
}

func examReq(title string, template models.OpticalTemplate) dto.AddExamRequest {
	return dto.AddExamRequest{
		Title:             title,
		Date:              time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC),
		OpticalTemplateID: template.ID,
	}
}

func TestExamService_Add(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	class := seedClass(t, db, school, "5-B", 5)

	req := examReq("1. Donem Deneme", template)
	req.ClassID = &class.ID

	exam, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)
	require.Equal(t, school.ID, exam.SchoolID)
	require.NotNil(t, exam.ClassID)
	require.Equal(t, class.ID, *exam.ClassID)
	require.Equal(t, template.ID, exam.OpticalTemplateID)
	require.Equal(t, actor.UserID, exam.CreatedByID)
}

func TestExamService_Add_TitleUniquePerSchool(t *testing.T) {
	svc, _, _, template, actor := setupExamService(t)

	_, err := svc.Add(context.Background(), examReq("Deneme", template), actor)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), examReq("Deneme", template), actor)
	require.ErrorIs(t, err, service.ErrExamTitleTaken)
}

func TestExamService_Add_RejectsMissingReferences(t *testing.T) {
	svc, _, _, template, actor := setupExamService(t)

	req := examReq("Deneme", template)
	req.OpticalTemplateID = 9999
	_, err := svc.Add(context.Background(), req, actor)
	require.ErrorIs(t, err, service.ErrTemplateNotFound)

	missing := uint(9999)
	req = examReq("Deneme", template)
	req.ClassID = &missing
	_, err = svc.Add(context.Background(), req, actor)
	require.ErrorIs(t, err, service.ErrClassNotFound)

	noSchool := service.Actor{UserID: 7, Role: models.RoleTeacher}
	_, err = svc.Add(context.Background(), examReq("Deneme", template), noSchool)
	require.ErrorIs(t, err, service.ErrSchoolNotFound)
}

func TestExamService_Add_RejectsUnknownTargets(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	class := seedClass(t, db, school, "5-A", 5)
	student := seedStudent(t, db, school, class, "1001")

	req := examReq("Deneme", template)
	req.AssignedClassIDs = []uint{class.ID, 9999}
	_, err := svc.Add(context.Background(), req, actor)
	require.ErrorIs(t, err, service.ErrClassNotFound)

	req = examReq("Deneme", template)
	req.StudentIDs = []uint{student.ID, 8888}
	_, err = svc.Add(context.Background(), req, actor)
	require.ErrorIs(t, err, service.ErrStudentNotFound)

	// A failed targeting list must not leave behind bare rows or the exam itself.
	var classes, students, exams int64
	require.NoError(t, db.Model(&models.Class{}).Count(&classes).Error)
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	require.NoError(t, db.Model(&models.Exam{}).Count(&exams).Error)
	require.EqualValues(t, 1, classes)
	require.EqualValues(t, 1, students)
	require.EqualValues(t, 0, exams)
}

func TestExamService_Update_RejectsUnknownTargets(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	class := seedClass(t, db, school, "5-A", 5)

	req := examReq("Deneme", template)
	req.AssignedClassIDs = []uint{class.ID}
	exam, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), exam.ID, dto.UpdateExamRequest{
		StudentIDs: []uint{8888},
	})
	require.ErrorIs(t, err, service.ErrStudentNotFound)

	var students int64
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	require.EqualValues(t, 0, students)

	// The original targeting survives the rolled-back update.
	current, err := svc.Get(context.Background(), exam.ID)
	require.NoError(t, err)
	require.Len(t, current.AssignedClasses, 1)
}

func TestExamService_ListByClass_UnionOfDirectAndAssigned(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	direct := seedClass(t, db, school, "5-A", 5)
	assigned := seedClass(t, db, school, "5-B", 5)
	outside := seedClass(t, db, school, "5-C", 5)

	req := examReq("Ortak Deneme", template)
	req.ClassID = &direct.ID
	req.AssignedClassIDs = []uint{assigned.ID}
	_, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)

	forDirect, err := svc.ListByClass(context.Background(), direct.ID)
	require.NoError(t, err)
	require.Len(t, forDirect, 1)

	forAssigned, err := svc.ListByClass(context.Background(), assigned.ID)
	require.NoError(t, err)
	require.Len(t, forAssigned, 1)

	forOutside, err := svc.ListByClass(context.Background(), outside.ID)
	require.NoError(t, err)
	require.Empty(t, forOutside)
}

func TestExamService_Update_ReplacesAssignments(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	first := seedClass(t, db, school, "5-A", 5)
	second := seedClass(t, db, school, "5-B", 5)
	student := seedStudent(t, db, school, first, "1001")

	req := examReq("Deneme", template)
	req.AssignedClassIDs = []uint{first.ID}
	exam, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)
	require.Len(t, exam.AssignedClasses, 1)

	updated, err := svc.Update(context.Background(), exam.ID, dto.UpdateExamRequest{
		AssignedClassIDs: []uint{second.ID},
		StudentIDs:       []uint{student.ID},
	})
	require.NoError(t, err)
	require.Len(t, updated.AssignedClasses, 1)
	require.Equal(t, second.ID, updated.AssignedClasses[0].ID)
	require.Len(t, updated.Students, 1)
	require.Equal(t, student.ID, updated.Students[0].ID)
}

func TestExamService_TemplateListings(t *testing.T) {
	svc, _, school, template, actor := setupExamService(t)

	req := examReq("Hazir Sablon", template)
	req.IsTemplate = true
	_, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), examReq("Gercek Sinav", template), actor)
	require.NoError(t, err)

	templates, err := svc.ListTemplatesBySchool(context.Background(), school.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	require.True(t, templates[0].IsTemplate)

	exams, err := svc.ListBySchool(context.Background(), school.ID)
	require.NoError(t, err)
	require.Len(t, exams, 1)
	require.False(t, exams[0].IsTemplate)
}

func TestExamService_Delete_KeepsResults(t *testing.T) {
	svc, db, school, template, actor := setupExamService(t)
	class := seedClass(t, db, school, "5-B", 5)
	student := seedStudent(t, db, school, class, "1001")

	exam, err := svc.Add(context.Background(), examReq("Deneme", template), actor)
	require.NoError(t, err)

	result := models.Result{
		ExamID:    exam.ID,
		StudentID: student.ID,
		Score:     5,
		Answers:   datatypes.JSON(`[]`),
	}
	require.NoError(t, db.Create(&result).Error)

	require.NoError(t, svc.Delete(context.Background(), exam.ID))

	_, err = svc.Get(context.Background(), exam.ID)
	require.ErrorIs(t, err, service.ErrExamNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Result{}).Where("exam_id = ?", exam.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
