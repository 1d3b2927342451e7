package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
	"github.com/optikform/optik-api/internal/service"
)

func setupStudentService(t *testing.T) (service.StudentService, *gorm.DB, models.School, models.Class, service.Actor) {
	t.Helper()

	db := newTestDB(t)
	school := seedSchool(t, db, "Gazi Ilkokulu")
	class := seedClass(t, db, school, "5-B", 5)

	svc := service.NewStudentService(
		db,
		repository.NewStudentRepository(db),
		repository.NewClassRepository(db),
		repository.NewSchoolRepository(db),
		newValidator(),
		discardLogger(),
	)

	actor := service.Actor{UserID: 7, Role: models.RoleTeacher, SchoolID: &school.ID}
	return svc, db, school, class, actor
}

func studentReq(class models.Class, number string) dto.AddStudentRequest {
	return dto.AddStudentRequest{
		FirstName:     "Ada",
		LastName:      "Yilmaz",
		NationalID:    "TC" + number,
		StudentNumber: number,
		ClassID:       class.ID,
		BookletType:   models.BookletB,
	}
}

func TestStudentService_Add(t *testing.T) {
	svc, _, school, class, actor := setupStudentService(t)

	student, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)
	require.Equal(t, school.ID, student.SchoolID)
	require.NotNil(t, student.ClassID)
	require.Equal(t, class.ID, *student.ClassID)
	require.Equal(t, models.BookletB, student.BookletType)
	require.Equal(t, actor.UserID, student.CreatedByID)
}

func TestStudentService_Add_DefaultsBookletType(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	req := studentReq(class, "1001")
	req.BookletType = ""
	student, err := svc.Add(context.Background(), req, actor)
	require.NoError(t, err)
	require.Equal(t, models.BookletA, student.BookletType)
}

func TestStudentService_Add_RejectsDuplicates(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	_, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)

	dup := studentReq(class, "1002")
	dup.StudentNumber = "1001"
	_, err = svc.Add(context.Background(), dup, actor)
	require.ErrorIs(t, err, service.ErrStudentNumberTaken)

	dup = studentReq(class, "1003")
	dup.NationalID = "TC1001"
	_, err = svc.Add(context.Background(), dup, actor)
	require.ErrorIs(t, err, service.ErrNationalIDTaken)
}

func TestStudentService_Add_RejectsPaddedDuplicates(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	_, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)

	// Whitespace around an existing value must hit the conflict check, not the
	// unique index.
	dup := studentReq(class, "1002")
	dup.StudentNumber = " 1001 "
	_, err = svc.Add(context.Background(), dup, actor)
	require.ErrorIs(t, err, service.ErrStudentNumberTaken)

	dup = studentReq(class, "1003")
	dup.NationalID = " TC1001 "
	_, err = svc.Add(context.Background(), dup, actor)
	require.ErrorIs(t, err, service.ErrNationalIDTaken)
}

func TestStudentService_Update_PaddedNumber(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	first, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)
	second, err := svc.Add(context.Background(), studentReq(class, "1002"), actor)
	require.NoError(t, err)

	// Padding around the student's own number is not a conflict.
	padded := " 1001 "
	updated, err := svc.Update(context.Background(), first.ID, dto.UpdateStudentRequest{StudentNumber: &padded})
	require.NoError(t, err)
	require.Equal(t, "1001", updated.StudentNumber)

	// Padding around a neighbour's number still is.
	_, err = svc.Update(context.Background(), second.ID, dto.UpdateStudentRequest{StudentNumber: &padded})
	require.ErrorIs(t, err, service.ErrStudentNumberTaken)
}

func TestStudentService_Add_RejectsUnknownClass(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	req := studentReq(class, "1001")
	req.ClassID = 9999
	_, err := svc.Add(context.Background(), req, actor)
	require.ErrorIs(t, err, service.ErrClassNotFound)
}

func TestStudentService_AddFromList_RollsBackOnFailingRow(t *testing.T) {
	svc, db, _, class, actor := setupStudentService(t)

	rows := make([]dto.AddStudentRequest, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, studentReq(class, fmt.Sprintf("10%02d", i)))
	}
	// Row 3 (index 2) collides with row 1 on the student number.
	rows[2].StudentNumber = rows[0].StudentNumber

	_, err := svc.AddFromList(context.Background(), dto.BulkAddStudentsRequest{Students: rows}, actor)
	require.Error(t, err)

	var rowErr *service.BulkImportError
	require.ErrorAs(t, err, &rowErr)
	require.Equal(t, 2, rowErr.Row)
	require.Contains(t, err.Error(), "row 3")
	require.ErrorIs(t, err, service.ErrStudentNumberTaken)

	// Nothing from the batch may remain, rows before the failure included.
	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestStudentService_AddFromList_CommitsCleanBatch(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	rows := make([]dto.AddStudentRequest, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, studentReq(class, fmt.Sprintf("20%02d", i)))
	}

	imported, err := svc.AddFromList(context.Background(), dto.BulkAddStudentsRequest{Students: rows}, actor)
	require.NoError(t, err)
	require.Len(t, imported, 3)
}

func TestStudentService_Update_MovesClass(t *testing.T) {
	svc, db, school, class, actor := setupStudentService(t)
	other := seedClass(t, db, school, "5-C", 5)

	student, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), student.ID, dto.UpdateStudentRequest{ClassID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ClassID)
	require.Equal(t, other.ID, *updated.ClassID)

	// Moving to a class that does not exist is refused outright.
	missing := uint(9999)
	_, err = svc.Update(context.Background(), student.ID, dto.UpdateStudentRequest{ClassID: &missing})
	require.ErrorIs(t, err, service.ErrClassNotFound)
}

func TestStudentService_Update_RejectsTakenNumber(t *testing.T) {
	svc, _, _, class, actor := setupStudentService(t)

	first, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), studentReq(class, "1002"), actor)
	require.NoError(t, err)

	taken := "1002"
	_, err = svc.Update(context.Background(), first.ID, dto.UpdateStudentRequest{StudentNumber: &taken})
	require.ErrorIs(t, err, service.ErrStudentNumberTaken)
}

func TestStudentService_Delete_SurvivesDanglingClass(t *testing.T) {
	svc, db, _, class, actor := setupStudentService(t)

	student, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)

	// Simulate a class row that vanished underneath the student.
	require.NoError(t, db.Unscoped().Delete(&models.Class{}, class.ID).Error)

	require.NoError(t, svc.Delete(context.Background(), student.ID))

	_, err = svc.Get(context.Background(), student.ID)
	require.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestStudentService_ListByClassAndSchool(t *testing.T) {
	svc, db, school, class, actor := setupStudentService(t)
	other := seedClass(t, db, school, "5-C", 5)

	_, err := svc.Add(context.Background(), studentReq(class, "1001"), actor)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), studentReq(other, "1002"), actor)
	require.NoError(t, err)

	byClass, err := svc.ListByClass(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, byClass, 1)

	bySchool, err := svc.ListBySchool(context.Background(), school.ID)
	require.NoError(t, err)
	require.Len(t, bySchool, 2)

	_, err = svc.ListByClass(context.Background(), 9999)
	require.ErrorIs(t, err, service.ErrClassNotFound)
}
