package service_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/models"
)

// newTestDB opens a per-test in-memory database so uniqueness checks never
// bleed between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Class{},
		&models.Student{},
		&models.OpticalTemplate{},
		&models.Exam{},
		&models.Result{},
	))

	return db
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func seedSchool(t *testing.T, db *gorm.DB, name string) models.School {
	t.Helper()

	school := models.School{Name: name, City: "Ankara", Address: "Test Cd. 1"}
	require.NoError(t, db.Create(&school).Error)
	return school
}

func seedClass(t *testing.T, db *gorm.DB, school models.School, name string, grade int) models.Class {
	t.Helper()

	class := models.Class{Name: name, Grade: grade, SchoolID: school.ID}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func seedTeacher(t *testing.T, db *gorm.DB, school models.School, email string, approved bool) models.User {
	t.Helper()

	teacher := models.User{
		Name:         "Teacher " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleTeacher,
		SchoolID:     &school.ID,
		IsApproved:   approved,
	}
	require.NoError(t, db.Create(&teacher).Error)
	return teacher
}

func seedStudent(t *testing.T, db *gorm.DB, school models.School, class models.Class, number string) models.Student {
	t.Helper()

	student := models.Student{
		FirstName:     "Ada",
		LastName:      "Yilmaz",
		NationalID:    "TC" + number,
		StudentNumber: number,
		ClassID:       &class.ID,
		SchoolID:      school.ID,
		BookletType:   models.BookletA,
		CreatedByID:   1,
	}
	require.NoError(t, db.Create(&student).Error)
	return student
}

// noopStorage satisfies FileStorage and records nothing.
type noopStorage struct{}

func (noopStorage) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://cdn.example.com/" + name, nil
}
