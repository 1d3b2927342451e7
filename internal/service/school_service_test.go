package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/repository"
	"github.com/optikform/optik-api/internal/service"
)

func setupSchoolService(t *testing.T) (service.SchoolService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := service.NewSchoolService(repository.NewSchoolRepository(db), newValidator(), discardLogger())
	return svc, db
}

func TestSchoolService_Add_RejectsDuplicateName(t *testing.T) {
	svc, _ := setupSchoolService(t)

	req := dto.AddSchoolRequest{Name: "Gazi Ilkokulu", City: "Ankara", Address: "Okul Sk. 5"}
	_, err := svc.Add(context.Background(), req)
	require.NoError(t, err)

	req.City = "Izmir"
	_, err = svc.Add(context.Background(), req)
	require.ErrorIs(t, err, service.ErrSchoolNameTaken)
}

func TestSchoolService_Update_PartialFields(t *testing.T) {
	svc, _ := setupSchoolService(t)

	created, err := svc.Add(context.Background(), dto.AddSchoolRequest{
		Name: "Gazi Ilkokulu", City: "Ankara", Address: "Okul Sk. 5",
	})
	require.NoError(t, err)

	city := "Izmir"
	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateSchoolRequest{City: &city})
	require.NoError(t, err)
	require.Equal(t, "Izmir", updated.City)
	require.Equal(t, "Gazi Ilkokulu", updated.Name)
}

func TestSchoolService_Update_RejectsNameCollision(t *testing.T) {
	svc, _ := setupSchoolService(t)

	_, err := svc.Add(context.Background(), dto.AddSchoolRequest{Name: "Birinci Okul", City: "Ankara", Address: "A"})
	require.NoError(t, err)
	second, err := svc.Add(context.Background(), dto.AddSchoolRequest{Name: "Ikinci Okul", City: "Ankara", Address: "B"})
	require.NoError(t, err)

	name := "Birinci Okul"
	_, err = svc.Update(context.Background(), second.ID, dto.UpdateSchoolRequest{Name: &name})
	require.ErrorIs(t, err, service.ErrSchoolNameTaken)
}

func TestSchoolService_Delete(t *testing.T) {
	svc, _ := setupSchoolService(t)

	created, err := svc.Add(context.Background(), dto.AddSchoolRequest{Name: "Gecici Okul", City: "Bursa", Address: "C"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, service.ErrSchoolNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), service.ErrSchoolNotFound)
}
