package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
	"github.com/optikform/optik-api/internal/service"
)

func setupTemplateService(t *testing.T) (service.OpticalTemplateService, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db := newTestDB(t)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	svc := service.NewOpticalTemplateService(
		repository.NewOpticalTemplateRepository(db),
		noopStorage{},
		cache,
		time.Minute,
		newValidator(),
		discardLogger(),
	)
	return svc, db, mr
}

func validComponents() json.RawMessage {
	return json.RawMessage(`[
		{"questionNumber": 1, "correctAnswer": "A", "points": 5},
		{"questionNumber": 2, "correctAnswer": "B", "points": 3},
		{"questionNumber": 3}
	]`)
}

func TestOpticalTemplateService_Add(t *testing.T) {
	svc, _, _ := setupTemplateService(t)
	actor := service.Actor{UserID: 7, Role: models.RoleTeacher}

	template, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "20 Soru A4",
		Components: validComponents(),
		IsPublic:   true,
	}, actor)
	require.NoError(t, err)
	require.Equal(t, actor.UserID, template.CreatedByID)
	require.True(t, template.IsPublic)
	require.JSONEq(t, string(validComponents()), string(template.Components))
}

func TestOpticalTemplateService_Add_RejectsMalformedComponents(t *testing.T) {
	svc, _, _ := setupTemplateService(t)
	actor := service.Actor{UserID: 7, Role: models.RoleTeacher}

	cases := []string{
		`{"questionNumber": 1}`,             // not an array
		`[]`,                                // empty
		`[{"correctAnswer": "A"}]`,          // missing question number
		`[{"questionNumber": 0}]`,           // below minimum
		`[{"questionNumber": 1, "points": -1}]`,
		`not json`,
	}
	for _, raw := range cases {
		_, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
			Name:       "Bozuk",
			Components: json.RawMessage(raw),
		}, actor)
		require.ErrorIs(t, err, service.ErrInvalidComponents, "components: %s", raw)
	}
}

func TestOpticalTemplateService_Get_VisibilityRule(t *testing.T) {
	svc, _, _ := setupTemplateService(t)
	owner := service.Actor{UserID: 7, Role: models.RoleTeacher}
	stranger := service.Actor{UserID: 8, Role: models.RoleTeacher}

	private, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "Ozel",
		Components: validComponents(),
	}, owner)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), private.ID, stranger)
	require.ErrorIs(t, err, service.ErrTemplateForbidden)

	got, err := svc.Get(context.Background(), private.ID, owner)
	require.NoError(t, err)
	require.Equal(t, "Ozel", got.Name)

	public, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "Acik",
		Components: validComponents(),
		IsPublic:   true,
	}, owner)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), public.ID, stranger)
	require.NoError(t, err)

	components, err := svc.GetComponents(context.Background(), public.ID, stranger)
	require.NoError(t, err)
	require.JSONEq(t, string(validComponents()), string(components))
}

func TestOpticalTemplateService_ListPublic_UsesCache(t *testing.T) {
	svc, db, mr := setupTemplateService(t)
	actor := service.Actor{UserID: 7, Role: models.RoleTeacher}

	_, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "Acik",
		Components: validComponents(),
		IsPublic:   true,
	}, actor)
	require.NoError(t, err)

	first, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, mr.Exists("optical_templates:public"))

	// Remove the row behind the cache; the warm cache still serves it.
	require.NoError(t, db.Where("1 = 1").Delete(&models.OpticalTemplate{}).Error)

	second, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
}

func TestOpticalTemplateService_Update_InvalidatesCache(t *testing.T) {
	svc, _, mr := setupTemplateService(t)
	actor := service.Actor{UserID: 7, Role: models.RoleTeacher}

	template, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "Acik",
		Components: validComponents(),
		IsPublic:   true,
	}, actor)
	require.NoError(t, err)

	_, err = svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists("optical_templates:public"))

	name := "Yeniden Adlandirildi"
	updated, err := svc.Update(context.Background(), template.ID, dto.UpdateOpticalTemplateRequest{Name: &name}, actor)
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.False(t, mr.Exists("optical_templates:public"))
}

func TestOpticalTemplateService_MutationPermissions(t *testing.T) {
	svc, db, _ := setupTemplateService(t)
	home := seedSchool(t, db, "Gazi Ilkokulu")
	other := seedSchool(t, db, "Fatih Ortaokulu")
	creator := seedTeacher(t, db, home, "sahip@example.com", true)

	owner := service.Actor{UserID: creator.ID, Role: models.RoleTeacher, SchoolID: &home.ID}
	stranger := service.Actor{UserID: creator.ID + 100, Role: models.RoleTeacher, SchoolID: &home.ID}
	foreignAdmin := service.Actor{UserID: creator.ID + 101, Role: models.RoleAdmin, SchoolID: &other.ID}
	homeAdmin := service.Actor{UserID: creator.ID + 102, Role: models.RoleAdmin, SchoolID: &home.ID}

	template, err := svc.Add(context.Background(), dto.AddOpticalTemplateRequest{
		Name:       "Acik",
		Components: validComponents(),
		IsPublic:   true,
	}, owner)
	require.NoError(t, err)

	name := "Baskasinin Denemesi"
	_, err = svc.Update(context.Background(), template.ID, dto.UpdateOpticalTemplateRequest{Name: &name}, stranger)
	require.ErrorIs(t, err, service.ErrTemplateForbidden)

	require.ErrorIs(t, svc.Delete(context.Background(), template.ID, stranger), service.ErrTemplateForbidden)

	// Admin moderation stops at the creator's school boundary.
	_, err = svc.Update(context.Background(), template.ID, dto.UpdateOpticalTemplateRequest{Name: &name}, foreignAdmin)
	require.ErrorIs(t, err, service.ErrTemplateForbidden)
	require.ErrorIs(t, svc.Delete(context.Background(), template.ID, foreignAdmin), service.ErrTemplateForbidden)

	require.NoError(t, svc.Delete(context.Background(), template.ID, homeAdmin))
	_, err = svc.Get(context.Background(), template.ID, owner)
	require.ErrorIs(t, err, service.ErrTemplateNotFound)
}
