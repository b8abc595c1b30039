package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/models"
)

func newSettingsService(t *testing.T) *SettingsService {
	t.Helper()
	store := docstore.New(docstore.KindSettings, docstore.NewMemoryPersistence(), docstore.SettingsDefaults, zap.NewNop())
	return NewSettingsService(store, nil, zap.NewNop())
}

func TestSettingsGetInitializesRoleDefaults(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	student, err := svc.Get(ctx, models.RoleStudent)
	require.NoError(t, err)
	profile, ok := student["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Student", profile["role"])

	admin, err := svc.Get(ctx, models.RoleAdmin)
	require.NoError(t, err)
	general, ok := admin["general"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ABC International School", general["schoolName"])
	assert.NotContains(t, admin, "profile")
}

func TestSettingsRejectsUnknownRole(t *testing.T) {
	svc := newSettingsService(t)

	_, err := svc.Get(context.Background(), "janitor")
	require.Error(t, err)
	_, err = svc.Update(context.Background(), "", models.Document{"x": 1})
	require.Error(t, err)
}

func TestSettingsUpdateSectionLeavesSiblings(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	doc, err := svc.UpdateSection(ctx, models.RoleTeacher, "profile", models.Document{
		"name":       "Sarah Johnson",
		"department": "Mathematics",
	})
	require.NoError(t, err)

	profile := doc["profile"].(map[string]interface{})
	assert.Equal(t, "Sarah Johnson", profile["name"])
	assert.Equal(t, "Mathematics", profile["department"])
	assert.Contains(t, profile, "employeeId")

	notifications := doc["notifications"].(map[string]interface{})
	assert.Equal(t, true, notifications["parentMessages"])
}

func TestSettingsResetRestoresDefaults(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	_, err := svc.UpdateSection(ctx, models.RoleParent, "profile", models.Document{"name": "John Parent"})
	require.NoError(t, err)

	doc, err := svc.Reset(ctx, models.RoleParent)
	require.NoError(t, err)
	profile := doc["profile"].(map[string]interface{})
	assert.Equal(t, "", profile["name"])
}

func TestSettingsChangePasswordStampsSecurity(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	doc, err := svc.ChangePassword(ctx, models.RoleStudent)
	require.NoError(t, err)
	security := doc["security"].(map[string]interface{})
	assert.NotEmpty(t, security["lastPasswordChange"])
	assert.Contains(t, security, "twoFactorAuth")

	updated, err := svc.Get(ctx, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, security["lastPasswordChange"], updated["security"].(map[string]interface{})["lastPasswordChange"])
}

func TestSettingsUpdateNotifiesSubscribersPerRole(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	studentEvents := 0
	teacherEvents := 0
	defer svc.Subscribe(models.RoleStudent, func(docstore.Event) { studentEvents++ })()
	defer svc.Subscribe(models.RoleTeacher, func(docstore.Event) { teacherEvents++ })()

	_, err := svc.Update(ctx, models.RoleStudent, models.Document{"theme": "dark"})
	require.NoError(t, err)

	assert.Equal(t, 1, studentEvents)
	assert.Equal(t, 0, teacherEvents)
}
