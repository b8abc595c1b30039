package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

// SettingsService fronts the per-role settings documents. Every portal
// role owns one document; reads lazily initialise it with the role's
// default shape.
type SettingsService struct {
	store   *docstore.Store
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(store *docstore.Store, metrics *MetricsService, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{store: store, metrics: metrics, logger: logger}
}

// Get returns the settings document for a portal role.
func (s *SettingsService) Get(ctx context.Context, role string) (models.Document, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid portal role")
	}
	return s.store.Get(ctx, role)
}

// Update shallow-merges a patch into the whole settings document.
func (s *SettingsService) Update(ctx context.Context, role string, patch models.Document) (models.Document, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid portal role")
	}
	doc, err := s.store.Update(ctx, role, patch)
	if err != nil {
		return nil, err
	}
	s.recordWrite(role)
	return doc, nil
}

// UpdateSection patches one named section, leaving siblings untouched.
func (s *SettingsService) UpdateSection(ctx context.Context, role, section string, patch models.Document) (models.Document, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid portal role")
	}
	if section == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section is required")
	}
	doc, err := s.store.UpdateSection(ctx, role, section, patch)
	if err != nil {
		return nil, err
	}
	s.recordWrite(role)
	return doc, nil
}

// Reset restores the role's default settings document.
func (s *SettingsService) Reset(ctx context.Context, role string) (models.Document, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid portal role")
	}
	doc, err := s.store.Reset(ctx, role)
	if err != nil {
		return nil, err
	}
	s.recordWrite(role)
	return doc, nil
}

// ChangePassword stamps security.lastPasswordChange. Credential
// handling itself lives outside this service.
func (s *SettingsService) ChangePassword(ctx context.Context, role string) (models.Document, error) {
	if !models.ValidRole(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid portal role")
	}
	doc, err := s.store.UpdateSection(ctx, role, "security", models.Document{
		"lastPasswordChange": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	s.recordWrite(role)
	return doc, nil
}

// Subscribe registers a callback for settings changes of one role and
// returns the unsubscribe function.
func (s *SettingsService) Subscribe(role string, callback docstore.Subscriber) func() {
	return s.store.Subscribe(role, callback)
}

func (s *SettingsService) recordWrite(role string) {
	if s.metrics != nil {
		s.metrics.RecordStoreWrite(docstore.KindSettings)
	}
	s.logger.Debug("settings updated", zap.String("role", role))
}
