package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

// TimetableService manages the school timetable document. Teacher
// schedules are keyed by teacher id, class schedules by class name;
// an upsert preserves the entry's id and createdAt.
type TimetableService struct {
	store     *docstore.Store
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// TimetableStats summarises the stored timetables.
type TimetableStats struct {
	TotalTeachers int `json:"total_teachers"`
	TotalClasses  int `json:"total_classes"`
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(store *docstore.Store, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{store: store, validator: validate, metrics: metrics, logger: logger}
}

// GetAll returns the whole timetable document.
func (s *TimetableService) GetAll(ctx context.Context) (models.Document, error) {
	return s.store.Get(ctx, docstore.TimetableKey)
}

// SaveTeacherTimetable adds or replaces one teacher's schedule.
func (s *TimetableService) SaveTeacherTimetable(ctx context.Context, req dto.SaveTeacherTimetableRequest) (models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed")
	}
	entry, err := s.upsert(ctx, "teachers", "teacherId", req.TeacherID, models.Document{
		"teacherId":   req.TeacherID,
		"teacherName": req.TeacherName,
		"schedule":    req.Schedule,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("teacher timetable saved", zap.String("teacher_id", req.TeacherID))
	return entry, nil
}

// SaveClassTimetable adds or replaces one class's schedule.
func (s *TimetableService) SaveClassTimetable(ctx context.Context, className string, req dto.SaveClassTimetableRequest) (models.Document, error) {
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed")
	}
	entry, err := s.upsert(ctx, "students", "className", className, models.Document{
		"className": className,
		"schedule":  req.Schedule,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("class timetable saved", zap.String("class", className))
	return entry, nil
}

// GetTeacherTimetable returns one teacher's schedule entry.
func (s *TimetableService) GetTeacherTimetable(ctx context.Context, teacherID string) (models.Document, error) {
	return s.find(ctx, "teachers", "teacherId", teacherID)
}

// GetClassTimetable returns one class's schedule entry.
func (s *TimetableService) GetClassTimetable(ctx context.Context, className string) (models.Document, error) {
	return s.find(ctx, "students", "className", className)
}

// ListTeacherTimetables returns every teacher schedule entry.
func (s *TimetableService) ListTeacherTimetables(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, "teachers")
}

// ListClassTimetables returns every class schedule entry.
func (s *TimetableService) ListClassTimetables(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, "students")
}

// DeleteTeacherTimetable removes one teacher's schedule.
func (s *TimetableService) DeleteTeacherTimetable(ctx context.Context, teacherID string) error {
	return s.remove(ctx, "teachers", "teacherId", teacherID)
}

// DeleteClassTimetable removes one class's schedule.
func (s *TimetableService) DeleteClassTimetable(ctx context.Context, className string) error {
	return s.remove(ctx, "students", "className", className)
}

// Stats counts stored teacher and class timetables.
func (s *TimetableService) Stats(ctx context.Context) (*TimetableStats, error) {
	doc, err := s.store.Get(ctx, docstore.TimetableKey)
	if err != nil {
		return nil, err
	}
	return &TimetableStats{
		TotalTeachers: len(entryList(doc, "teachers")),
		TotalClasses:  len(entryList(doc, "students")),
	}, nil
}

// Subscribe registers a callback for timetable changes and returns the
// unsubscribe function.
func (s *TimetableService) Subscribe(callback docstore.Subscriber) func() {
	return s.store.Subscribe(docstore.TimetableKey, callback)
}

func (s *TimetableService) upsert(ctx context.Context, list, field, value string, entry models.Document) (models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.TimetableKey)
	if err != nil {
		return nil, err
	}
	entries := entryList(doc, list)
	now := time.Now().UTC().Format(time.RFC3339)
	entry["updatedAt"] = now

	idx := indexOf(entries, field, value)
	if idx >= 0 {
		entry["id"] = entries[idx]["id"]
		entry["createdAt"] = entries[idx]["createdAt"]
		entries[idx] = entry
	} else {
		entry["id"] = uuid.New().String()
		entry["createdAt"] = now
		entries = append(entries, entry)
	}

	if _, err := s.store.Update(ctx, docstore.TimetableKey, models.Document{list: entries}); err != nil {
		return nil, err
	}
	s.recordWrite()
	return entry, nil
}

func (s *TimetableService) find(ctx context.Context, list, field, value string) (models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.TimetableKey)
	if err != nil {
		return nil, err
	}
	entries := entryList(doc, list)
	if idx := indexOf(entries, field, value); idx >= 0 {
		return entries[idx], nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
}

func (s *TimetableService) list(ctx context.Context, list string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.TimetableKey)
	if err != nil {
		return nil, err
	}
	return entryList(doc, list), nil
}

func (s *TimetableService) remove(ctx context.Context, list, field, value string) error {
	doc, err := s.store.Get(ctx, docstore.TimetableKey)
	if err != nil {
		return err
	}
	entries := entryList(doc, list)
	idx := indexOf(entries, field, value)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	entries = append(entries[:idx], entries[idx+1:]...)
	if _, err := s.store.Update(ctx, docstore.TimetableKey, models.Document{list: entries}); err != nil {
		return err
	}
	s.recordWrite()
	return nil
}

func (s *TimetableService) recordWrite() {
	if s.metrics != nil {
		s.metrics.RecordStoreWrite(docstore.KindTimetable)
	}
}

// entryList coerces the JSON-decoded list under key into documents.
func entryList(doc models.Document, key string) []models.Document {
	raw, ok := doc[key].([]interface{})
	if !ok {
		return nil
	}
	entries := make([]models.Document, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			entries = append(entries, models.Document(m))
		}
	}
	return entries
}

func indexOf(entries []models.Document, field, value string) int {
	for i, entry := range entries {
		if entry[field] == value {
			return i
		}
	}
	return -1
}
