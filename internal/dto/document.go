package dto

import "github.com/imrann-dev/school-erp-api/internal/models"

// UpdateDocumentRequest shallow-merges a patch into a whole document.
type UpdateDocumentRequest struct {
	Patch models.Document `json:"patch" validate:"required"`
}

// UpdateSectionRequest shallow-merges a patch into one named section.
type UpdateSectionRequest struct {
	Patch models.Document `json:"patch" validate:"required"`
}

// SaveTeacherTimetableRequest upserts one teacher's weekly schedule.
type SaveTeacherTimetableRequest struct {
	TeacherID   string                   `json:"teacher_id" validate:"required"`
	TeacherName string                   `json:"teacher_name" validate:"required"`
	Schedule    []map[string]interface{} `json:"schedule" validate:"required"`
}

// SaveClassTimetableRequest upserts one class's weekly schedule.
type SaveClassTimetableRequest struct {
	Schedule []map[string]interface{} `json:"schedule" validate:"required"`
}

// SendMessageRequest posts a direct message between two portal users.
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id" validate:"required"`
	SenderName     string `json:"sender_name" validate:"required"`
	SenderRole     string `json:"sender_role" validate:"required"`
	RecipientID    string `json:"recipient_id" validate:"required"`
	RecipientName  string `json:"recipient_name"`
	RecipientRole  string `json:"recipient_role"`
	Subject        string `json:"subject"`
	Text           string `json:"text" validate:"required"`
}

// CreateAnnouncementRequest publishes an announcement to a portal
// audience ("all", "students", "teachers", "parents") or to an
// explicit list of user IDs.
type CreateAnnouncementRequest struct {
	Title      string      `json:"title" validate:"required"`
	Content    string      `json:"content" validate:"required"`
	AuthorID   string      `json:"author_id" validate:"required"`
	AuthorName string      `json:"author_name"`
	AuthorRole string      `json:"author_role"`
	Recipients interface{} `json:"recipients"`
	Priority   string      `json:"priority"`
	Category   string      `json:"category"`
}

// CreateNotificationRequest pushes a per-user notification.
type CreateNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}
