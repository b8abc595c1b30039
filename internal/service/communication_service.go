package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

// CommunicationService manages direct messages, conversations,
// announcements and per-user notifications in one shared document.
type CommunicationService struct {
	store     *docstore.Store
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// UnreadCounts breaks unread items down per surface.
type UnreadCounts struct {
	Messages      int `json:"messages"`
	Announcements int `json:"announcements"`
	Notifications int `json:"notifications"`
	Total         int `json:"total"`
}

// NewCommunicationService constructs a CommunicationService.
func NewCommunicationService(store *docstore.Store, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *CommunicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunicationService{store: store, validator: validate, metrics: metrics, logger: logger}
}

// SendMessage appends a direct message and upserts its conversation,
// bumping the recipient's unread count.
func (s *CommunicationService) SendMessage(ctx context.Context, req dto.SendMessageRequest) (models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed")
	}
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()
	}
	message := models.Document{
		"id":             uuid.New().String(),
		"conversationId": conversationID,
		"senderId":       req.SenderID,
		"senderName":     req.SenderName,
		"senderRole":     req.SenderRole,
		"recipientId":    req.RecipientID,
		"recipientName":  req.RecipientName,
		"recipientRole":  req.RecipientRole,
		"subject":        req.Subject,
		"text":           req.Text,
		"timestamp":      now,
		"read":           false,
		"type":           "direct",
	}

	messages := append(entryList(doc, "messages"), message)
	conversations := entryList(doc, "conversations")

	idx := indexOf(conversations, "id", conversationID)
	if idx >= 0 {
		conv := conversations[idx]
		conv["lastMessage"] = req.Text
		conv["lastMessageTime"] = now
		counts := unreadMap(conv)
		counts[req.RecipientID] = asInt(counts[req.RecipientID]) + 1
		conv["unreadCount"] = counts
	} else {
		conversations = append(conversations, models.Document{
			"id":              conversationID,
			"participants":    []string{req.SenderID, req.RecipientID},
			"lastMessage":     req.Text,
			"lastMessageTime": now,
			"unreadCount":     map[string]interface{}{req.RecipientID: 1, req.SenderID: 0},
		})
	}

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"messages":      messages,
		"conversations": conversations,
	}); err != nil {
		return nil, err
	}
	s.recordWrite()
	s.logger.Info("message sent",
		zap.String("conversation_id", conversationID),
		zap.String("sender_id", req.SenderID),
		zap.String("recipient_id", req.RecipientID))
	return message, nil
}

// ConversationMessages returns a conversation's messages oldest first.
func (s *CommunicationService) ConversationMessages(ctx context.Context, conversationID string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}
	messages := make([]models.Document, 0)
	for _, m := range entryList(doc, "messages") {
		if m["conversationId"] == conversationID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return asString(messages[i]["timestamp"]) < asString(messages[j]["timestamp"])
	})
	return messages, nil
}

// UserConversations returns a user's conversations, most recent first,
// with that user's unread count flattened onto each entry.
func (s *CommunicationService) UserConversations(ctx context.Context, userID string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}
	conversations := make([]models.Document, 0)
	for _, conv := range entryList(doc, "conversations") {
		if !hasParticipant(conv, userID) {
			continue
		}
		entry := models.Document{}
		for k, v := range conv {
			entry[k] = v
		}
		entry["unreadCount"] = asInt(unreadMap(conv)[userID])
		conversations = append(conversations, entry)
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return asString(conversations[i]["lastMessageTime"]) > asString(conversations[j]["lastMessageTime"])
	})
	return conversations, nil
}

// MarkConversationRead marks the user's received messages in the
// conversation as read and zeroes their unread count.
func (s *CommunicationService) MarkConversationRead(ctx context.Context, conversationID, userID string) error {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return err
	}
	messages := entryList(doc, "messages")
	for _, m := range messages {
		if m["conversationId"] == conversationID && m["recipientId"] == userID {
			m["read"] = true
		}
	}
	conversations := entryList(doc, "conversations")
	idx := indexOf(conversations, "id", conversationID)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "conversation not found")
	}
	counts := unreadMap(conversations[idx])
	counts[userID] = 0
	conversations[idx]["unreadCount"] = counts

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"messages":      messages,
		"conversations": conversations,
	}); err != nil {
		return err
	}
	s.recordWrite()
	return nil
}

// CreateAnnouncement publishes an announcement, newest first.
func (s *CommunicationService) CreateAnnouncement(ctx context.Context, req dto.CreateAnnouncementRequest) (models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed")
	}
	recipients, ok := normalizeAudience(req.Recipients)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recipients must be an audience string or a list of user IDs")
	}
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}

	announcement := models.Document{
		"id":         uuid.New().String(),
		"title":      req.Title,
		"content":    req.Content,
		"authorId":   req.AuthorID,
		"authorName": req.AuthorName,
		"authorRole": req.AuthorRole,
		"recipients": recipients,
		"priority":   defaultString(req.Priority, "medium"),
		"category":   defaultString(req.Category, "General"),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"read":       []string{},
	}
	announcements := append([]models.Document{announcement}, entryList(doc, "announcements")...)

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"announcements": announcements,
	}); err != nil {
		return nil, err
	}
	s.recordWrite()
	s.logger.Info("announcement created",
		zap.String("title", req.Title),
		zap.Any("recipients", recipients))
	return announcement, nil
}

// UserAnnouncements returns announcements addressed to the user's
// role or to everyone, most recent first.
func (s *CommunicationService) UserAnnouncements(ctx context.Context, userID, role string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}
	announcements := make([]models.Document, 0)
	for _, a := range entryList(doc, "announcements") {
		if announcementTargets(a, userID, role) {
			announcements = append(announcements, a)
		}
	}
	sort.SliceStable(announcements, func(i, j int) bool {
		return asString(announcements[i]["timestamp"]) > asString(announcements[j]["timestamp"])
	})
	return announcements, nil
}

// MarkAnnouncementRead records the user in the announcement's read
// list. Marking twice is a no-op.
func (s *CommunicationService) MarkAnnouncementRead(ctx context.Context, announcementID, userID string) error {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return err
	}
	announcements := entryList(doc, "announcements")
	idx := indexOf(announcements, "id", announcementID)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}
	readers := stringList(announcements[idx]["read"])
	for _, id := range readers {
		if id == userID {
			return nil
		}
	}
	announcements[idx]["read"] = append(readers, userID)

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"announcements": announcements,
	}); err != nil {
		return err
	}
	s.recordWrite()
	return nil
}

// CreateNotification pushes a notification to one user, newest first.
func (s *CommunicationService) CreateNotification(ctx context.Context, req dto.CreateNotificationRequest) (models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed")
	}
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}

	notification := models.Document{
		"id":        uuid.New().String(),
		"userId":    req.UserID,
		"title":     req.Title,
		"message":   req.Message,
		"type":      defaultString(req.Type, "info"),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"read":      false,
		"link":      req.Link,
	}
	notifications := append([]models.Document{notification}, entryList(doc, "notifications")...)

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"notifications": notifications,
	}); err != nil {
		return nil, err
	}
	s.recordWrite()
	return notification, nil
}

// UserNotifications returns one user's notifications, newest first.
func (s *CommunicationService) UserNotifications(ctx context.Context, userID string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}
	notifications := make([]models.Document, 0)
	for _, n := range entryList(doc, "notifications") {
		if n["userId"] == userID {
			notifications = append(notifications, n)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return asString(notifications[i]["timestamp"]) > asString(notifications[j]["timestamp"])
	})
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (s *CommunicationService) MarkNotificationRead(ctx context.Context, notificationID string) error {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return err
	}
	notifications := entryList(doc, "notifications")
	idx := indexOf(notifications, "id", notificationID)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	notifications[idx]["read"] = true

	if _, err := s.store.Update(ctx, docstore.CommunicationsKey, models.Document{
		"notifications": notifications,
	}); err != nil {
		return err
	}
	s.recordWrite()
	return nil
}

// UnreadCounts totals unread messages, announcements and
// notifications for one user.
func (s *CommunicationService) UnreadCounts(ctx context.Context, userID, role string) (*UnreadCounts, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}

	counts := &UnreadCounts{}
	for _, conv := range entryList(doc, "conversations") {
		if hasParticipant(conv, userID) {
			counts.Messages += asInt(unreadMap(conv)[userID])
		}
	}
	for _, a := range entryList(doc, "announcements") {
		if !announcementTargets(a, userID, role) {
			continue
		}
		seen := false
		for _, id := range stringList(a["read"]) {
			if id == userID {
				seen = true
				break
			}
		}
		if !seen {
			counts.Announcements++
		}
	}
	for _, n := range entryList(doc, "notifications") {
		if n["userId"] == userID && n["read"] != true {
			counts.Notifications++
		}
	}
	counts.Total = counts.Messages + counts.Announcements + counts.Notifications
	return counts, nil
}

// SearchMessages matches the user's sent and received messages against
// a case-insensitive query over text, subject and participant names.
func (s *CommunicationService) SearchMessages(ctx context.Context, userID, query string) ([]models.Document, error) {
	doc, err := s.store.Get(ctx, docstore.CommunicationsKey)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	matches := make([]models.Document, 0)
	for _, m := range entryList(doc, "messages") {
		if m["senderId"] != userID && m["recipientId"] != userID {
			continue
		}
		if strings.Contains(strings.ToLower(asString(m["text"])), query) ||
			strings.Contains(strings.ToLower(asString(m["subject"])), query) ||
			strings.Contains(strings.ToLower(asString(m["senderName"])), query) ||
			strings.Contains(strings.ToLower(asString(m["recipientName"])), query) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// Subscribe registers a callback for communication changes and returns
// the unsubscribe function.
func (s *CommunicationService) Subscribe(callback docstore.Subscriber) func() {
	return s.store.Subscribe(docstore.CommunicationsKey, callback)
}

func (s *CommunicationService) recordWrite() {
	if s.metrics != nil {
		s.metrics.RecordStoreWrite(docstore.KindCommunications)
	}
}

func announcementTargets(a models.Document, userID, role string) bool {
	switch recipients := a["recipients"].(type) {
	case string:
		return recipients == "all" || recipients == role+"s"
	case []string:
		for _, id := range recipients {
			if id == userID {
				return true
			}
		}
	case []interface{}:
		for _, id := range recipients {
			if id == userID {
				return true
			}
		}
	}
	return false
}

// normalizeAudience coerces a request's recipients field into either
// an audience string or a list of user IDs. An empty value means the
// whole portal.
func normalizeAudience(value interface{}) (interface{}, bool) {
	switch recipients := value.(type) {
	case nil:
		return "all", true
	case string:
		if recipients == "" {
			return "all", true
		}
		return recipients, true
	case []string:
		if len(recipients) == 0 {
			return "all", true
		}
		return recipients, true
	case []interface{}:
		if len(recipients) == 0 {
			return "all", true
		}
		ids := stringList(recipients)
		if len(ids) != len(recipients) {
			return nil, false
		}
		return ids, true
	}
	return nil, false
}

func hasParticipant(conv models.Document, userID string) bool {
	switch participants := conv["participants"].(type) {
	case []interface{}:
		for _, p := range participants {
			if p == userID {
				return true
			}
		}
	case []string:
		for _, p := range participants {
			if p == userID {
				return true
			}
		}
	}
	return false
}

func unreadMap(conv models.Document) map[string]interface{} {
	if m, ok := conv["unreadCount"].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func stringList(value interface{}) []string {
	switch list := value.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func asInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return s
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
