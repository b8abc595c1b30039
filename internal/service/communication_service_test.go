package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imrann-dev/school-erp-api/internal/docstore"
	"github.com/imrann-dev/school-erp-api/internal/dto"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

func newCommunicationService(t *testing.T) *CommunicationService {
	t.Helper()
	store := docstore.New(docstore.KindCommunications, docstore.NewMemoryPersistence(), docstore.CommunicationsDefaults, zap.NewNop())
	return NewCommunicationService(store, validator.New(), nil, zap.NewNop())
}

func directMessage(text string) dto.SendMessageRequest {
	return dto.SendMessageRequest{
		SenderID:      "teacher_1",
		SenderName:    "Sarah Johnson",
		SenderRole:    "teacher",
		RecipientID:   "student_1",
		RecipientName: "Mike Wilson",
		RecipientRole: "student",
		Subject:       "Homework",
		Text:          text,
	}
}

func TestSendMessageCreatesConversation(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	message, err := svc.SendMessage(ctx, directMessage("Please submit your assignment"))
	require.NoError(t, err)
	conversationID, _ := message["conversationId"].(string)
	require.NotEmpty(t, conversationID)

	conversations, err := svc.UserConversations(ctx, "student_1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "Please submit your assignment", conversations[0]["lastMessage"])
	assert.Equal(t, 1, conversations[0]["unreadCount"])

	sender, err := svc.UserConversations(ctx, "teacher_1")
	require.NoError(t, err)
	require.Len(t, sender, 1)
	assert.Equal(t, 0, sender[0]["unreadCount"])
}

func TestSendMessageBumpsUnreadOnExistingConversation(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, directMessage("one"))
	require.NoError(t, err)
	conversationID, _ := first["conversationId"].(string)

	req := directMessage("two")
	req.ConversationID = conversationID
	_, err = svc.SendMessage(ctx, req)
	require.NoError(t, err)

	conversations, err := svc.UserConversations(ctx, "student_1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0]["unreadCount"])
	assert.Equal(t, "two", conversations[0]["lastMessage"])

	messages, err := svc.ConversationMessages(ctx, conversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0]["text"])
}

func TestMarkConversationRead(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	message, err := svc.SendMessage(ctx, directMessage("hello"))
	require.NoError(t, err)
	conversationID, _ := message["conversationId"].(string)

	require.NoError(t, svc.MarkConversationRead(ctx, conversationID, "student_1"))

	conversations, err := svc.UserConversations(ctx, "student_1")
	require.NoError(t, err)
	assert.Equal(t, 0, conversations[0]["unreadCount"])

	messages, err := svc.ConversationMessages(ctx, conversationID)
	require.NoError(t, err)
	assert.Equal(t, true, messages[0]["read"])
}

func TestAnnouncementAudienceAndReadTracking(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	created, err := svc.CreateAnnouncement(ctx, dto.CreateAnnouncementRequest{
		Title:      "Mid-term Exam Schedule",
		Content:    "Exams start Dec 20",
		AuthorID:   "admin_1",
		AuthorName: "Admin",
		AuthorRole: "admin",
		Recipients: "parents",
		Priority:   "high",
		Category:   "Academic",
	})
	require.NoError(t, err)
	announcementID, _ := created["id"].(string)

	parents, err := svc.UserAnnouncements(ctx, "parent_1", "parent")
	require.NoError(t, err)
	require.Len(t, parents, 1)

	students, err := svc.UserAnnouncements(ctx, "student_1", "student")
	require.NoError(t, err)
	assert.Empty(t, students)

	counts, err := svc.UnreadCounts(ctx, "parent_1", "parent")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Announcements)

	require.NoError(t, svc.MarkAnnouncementRead(ctx, announcementID, "parent_1"))
	require.NoError(t, svc.MarkAnnouncementRead(ctx, announcementID, "parent_1"))

	counts, err = svc.UnreadCounts(ctx, "parent_1", "parent")
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Announcements)
}

func TestAnnouncementToExplicitRecipients(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	_, err := svc.CreateAnnouncement(ctx, dto.CreateAnnouncementRequest{
		Title:      "Fee Reminder",
		Content:    "Tuition fee due Friday",
		AuthorID:   "admin_1",
		AuthorRole: "admin",
		Recipients: []string{"student_1"},
	})
	require.NoError(t, err)

	targeted, err := svc.UserAnnouncements(ctx, "student_1", "student")
	require.NoError(t, err)
	require.Len(t, targeted, 1)
	assert.Equal(t, "Fee Reminder", targeted[0]["title"])

	others, err := svc.UserAnnouncements(ctx, "student_2", "student")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestAnnouncementRejectsMalformedRecipients(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	for _, recipients := range []interface{}{42, []interface{}{"student_1", 7}} {
		_, err := svc.CreateAnnouncement(ctx, dto.CreateAnnouncementRequest{
			Title:      "Broken Audience",
			Content:    "should not publish",
			AuthorID:   "admin_1",
			Recipients: recipients,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	all, err := svc.UserAnnouncements(ctx, "student_1", "student")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNotificationsPerUser(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	created, err := svc.CreateNotification(ctx, dto.CreateNotificationRequest{
		UserID:  "parent_1",
		Title:   "Fee Payment Reminder",
		Message: "Quarterly fee payment is due on January 20th",
		Link:    "/fees",
	})
	require.NoError(t, err)
	assert.Equal(t, "info", created["type"])

	notifications, err := svc.UserNotifications(ctx, "parent_1")
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	other, err := svc.UserNotifications(ctx, "student_1")
	require.NoError(t, err)
	assert.Empty(t, other)

	notificationID, _ := created["id"].(string)
	require.NoError(t, svc.MarkNotificationRead(ctx, notificationID))

	counts, err := svc.UnreadCounts(ctx, "parent_1", "parent")
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Notifications)
}

func TestUnreadCountsTotals(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, directMessage("hello"))
	require.NoError(t, err)
	_, err = svc.CreateAnnouncement(ctx, dto.CreateAnnouncementRequest{
		Title:    "Holiday",
		Content:  "School closed Friday",
		AuthorID: "admin_1",
	})
	require.NoError(t, err)
	_, err = svc.CreateNotification(ctx, dto.CreateNotificationRequest{
		UserID:  "student_1",
		Title:   "Grade posted",
		Message: "Math: 92/100",
	})
	require.NoError(t, err)

	counts, err := svc.UnreadCounts(ctx, "student_1", "student")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Messages)
	assert.Equal(t, 1, counts.Announcements)
	assert.Equal(t, 1, counts.Notifications)
	assert.Equal(t, 3, counts.Total)
}

func TestSearchMessagesScopedToUser(t *testing.T) {
	svc := newCommunicationService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, directMessage("assignment due tomorrow"))
	require.NoError(t, err)

	matches, err := svc.SearchMessages(ctx, "student_1", "ASSIGNMENT")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	none, err := svc.SearchMessages(ctx, "parent_1", "assignment")
	require.NoError(t, err)
	assert.Empty(t, none)
}
