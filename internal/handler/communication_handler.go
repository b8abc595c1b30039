package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/response"
)

// CommunicationHandler exposes messaging, announcement and
// notification endpoints.
type CommunicationHandler struct {
	communications *service.CommunicationService
}

// NewCommunicationHandler constructs CommunicationHandler.
func NewCommunicationHandler(communications *service.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{communications: communications}
}

// SendMessage godoc
// @Summary Send a direct message
// @Tags Communications
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Router /communications/messages [post]
func (h *CommunicationHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	message, err := h.communications.SendMessage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ConversationMessages godoc
// @Summary List a conversation's messages, oldest first
// @Tags Communications
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.Envelope
// @Router /communications/conversations/{id}/messages [get]
func (h *CommunicationHandler) ConversationMessages(c *gin.Context) {
	messages, err := h.communications.ConversationMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// UserConversations godoc
// @Summary List a user's conversations, most recent first
// @Tags Communications
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /communications/conversations [get]
func (h *CommunicationHandler) UserConversations(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	conversations, err := h.communications.UserConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conversations, nil)
}

// MarkConversationRead godoc
// @Summary Mark a conversation read for a user
// @Tags Communications
// @Param id path string true "Conversation ID"
// @Param userId query string true "User ID"
// @Success 204
// @Router /communications/conversations/{id}/read [post]
func (h *CommunicationHandler) MarkConversationRead(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	if err := h.communications.MarkConversationRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateAnnouncement godoc
// @Summary Publish an announcement
// @Tags Communications
// @Accept json
// @Produce json
// @Param payload body dto.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /communications/announcements [post]
func (h *CommunicationHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	announcement, err := h.communications.CreateAnnouncement(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// UserAnnouncements godoc
// @Summary List announcements visible to a user
// @Tags Communications
// @Produce json
// @Param userId query string true "User ID"
// @Param role query string true "User role"
// @Success 200 {object} response.Envelope
// @Router /communications/announcements [get]
func (h *CommunicationHandler) UserAnnouncements(c *gin.Context) {
	announcements, err := h.communications.UserAnnouncements(c.Request.Context(), c.Query("userId"), c.Query("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}

// MarkAnnouncementRead godoc
// @Summary Mark an announcement read for a user
// @Tags Communications
// @Param id path string true "Announcement ID"
// @Param userId query string true "User ID"
// @Success 204
// @Router /communications/announcements/{id}/read [post]
func (h *CommunicationHandler) MarkAnnouncementRead(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	if err := h.communications.MarkAnnouncementRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateNotification godoc
// @Summary Push a notification to a user
// @Tags Communications
// @Accept json
// @Produce json
// @Param payload body dto.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Router /communications/notifications [post]
func (h *CommunicationHandler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	notification, err := h.communications.CreateNotification(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification)
}

// UserNotifications godoc
// @Summary List a user's notifications, newest first
// @Tags Communications
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /communications/notifications [get]
func (h *CommunicationHandler) UserNotifications(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	notifications, err := h.communications.UserNotifications(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkNotificationRead godoc
// @Summary Mark one notification read
// @Tags Communications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /communications/notifications/{id}/read [post]
func (h *CommunicationHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.communications.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnreadCounts godoc
// @Summary Unread counters for a user
// @Tags Communications
// @Produce json
// @Param userId query string true "User ID"
// @Param role query string true "User role"
// @Success 200 {object} response.Envelope
// @Router /communications/unread [get]
func (h *CommunicationHandler) UnreadCounts(c *gin.Context) {
	counts, err := h.communications.UnreadCounts(c.Request.Context(), c.Query("userId"), c.Query("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// SearchMessages godoc
// @Summary Search a user's messages
// @Tags Communications
// @Produce json
// @Param userId query string true "User ID"
// @Param q query string true "Search query"
// @Success 200 {object} response.Envelope
// @Router /communications/messages/search [get]
func (h *CommunicationHandler) SearchMessages(c *gin.Context) {
	matches, err := h.communications.SearchMessages(c.Request.Context(), c.Query("userId"), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}
