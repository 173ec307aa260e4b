package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"carryon/internal/app/dto"
	chatsvc "carryon/internal/app/services/chat"
	domainchat "carryon/internal/domain/chat"
	"carryon/internal/infra/obs"
)

type ChatHandler struct {
	Service *chatsvc.Service
	Logger  *slog.Logger
}

type postMessageBody struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func (h ChatHandler) ListConversations(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service unavailable"})
		return
	}
	page, err := h.Service.ListConversations(c.Request.Context(), user.UserID(), chatsvc.ListParams{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	views := make([]dto.ConversationView, 0, len(page.Conversations))
	for _, item := range page.Conversations {
		views = append(views, dto.MapConversation(
			item.Conversation,
			string(item.RequestStatus),
			item.Other,
			item.Latest,
			item.LatestSender,
		))
	}
	c.JSON(http.StatusOK, dto.ConversationCollection{
		Conversations: views,
		Pagination:    dto.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h ChatHandler) GetConversation(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service unavailable"})
		return
	}
	detail, err := h.Service.GetConversation(c.Request.Context(), user.UserID(), domainchat.ConversationID(c.Param("id")))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapConversation(
		detail.Conversation,
		string(detail.RequestStatus),
		detail.Other,
		detail.Latest,
		detail.LatestSender,
	))
}

func (h ChatHandler) ListMessages(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service unavailable"})
		return
	}
	page, err := h.Service.ListMessages(c.Request.Context(), user.UserID(), domainchat.ConversationID(c.Param("id")), chatsvc.ListParams{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	views := make([]dto.MessageView, 0, len(page.Messages))
	for _, item := range page.Messages {
		views = append(views, dto.MapMessage(item.Message, item.Sender))
	}
	c.JSON(http.StatusOK, dto.MessageCollection{
		Messages:   views,
		Pagination: dto.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h ChatHandler) PostMessage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service unavailable"})
		return
	}
	var req postMessageBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	msgType, ok := domainchat.ParseMessageType(req.MessageType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message type"})
		return
	}
	// Clients send TEXT only; system entries come from the lifecycle.
	if msgType != domainchat.TypeText {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only text messages can be sent"})
		return
	}
	detail, err := h.Service.PostMessage(c.Request.Context(), user.UserID(), chatsvc.PostMessageParams{
		ConversationID: domainchat.ConversationID(c.Param("id")),
		Content:        req.Content,
		Type:           msgType,
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	obs.MessagesSentTotal.WithLabelValues(string(detail.Message.Type)).Inc()
	c.JSON(http.StatusCreated, dto.MapMessage(detail.Message, detail.Sender))
}

func (h ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainchat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, domainchat.ErrEmptyContent),
		errors.Is(err, domainchat.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainchat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	default:
		if h.Logger != nil {
			h.Logger.Error("chat operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ChatHTTP = (*ChatHandler)(nil)
