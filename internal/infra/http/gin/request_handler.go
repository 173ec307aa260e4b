package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"carryon/internal/app/dto"
	requestsvc "carryon/internal/app/services/requests"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	"carryon/internal/infra/obs"
)

type RequestHandler struct {
	Service *requestsvc.Service
	Logger  *slog.Logger
}

type createRequestBody struct {
	SenderPostID    string  `json:"sender_post_id"`
	TravellerPostID string  `json:"traveller_post_id"`
	Message         string  `json:"message"`
	ProposedPrice   float64 `json:"proposed_price"`
}

type updateRequestBody struct {
	Status      string  `json:"status"`
	AgreedPrice float64 `json:"agreed_price"`
}

func (h RequestHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "requests service unavailable"})
		return
	}
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.SenderPostID == "" || req.TravellerPostID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender_post_id and traveller_post_id are required"})
		return
	}
	detail, err := h.Service.Create(c.Request.Context(), user.UserID(), requestsvc.CreateParams{
		SenderPostID:    domainpost.ID(req.SenderPostID),
		TravellerPostID: domainpost.ID(req.TravellerPostID),
		Message:         req.Message,
		ProposedPrice:   req.ProposedPrice,
	})
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	obs.RequestsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, mapRequestDetail(detail))
}

func (h RequestHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "requests service unavailable"})
		return
	}
	params := domainrequest.ListParams{
		UserID: user.UserID(),
		Box:    domainrequest.Box(c.Query("box")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domainrequest.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		params.Status = status
	}
	page, err := h.Service.List(c.Request.Context(), params)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	views := make([]dto.RequestView, 0, len(page.Requests))
	for i := range page.Requests {
		views = append(views, mapRequestDetail(&page.Requests[i]))
	}
	c.JSON(http.StatusOK, dto.RequestCollection{
		Requests:   views,
		Pagination: dto.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h RequestHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "requests service unavailable"})
		return
	}
	detail, err := h.Service.Get(c.Request.Context(), user.UserID(), domainrequest.ID(c.Param("id")))
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapRequestDetail(detail))
}

func (h RequestHandler) UpdateStatus(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "requests service unavailable"})
		return
	}
	var req updateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	status, ok := domainrequest.ParseStatus(req.Status)
	if !ok || status == domainrequest.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown target status"})
		return
	}
	detail, err := h.Service.UpdateStatus(c.Request.Context(), user.UserID(), domainrequest.ID(c.Param("id")), requestsvc.UpdateParams{
		Status:      status,
		AgreedPrice: req.AgreedPrice,
	})
	if err != nil {
		h.respondRequestError(c, err)
		return
	}
	obs.RequestTransitionsTotal.WithLabelValues(string(detail.Request.Status)).Inc()
	c.JSON(http.StatusOK, mapRequestDetail(detail))
}

func (h RequestHandler) respondRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainrequest.ErrNotFound),
		errors.Is(err, domainpost.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainrequest.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "a request already exists between these posts"})
	case errors.Is(err, domainrequest.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "transition not allowed from the current status"})
	case errors.Is(err, domainrequest.ErrReceiverOnly),
		errors.Is(err, domainrequest.ErrSenderOnly),
		errors.Is(err, domainrequest.ErrParticipantOnly),
		errors.Is(err, domainrequest.ErrSelfRequest):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	default:
		if h.Logger != nil {
			h.Logger.Error("request operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func mapRequestDetail(detail *requestsvc.Detail) dto.RequestView {
	if detail == nil {
		return dto.RequestView{}
	}
	return dto.MapRequest(
		detail.Request,
		detail.Sender,
		detail.Receiver,
		detail.SenderPost,
		detail.TravellerPost,
		string(detail.ConversationID),
	)
}

var _ RequestsHTTP = (*RequestHandler)(nil)
