package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"carryon/internal/app/dto"
	postsvc "carryon/internal/app/services/posts"
	domainpost "carryon/internal/domain/post"
	domainuser "carryon/internal/domain/user"
	"carryon/internal/infra/obs"
)

const maxPhotoSize = 10 << 20

type PostHandler struct {
	Service *postsvc.Service
	Logger  *slog.Logger
}

type createTravellerPostRequest struct {
	DepartureCountry string    `json:"departure_country"`
	DepartureCity    string    `json:"departure_city"`
	DepartureAirport string    `json:"departure_airport"`
	DepartureDate    time.Time `json:"departure_date"`
	DepartureTime    string    `json:"departure_time"`
	ArrivalCountry   string    `json:"arrival_country"`
	ArrivalCity      string    `json:"arrival_city"`
	ArrivalAirport   string    `json:"arrival_airport"`
	ArrivalDate      time.Time `json:"arrival_date"`
	ArrivalTime      string    `json:"arrival_time"`
	AvailableWeight  float64   `json:"available_weight"`
	PricePerKg       float64   `json:"price_per_kg"`
	SpecialNotes     string    `json:"special_notes"`
	PickupLocation   string    `json:"pickup_location"`
	DeliveryLocation string    `json:"delivery_location"`
}

type createSenderPostRequest struct {
	OriginCountry      string  `json:"origin_country"`
	OriginCity         string  `json:"origin_city"`
	OriginAddress      string  `json:"origin_address"`
	DestinationCountry string  `json:"destination_country"`
	DestinationCity    string  `json:"destination_city"`
	DestinationAddress string  `json:"destination_address"`
	ItemCategory       string  `json:"item_category"`
	ItemDescription    string  `json:"item_description"`
	Weight             float64 `json:"weight"`
	MaxPrice           float64 `json:"max_price"`
	SpecialNotes       string  `json:"special_notes"`
	PickupNotes        string  `json:"pickup_notes"`
	DeliveryNotes      string  `json:"delivery_notes"`
}

func (h PostHandler) CreateTraveller(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	var req createTravellerPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	detail, err := h.Service.CreateTraveller(c.Request.Context(), user.UserID(), domainpost.CreateTravellerParams{
		DepartureCountry: req.DepartureCountry,
		DepartureCity:    req.DepartureCity,
		DepartureAirport: req.DepartureAirport,
		DepartureDate:    req.DepartureDate,
		DepartureTime:    req.DepartureTime,
		ArrivalCountry:   req.ArrivalCountry,
		ArrivalCity:      req.ArrivalCity,
		ArrivalAirport:   req.ArrivalAirport,
		ArrivalDate:      req.ArrivalDate,
		ArrivalTime:      req.ArrivalTime,
		AvailableWeight:  req.AvailableWeight,
		PricePerKg:       req.PricePerKg,
		SpecialNotes:     req.SpecialNotes,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	obs.PostsCreatedTotal.WithLabelValues("traveller").Inc()
	c.JSON(http.StatusCreated, dto.MapTravellerPost(detail.Post, detail.Owner))
}

func (h PostHandler) CreateSender(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	var req createSenderPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	detail, err := h.Service.CreateSender(c.Request.Context(), user.UserID(), domainpost.CreateSenderParams{
		OriginCountry:      req.OriginCountry,
		OriginCity:         req.OriginCity,
		OriginAddress:      req.OriginAddress,
		DestinationCountry: req.DestinationCountry,
		DestinationCity:    req.DestinationCity,
		DestinationAddress: req.DestinationAddress,
		ItemCategory:       req.ItemCategory,
		ItemDescription:    req.ItemDescription,
		Weight:             req.Weight,
		MaxPrice:           req.MaxPrice,
		SpecialNotes:       req.SpecialNotes,
		PickupNotes:        req.PickupNotes,
		DeliveryNotes:      req.DeliveryNotes,
	})
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	obs.PostsCreatedTotal.WithLabelValues("sender").Inc()
	c.JSON(http.StatusCreated, dto.MapSenderPost(detail.Post, detail.Owner))
}

func (h PostHandler) SearchTravellers(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	search := domainpost.TravellerSearch{
		DepartureCountry: c.Query("departure_country"),
		ArrivalCountry:   c.Query("arrival_country"),
		Page:             queryInt(c, "page"),
		Limit:            queryInt(c, "limit"),
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			search.DateFrom = t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			search.DateTo = t
		}
	}
	if principal, ok := currentPrincipal(c); ok {
		if c.Query("mine") == "true" {
			search.Owner = principal.UserID()
		} else {
			search.ExcludeOwner = principal.UserID()
		}
	}
	page, err := h.Service.SearchTravellers(c.Request.Context(), search)
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	views := make([]dto.TravellerPostView, 0, len(page.Posts))
	for _, item := range page.Posts {
		views = append(views, dto.MapTravellerPost(item.Post, item.Owner))
	}
	c.JSON(http.StatusOK, dto.TravellerPostCollection{
		Posts:      views,
		Pagination: dto.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h PostHandler) SearchSenders(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	search := domainpost.SenderSearch{
		OriginCountry:      c.Query("origin_country"),
		DestinationCountry: c.Query("destination_country"),
		ItemCategory:       c.Query("item_category"),
		MinWeight:          queryFloat(c, "min_weight"),
		MaxWeight:          queryFloat(c, "max_weight"),
		MinPrice:           queryFloat(c, "min_price"),
		MaxPrice:           queryFloat(c, "max_price"),
		Page:               queryInt(c, "page"),
		Limit:              queryInt(c, "limit"),
	}
	if principal, ok := currentPrincipal(c); ok {
		if c.Query("mine") == "true" {
			search.Owner = principal.UserID()
		} else {
			search.ExcludeOwner = principal.UserID()
		}
	}
	page, err := h.Service.SearchSenders(c.Request.Context(), search)
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	views := make([]dto.SenderPostView, 0, len(page.Posts))
	for _, item := range page.Posts {
		views = append(views, dto.MapSenderPost(item.Post, item.Owner))
	}
	c.JSON(http.StatusOK, dto.SenderPostCollection{
		Posts:      views,
		Pagination: dto.NewPagination(page.Page, page.Limit, page.Total),
	})
}

func (h PostHandler) GetTraveller(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	detail, err := h.Service.GetTraveller(c.Request.Context(), domainpost.ID(c.Param("id")))
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapTravellerPost(detail.Post, detail.Owner))
}

func (h PostHandler) GetSender(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	detail, err := h.Service.GetSender(c.Request.Context(), domainpost.ID(c.Param("id")))
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapSenderPost(detail.Post, detail.Owner))
}

func (h PostHandler) UploadPhoto(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "posts service unavailable"})
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds the size limit"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer reader.Close()

	detail, err := h.Service.AttachPhoto(
		c.Request.Context(),
		user.UserID(),
		domainpost.ID(c.Param("id")),
		file.Filename,
		reader,
		file.Size,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapSenderPost(detail.Post, detail.Owner))
}

func (h PostHandler) respondPostError(c *gin.Context, err error) {
	var verr *domainpost.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": verr.Fields})
	case errors.Is(err, domainpost.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.Is(err, domainpost.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	default:
		if h.Logger != nil {
			h.Logger.Error("post operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func queryInt(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func queryFloat(c *gin.Context, key string) float64 {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

var _ PostsHTTP = (*PostHandler)(nil)
