package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carryon/internal/infra/config"
	"carryon/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type PostsHTTP interface {
	CreateTraveller(c *gin.Context)
	CreateSender(c *gin.Context)
	SearchTravellers(c *gin.Context)
	SearchSenders(c *gin.Context)
	GetTraveller(c *gin.Context)
	GetSender(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type RequestsHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	UpdateStatus(c *gin.Context)
}

type ChatHTTP interface {
	ListConversations(c *gin.Context)
	GetConversation(c *gin.Context)
	ListMessages(c *gin.Context)
	PostMessage(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Posts          PostsHTTP
	Requests       RequestsHTTP
	Chat           ChatHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Posts != nil {
		api.GET("/posts/traveller", h.Posts.SearchTravellers)
		api.POST("/posts/traveller", h.Posts.CreateTraveller)
		api.GET("/posts/traveller/:id", h.Posts.GetTraveller)
		api.GET("/posts/sender", h.Posts.SearchSenders)
		api.POST("/posts/sender", h.Posts.CreateSender)
		api.GET("/posts/sender/:id", h.Posts.GetSender)
		api.POST("/posts/sender/:id/photos", h.Posts.UploadPhoto)
	}
	if h.Requests != nil {
		api.POST("/requests", h.Requests.Create)
		api.GET("/requests", h.Requests.List)
		api.GET("/requests/:id", h.Requests.Get)
		api.PATCH("/requests/:id", h.Requests.UpdateStatus)
	}
	if h.Chat != nil {
		api.GET("/conversations", h.Chat.ListConversations)
		api.GET("/conversations/:id", h.Chat.GetConversation)
		api.GET("/conversations/:id/messages", h.Chat.ListMessages)
		api.POST("/conversations/:id/messages", h.Chat.PostMessage)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
