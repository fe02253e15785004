package handler

import (
	"time"

	"staking_wallet_back/pkg/middleware"
	"staking_wallet_back/pkg/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Config struct {
	AllowOrigins []string
}

type Handler struct {
	service *service.Service
	cfg     Config
}

func NewHandler(service *service.Service, cfg Config) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(h.corsConfig()))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		wallet := api.Group("/wallet")
		{
			wallet.POST("/connect", h.Connect)
			wallet.POST("/validate-referral", h.ValidateReferral)
			wallet.POST("/referral", h.SubmitReferral)
			wallet.POST("/skip-referral", h.SkipReferral)
			wallet.POST("/stake", h.Stake)
			wallet.GET("/stake-info", h.StakeInfo)
			wallet.GET("/stakes", h.Stakes)
			wallet.GET("/mirror", h.Mirror)
		}
	}
	return router
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := h.cfg.AllowOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (h *Handler) Health(c *gin.Context) {
	wrapOkJSON(c, map[string]interface{}{
		"status": "ok",
	})
}
