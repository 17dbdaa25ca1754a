package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pccr10001/ofonomock/internal/auth"
	"github.com/pccr10001/ofonomock/internal/repository"
	"github.com/pccr10001/ofonomock/internal/service"
)

type RouterConfig struct {
	Service  *service.Service
	Calls    *repository.CallRepository
	Signals  *repository.SignalRepository
	Webhooks *repository.WebhookRepository
	Hub      *SignalHub
	Auth     *auth.Authenticator
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	mh := NewMockHandler(cfg.Service)
	jh := NewJournalHandler(cfg.Calls, cfg.Signals)
	wh := NewWebhookHandler(cfg.Webhooks)

	apiGroup := r.Group("/api/v1")
	apiGroup.Use(AuthMiddleware(cfg.Auth))
	{
		apiGroup.GET("/modems", mh.ListModems)
		apiGroup.POST("/modems", mh.AddModem)
		apiGroup.GET("/modems/:name", mh.GetModem)
		apiGroup.PUT("/modems/:name/properties/:property", mh.SetProperty)
		apiGroup.GET("/modems/:name/calls", mh.ListCalls)
		apiGroup.POST("/modems/:name/calls", mh.Dial)
		apiGroup.DELETE("/modems/:name/calls", mh.HangupAll)
		apiGroup.DELETE("/modems/:name/calls/:call", mh.Hangup)
		apiGroup.POST("/call", mh.Call)

		apiGroup.GET("/journal/calls", jh.ListCalls)
		apiGroup.DELETE("/journal/calls", jh.ClearCalls)
		apiGroup.GET("/journal/signals", jh.ListSignals)
		apiGroup.DELETE("/journal/signals", jh.ClearSignals)

		apiGroup.GET("/webhooks", wh.ListWebhooks)
		apiGroup.POST("/webhooks", wh.CreateWebhook)
		apiGroup.DELETE("/webhooks/:id", wh.DeleteWebhook)

		if cfg.Hub != nil {
			apiGroup.GET("/signals/ws", cfg.Hub.Serve)
		}
	}
	return r
}
