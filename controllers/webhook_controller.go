package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/bot"
	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/utils"
)

// WebhookController receives the messaging platform's callbacks.
type WebhookController struct {
	cfg    config.AppConfig
	router *bot.Router
}

func NewWebhookController(cfg config.AppConfig, router *bot.Router) *WebhookController {
	return &WebhookController{cfg: cfg, router: router}
}

// Handle verifies the signature, validates the payload and routes it. The
// platform retries non-2xx responses, so handler failures after a valid
// payload still return 200.
func (w *WebhookController) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, 40001, "unreadable body")
		return
	}

	if !bot.VerifySignature(w.cfg.WorksBotSecret, body, c.GetHeader("X-WORKS-Signature")) {
		utils.Sugar.Warnf("webhook signature mismatch from %s", c.ClientIP())
		utils.Error(c, http.StatusUnauthorized, 40101, "invalid signature")
		return
	}

	var event bot.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.Error(c, http.StatusBadRequest, 40002, "malformed payload")
		return
	}
	if err := event.Validate(); err != nil {
		utils.Sugar.Warnf("webhook payload rejected: %v", err)
		utils.Error(c, http.StatusBadRequest, 40003, err.Error())
		return
	}

	reqInfo := bot.ExtractRequestInfo(c.Request, c.ClientIP())
	if err := w.router.HandleEvent(c.Request.Context(), &event, reqInfo); err != nil {
		utils.Sugar.Errorf("webhook handler: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
