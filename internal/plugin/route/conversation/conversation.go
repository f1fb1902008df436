package conversation

import (
	"errors"
	"net/http"

	"github.com/aisupport/faq-service/internal/chat"
	"github.com/aisupport/faq-service/internal/model"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// MountRoutes mounts the conversation routes on the given router.
// Called after store initialization so the store is available.
func MountRoutes(r *gin.Engine, store registrystore.ChatStore, manager *chat.Manager) {
	g := r.Group("/api")

	g.GET("/conversations", func(c *gin.Context) {
		getConversation(c, store)
	})
	g.POST("/message", func(c *gin.Context) {
		postMessage(c, manager)
	})
}

func getConversation(c *gin.Context, store registrystore.ChatStore) {
	conv, err := store.LoadConversation(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	messages := []model.Message{}
	if conv != nil && conv.Messages != nil {
		messages = conv.Messages
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func postMessage(c *gin.Context, manager *chat.Manager) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}

	bot, err := manager.HandleUserMessage(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bot)
}

func handleError(c *gin.Context, err error) {
	var validation *registrystore.ValidationError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error(), "field": validation.Field})
	default:
		log.Error("Request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
