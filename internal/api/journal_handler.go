package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pccr10001/ofonomock/internal/repository"
)

// JournalHandler exposes the method call and signal journals so a harness
// can assert on what clients did and what the mock emitted.
type JournalHandler struct {
	calls   *repository.CallRepository
	signals *repository.SignalRepository
}

func NewJournalHandler(calls *repository.CallRepository, signals *repository.SignalRepository) *JournalHandler {
	return &JournalHandler{calls: calls, signals: signals}
}

func (h *JournalHandler) ListCalls(c *gin.Context) {
	list, err := h.calls.List(c.Query("method"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *JournalHandler) ClearCalls(c *gin.Context) {
	if err := h.calls.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *JournalHandler) ListSignals(c *gin.Context) {
	list, err := h.signals.List(c.Query("member"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *JournalHandler) ClearSignals(c *gin.Context) {
	if err := h.signals.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
