package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/godbus/dbus/v5"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/internal/service"
)

// MockHandler drives the ofono tree over HTTP. Every route goes through the
// same dispatch and journal as bus clients.
type MockHandler struct {
	svc *service.Service
}

func NewMockHandler(svc *service.Service) *MockHandler {
	return &MockHandler{svc: svc}
}

func (h *MockHandler) modemPath(c *gin.Context) (dbus.ObjectPath, bool) {
	path, err := service.ModemPath(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return path, true
}

func (h *MockHandler) ListModems(c *gin.Context) {
	modems, err := h.svc.GetModems()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, modems)
}

func (h *MockHandler) AddModem(c *gin.Context) {
	var req struct {
		Name       string         `json:"name" binding:"required"`
		Properties map[string]any `json:"properties"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := h.svc.AddModem(req.Name, req.Properties)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

func (h *MockHandler) GetModem(c *gin.Context) {
	path, ok := h.modemPath(c)
	if !ok {
		return
	}
	props, err := h.svc.ModemProperties(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ofono.PathProperties{Path: path, Properties: props})
}

func (h *MockHandler) SetProperty(c *gin.Context) {
	path, ok := h.modemPath(c)
	if !ok {
		return
	}
	var req struct {
		Value any `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetModemProperty(path, c.Param("property"), req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MockHandler) ListCalls(c *gin.Context) {
	path, ok := h.modemPath(c)
	if !ok {
		return
	}
	calls, err := h.svc.GetCalls(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calls)
}

func (h *MockHandler) Dial(c *gin.Context) {
	path, ok := h.modemPath(c)
	if !ok {
		return
	}
	var req struct {
		Number       string `json:"number" binding:"required"`
		HideCallerID string `json:"hide_callerid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call, err := h.svc.Dial(path, req.Number, req.HideCallerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": call})
}

func (h *MockHandler) HangupAll(c *gin.Context) {
	path, ok := h.modemPath(c)
	if !ok {
		return
	}
	if err := h.svc.HangupAll(path); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MockHandler) Hangup(c *gin.Context) {
	path, err := service.CallPath(c.Param("name"), c.Param("call"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.svc.Hangup(path); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Call dispatches any method of the table, e.g. to reach the stub interfaces.
func (h *MockHandler) Call(c *gin.Context) {
	var req struct {
		Path      string `json:"path" binding:"required"`
		Interface string `json:"interface" binding:"required"`
		Method    string `json:"method" binding:"required"`
		Args      []any  `json:"args"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.Call(dbus.ObjectPath(req.Path), req.Interface, req.Method, req.Args...)
	if err != nil {
		writeError(c, err)
		return
	}
	if out == nil {
		out = []any{}
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}
