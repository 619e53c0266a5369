package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"slotnotify/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Send handles POST /api/v1/send
// Dispatches synchronously and returns the dispatch result.
func (h *Handler) Send(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Send(c.Request.Context(), &req)
	if err != nil {
		slog.Warn("notification rejected",
			"error", err,
			"template", req.Template,
			"to", req.To,
		)
		common.HandleError(c, err)
		return
	}

	if !result.Success {
		common.Failure(c, common.StatusFor(result.Err), result.Error, result)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// SendAsync handles POST /api/v1/send/async
// Enqueues the notification for the worker and returns 202 Accepted.
func (h *Handler) SendAsync(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Enqueue(c.Request.Context(), &req)
	if err != nil {
		slog.Error("enqueue notification failed",
			"error", err,
			"template", req.Template,
			"to", req.To,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusAccepted, resp)
}

// ListDeliveries handles GET /api/v1/deliveries
func (h *Handler) ListDeliveries(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	common.Success(c, http.StatusOK, h.service.Deliveries(limit))
}

// DeliveryHistory handles GET /api/v1/deliveries/history
func (h *Handler) DeliveryHistory(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	resp, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/send", h.Send)
	rg.POST("/send/async", h.SendAsync)
	rg.GET("/deliveries", h.ListDeliveries)
	rg.GET("/deliveries/history", h.DeliveryHistory)
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		common.Error(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
