package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arclight-ai/arclight/internal/analytics"
	"github.com/arclight-ai/arclight/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

func (h *AnalyticsHandler) GetUsage(c *gin.Context) {
	daysStr := c.DefaultQuery("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		_ = c.Error(api.BadRequestError("Invalid 'days' parameter"))
		return
	}

	stats, err := h.service.GetUsageOverview(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch analytics", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   stats,
	})
}

func (h *AnalyticsHandler) GetRecent(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		_ = c.Error(api.BadRequestError("Invalid 'limit' parameter"))
		return
	}

	logs, err := h.service.GetRecentRequests(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch request logs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   logs,
	})
}
