package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arclight-ai/arclight/internal/gateway"
	"github.com/arclight-ai/arclight/pkg/api"
)

type ModelHandler struct {
	service gateway.Service
}

func NewModelHandler(service gateway.Service) *ModelHandler {
	return &ModelHandler{service: service}
}

func (h *ModelHandler) ListModels(c *gin.Context) {
	filter := api.ModelFilter{
		Provider: c.Query("provider"),
		ID:       c.Query("id"),
	}

	models := h.service.ListAllModels(filter)

	c.JSON(http.StatusOK, api.ModelList{
		Object: "list",
		Data:   models,
	})
}
