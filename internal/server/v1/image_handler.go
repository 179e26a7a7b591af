package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arclight-ai/arclight/internal/gateway"
	"github.com/arclight-ai/arclight/internal/server/validator"
	"github.com/arclight-ai/arclight/pkg/api"
)

type ImageHandler struct {
	service   gateway.Service
	validator *validator.Validator
}

func NewImageHandler(service gateway.Service, v *validator.Validator) *ImageHandler {
	return &ImageHandler{
		service:   service,
		validator: v,
	}
}

func (h *ImageHandler) CreateImage(c *gin.Context) {
	var req api.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(h.validator.ParseError(err)))
		return
	}

	resp, err := h.service.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(problemFrom(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}
