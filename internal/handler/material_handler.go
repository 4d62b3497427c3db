package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

type materialService interface {
	List(ctx context.Context) ([]models.Material, error)
	Get(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, ownerID string, req service.CreateMaterialRequest) (*models.Material, error)
	Update(ctx context.Context, id string, req service.UpdateMaterialRequest) (*models.Material, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// MaterialHandler exposes learning material endpoints.
type MaterialHandler struct {
	service materialService
}

// NewMaterialHandler constructs a MaterialHandler.
func NewMaterialHandler(svc materialService) *MaterialHandler {
	return &MaterialHandler{service: svc}
}

// List godoc
// @Summary List materials
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials)
}

// Get godoc
// @Summary Get material
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	material, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material)
}

// Create godoc
// @Summary Create material
// @Tags Materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.CreateMaterialRequest
	if !bindJSON(c, &req, "invalid material payload") {
		return
	}
	material, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// Update godoc
// @Summary Partially update material
// @Tags Materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Param payload body service.UpdateMaterialRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id} [patch]
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.UpdateMaterialRequest
	if !bindJSON(c, &req, "invalid material payload") {
		return
	}
	material, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material)
}

// Delete godoc
// @Summary Delete material
// @Tags Materials
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	ok, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, ok, "material not found")
}
