package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
)

type fakeMaterialService struct {
	material   *models.Material
	materials  []models.Material
	err        error
	deleted    bool
	lastOwner  string
	lastCreate service.CreateMaterialRequest
	lastUpdate service.UpdateMaterialRequest
}

func (f *fakeMaterialService) List(context.Context) ([]models.Material, error) {
	return f.materials, f.err
}

func (f *fakeMaterialService) Get(context.Context, string) (*models.Material, error) {
	return f.material, f.err
}

func (f *fakeMaterialService) Create(_ context.Context, ownerID string, req service.CreateMaterialRequest) (*models.Material, error) {
	f.lastOwner = ownerID
	f.lastCreate = req
	return f.material, f.err
}

func (f *fakeMaterialService) Update(_ context.Context, _ string, req service.UpdateMaterialRequest) (*models.Material, error) {
	f.lastUpdate = req
	return f.material, f.err
}

func (f *fakeMaterialService) Delete(context.Context, string) (bool, error) {
	return f.deleted, f.err
}

func TestMaterialHandlerCreateUsesCaller(t *testing.T) {
	svc := &fakeMaterialService{material: &models.Material{ID: "m-1"}}
	handler := NewMaterialHandler(svc)
	c, rec := newGinContext(http.MethodPost, "/materials", `{"title":"Tajwid dasar"}`)
	withClaims(c, "coord-1", models.RoleCoordinator)

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "coord-1", svc.lastOwner)
	assert.Equal(t, "Tajwid dasar", svc.lastCreate.Title)
}

func TestMaterialHandlerUpdate(t *testing.T) {
	svc := &fakeMaterialService{material: &models.Material{ID: "m-1"}}
	handler := NewMaterialHandler(svc)
	c, rec := newGinContext(http.MethodPatch, "/materials/m-1", `{"file_name":"tajwid.pdf"}`)
	c.Params = append(c.Params, ginParam("id", "m-1"))

	handler.Update(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.FileName)
	assert.Equal(t, "tajwid.pdf", *svc.lastUpdate.FileName)
	assert.Nil(t, svc.lastUpdate.Title)
}

func TestMaterialHandlerListAndDelete(t *testing.T) {
	handler := NewMaterialHandler(&fakeMaterialService{materials: []models.Material{{ID: "m-1"}}, deleted: false})

	c, rec := newGinContext(http.MethodGet, "/materials", "")
	handler.List(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newGinContext(http.MethodDelete, "/materials/m-9", "")
	c.Params = append(c.Params, ginParam("id", "m-9"))
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
