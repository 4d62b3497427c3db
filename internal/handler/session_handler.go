package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context, ownerID string, req service.CreateSessionRequest) (*models.ClassSession, error)
	List(ctx context.Context) ([]models.ClassSession, error)
	ListByUser(ctx context.Context, userID string) ([]models.ClassSession, error)
	Get(ctx context.Context, id string) (*models.ClassSession, error)
	Attendance(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SessionHandler exposes class session (KBM report) endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary File a KBM report
// @Description Creates the session and its attendance rows atomically for the calling user.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.CreateSessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Mine godoc
// @Summary Sessions filed by the caller
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sessions/mine [get]
func (h *SessionHandler) Mine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.listByUser(c, claims.UserID)
}

// ByUser godoc
// @Summary Sessions filed by a user
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/sessions [get]
func (h *SessionHandler) ByUser(c *gin.Context) {
	h.listByUser(c, c.Param("id"))
}

func (h *SessionHandler) listByUser(c *gin.Context, userID string) {
	sessions, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Attendance godoc
// @Summary Attendance rows of a session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *SessionHandler) Attendance(c *gin.Context) {
	records, err := h.service.Attendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Delete godoc
// @Summary Delete session and its attendance
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	ok, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, ok, "session not found")
}
