package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type studentAttendanceService interface {
	StudentAttendance(ctx context.Context, studentID, start, end string) ([]models.AttendanceRecord, error)
}

// StudentHandler exposes student (generus) endpoints.
type StudentHandler struct {
	service    studentService
	attendance studentAttendanceService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(svc studentService, attendance studentAttendanceService) *StudentHandler {
	return &StudentHandler{service: svc, attendance: attendance}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Partially update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	ok, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted(c, ok, "student not found")
}

// Attendance godoc
// @Summary Attendance history of a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) Attendance(c *gin.Context) {
	records, err := h.attendance.StudentAttendance(c.Request.Context(), c.Param("id"), c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}
