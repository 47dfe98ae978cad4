package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupage/school-api/internal/middleware"
	"github.com/edupage/school-api/internal/service"
	appErrors "github.com/edupage/school-api/pkg/errors"
	"github.com/edupage/school-api/pkg/response"
)

// ScheduleHandler manages timetable endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate weekly timetable
// @Description Greedily fills the school week for each teacher/subject/class mapping. Partial placement is reported, not failed.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.GenerateScheduleRequest true "Generation mappings"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req service.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Place a single lesson
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Move or reassign a lesson
// @Description The edited entry is excluded from its own conflict check.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Remove a lesson
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// WeeklyByClass godoc
// @Summary Weekly timetable for a class
// @Tags Schedules
// @Produce json
// @Param id path string true "Class group ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule/week [get]
func (h *ScheduleHandler) WeeklyByClass(c *gin.Context) {
	week, err := h.service.WeeklyForClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// WeeklyByTeacher godoc
// @Summary Weekly timetable for a teacher
// @Tags Schedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedule/week [get]
func (h *ScheduleHandler) WeeklyByTeacher(c *gin.Context) {
	week, err := h.service.WeeklyForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// MyWeek godoc
// @Summary Weekly timetable for the caller
// @Description Students get their class timetable, teachers their own, staff the whole school.
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/my-week [get]
func (h *ScheduleHandler) MyWeek(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	week, err := h.service.WeeklyForUser(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}
