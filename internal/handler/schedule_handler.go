package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/middleware"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/response"
)

type scheduleService interface {
	GetSchedule(ctx context.Context, rawName string, typ models.ScheduleType, offset int) (models.Schedule, error)
}

type scheduleResolver interface {
	Resolve(ctx context.Context, name models.ScheduleName) (int64, error)
}

// ScheduleHandler serves the schedule and id endpoints.
type ScheduleHandler struct {
	service  scheduleService
	resolver scheduleResolver
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService, resolver scheduleResolver) *ScheduleHandler {
	return &ScheduleHandler{service: svc, resolver: resolver}
}

// GetID resolves the provider id of a schedule by its display name.
func (h *ScheduleHandler) GetID(c *gin.Context) {
	typ, err := models.ParseScheduleType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	name, err := models.NewScheduleName(c.Param("name"), typ)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := h.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id})
}

// GetSchedule serves one week of a schedule at the requested week offset.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	typ, err := models.ParseScheduleType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	offset, err := strconv.Atoi(c.Param("offset"))
	if err != nil {
		response.Error(c, appErrors.Userf("invalid week offset %q", c.Param("offset")))
		return
	}

	schedule, err := h.service.GetSchedule(c.Request.Context(), c.Param("name"), typ, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Clients older than major version 2 do not know the EXAM and
	// CONSULTATION class types.
	if middleware.AppMajorVersion(c) < 2 {
		schedule.DowngradeClassTypes()
	}
	response.JSON(c, http.StatusOK, schedule)
}
