package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	appvalidator "github.com/jwalitptl/scheduling-api/pkg/validator"
)

type Service interface {
	Get(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Appointment, error)
	ListForProfessional(ctx context.Context, caller model.Caller, professionalID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, caller model.Caller, id uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error)
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: appvalidator.New()}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}
	r.GET("/professionals/:id/appointments", h.ListForProfessional)
}

func callerOrAbort(c *gin.Context) (model.Caller, bool) {
	caller, ok := handler.CallerFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized(nil))
	}
	return caller, ok
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid appointment ID"))
		return
	}
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

// ListForProfessional expects RFC 3339 from and to query parameters.
func (h *Handler) ListForProfessional(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid professional ID"))
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("from must be an RFC 3339 timestamp"))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("to must be an RFC 3339 timestamp"))
		return
	}
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	appointments, err := h.service.ListForProfessional(c.Request.Context(), caller, professionalID, from, to)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		handler.RespondValidation(c, err)
		return
	}
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}
