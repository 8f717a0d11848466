package availability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	appvalidator "github.com/jwalitptl/scheduling-api/pkg/validator"
)

type Service interface {
	ListAvailableSlots(ctx context.Context, professionalID uuid.UUID, date string, settings model.ClinicSettings) ([]model.CandidateSlot, error)
	CreateBooking(ctx context.Context, req model.BookingRequest, settings model.ClinicSettings) (*model.Appointment, error)
	GetWeeklyAvailability(ctx context.Context, professionalID uuid.UUID) ([]model.WeeklyAvailabilitySlot, error)
	ReplaceWeeklyAvailability(ctx context.Context, caller model.Caller, professionalID uuid.UUID, inputs []model.WeeklySlotInput) ([]model.WeeklyAvailabilitySlot, error)
}

// SettingsResolver looks up the clinic configuration for a professional.
type SettingsResolver interface {
	SettingsForProfessional(ctx context.Context, professionalID uuid.UUID) (*model.Professional, model.ClinicSettings, error)
}

type Handler struct {
	service  Service
	settings SettingsResolver
	validate *validator.Validate
}

func NewHandler(service Service, settings SettingsResolver) *Handler {
	return &Handler{
		service:  service,
		settings: settings,
		validate: appvalidator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	professionals := r.Group("/professionals/:id")
	{
		professionals.GET("/availability", h.GetAvailability)
		professionals.GET("/weekly-availability", h.GetWeeklyAvailability)
		professionals.PUT("/weekly-availability", h.ReplaceWeeklyAvailability)
	}
	r.POST("/appointments", h.CreateAppointment)
}

// resolve loads the professional's clinic settings, rejecting callers from
// other clinics. Inactive professionals resolve normally so their schedule
// can still be managed.
func (h *Handler) resolve(c *gin.Context, professionalID uuid.UUID) (model.Caller, *model.Professional, model.ClinicSettings, bool) {
	caller, ok := handler.CallerFrom(c)
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized(nil))
		return model.Caller{}, nil, model.ClinicSettings{}, false
	}

	prof, settings, err := h.settings.SettingsForProfessional(c.Request.Context(), professionalID)
	if err != nil {
		handler.RespondError(c, err)
		return model.Caller{}, nil, model.ClinicSettings{}, false
	}
	if !caller.InClinic(settings.ClinicID) {
		handler.RespondError(c, apperrors.NotFound("professional", nil))
		return model.Caller{}, nil, model.ClinicSettings{}, false
	}
	return caller, prof, settings, true
}

// resolveBookable is resolve for booking-facing routes: an inactive
// professional takes no bookings.
func (h *Handler) resolveBookable(c *gin.Context, professionalID uuid.UUID) (model.Caller, model.ClinicSettings, bool) {
	caller, prof, settings, ok := h.resolve(c, professionalID)
	if !ok {
		return model.Caller{}, model.ClinicSettings{}, false
	}
	if !prof.Active {
		handler.RespondError(c, apperrors.Validation("professional %s is not accepting bookings", professionalID))
		return model.Caller{}, model.ClinicSettings{}, false
	}
	return caller, settings, true
}

func professionalParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid professional ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) GetAvailability(c *gin.Context) {
	professionalID, ok := professionalParam(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		handler.RespondError(c, apperrors.Validation("date query parameter is required"))
		return
	}

	_, settings, ok := h.resolveBookable(c, professionalID)
	if !ok {
		return
	}

	slots, err := h.service.ListAvailableSlots(c.Request.Context(), professionalID, date, settings)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.AvailabilityResult{
		ProfessionalID:      professionalID,
		Date:                date,
		Timezone:            settings.TimezoneName(),
		SlotDurationMinutes: settings.SlotDurationMinutes,
		Slots:               slots,
	}))
}

func (h *Handler) GetWeeklyAvailability(c *gin.Context) {
	professionalID, ok := professionalParam(c)
	if !ok {
		return
	}
	if _, _, _, ok := h.resolve(c, professionalID); !ok {
		return
	}

	slots, err := h.service.GetWeeklyAvailability(c.Request.Context(), professionalID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) ReplaceWeeklyAvailability(c *gin.Context) {
	professionalID, ok := professionalParam(c)
	if !ok {
		return
	}

	var req model.ReplaceWeeklyAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	caller, _, _, ok := h.resolve(c, professionalID)
	if !ok {
		return
	}

	slots, err := h.service.ReplaceWeeklyAvailability(c.Request.Context(), caller, professionalID, req.Slots)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		handler.RespondValidation(c, err)
		return
	}

	professionalID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid professional_id"))
		return
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid patient_id"))
		return
	}

	caller, settings, ok := h.resolveBookable(c, professionalID)
	if !ok {
		return
	}
	if caller.Role == model.RolePatient && caller.UserID != patientID {
		handler.RespondError(c, apperrors.Forbidden("patients may only book for themselves"))
		return
	}

	apt, err := h.service.CreateBooking(c.Request.Context(), model.BookingRequest{
		ClinicID:       settings.ClinicID,
		ProfessionalID: professionalID,
		PatientID:      patientID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		Notes:          req.Notes,
	}, settings)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}
