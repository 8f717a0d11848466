package availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduling-api/internal/model"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

type serviceFixture struct {
	svc          *Service
	availability *fakeAvailabilityRepo
	appointments *fakeAppointmentRepo
	settings     model.ClinicSettings
	profID       uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		availability: newFakeAvailabilityRepo(),
		appointments: &fakeAppointmentRepo{},
		settings: model.ClinicSettings{
			ClinicID:            uuid.New(),
			Location:            clinicTZ,
			SlotDurationMinutes: 30,
		},
		profID: uuid.New(),
	}
	f.svc = NewService(f.availability, f.appointments, nil, metrics.NewTestMetrics()).
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) })

	f.availability.slots[f.profID] = []model.WeeklyAvailabilitySlot{
		{ID: uuid.New(), ProfessionalID: f.profID, Weekday: 2, StartTime: "08:00", EndTime: "12:00", Active: true},
	}
	return f
}

func (f *serviceFixture) book(t *testing.T, profID uuid.UUID, date, start string, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	day, err := model.ParseDate(date, clinicTZ)
	require.NoError(t, err)
	s, e, err := CandidateInterval(day, start, f.settings.SlotDurationMinutes, clinicTZ)
	require.NoError(t, err)
	apt := &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		ProfessionalID: profID,
		PatientID:      uuid.New(),
		StartsAt:       s.UTC(),
		EndsAt:         e.UTC(),
		Status:         status,
	}
	f.appointments.appointments = append(f.appointments.appointments, apt)
	return apt
}

func TestListAvailableSlotsAllFree(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
	require.NoError(t, err)

	want := []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	require.Len(t, slots, len(want))
	for i, s := range slots {
		assert.Equal(t, want[i], s.StartTime)
		assert.False(t, s.Booked, s.StartTime)
	}
}

func TestListAvailableSlotsMarksBooked(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.profID, "2024-03-05", "09:00", model.AppointmentStatusScheduled)

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
	require.NoError(t, err)
	require.Len(t, slots, 8)
	for _, s := range slots {
		assert.Equal(t, s.StartTime == "09:00", s.Booked, s.StartTime)
	}
}

func TestListAvailableSlotsIgnoresCancelledAndOtherProfessionals(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.profID, "2024-03-05", "09:00", model.AppointmentStatusCancelled)
	f.book(t, uuid.New(), "2024-03-05", "10:00", model.AppointmentStatusConfirmed)

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
	require.NoError(t, err)
	for _, s := range slots {
		assert.False(t, s.Booked, s.StartTime)
	}
}

func TestListAvailableSlotsEmptyDay(t *testing.T) {
	f := newFixture(t)

	// 2024-03-06 is a Wednesday; only Tuesday is configured.
	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-06", f.settings)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
	assert.Zero(t, f.appointments.listCalls)
}

func TestListAvailableSlotsErrors(t *testing.T) {
	t.Run("bad date", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "05/03/2024", f.settings)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("non-positive duration", func(t *testing.T) {
		f := newFixture(t)
		settings := f.settings
		settings.SlotDurationMinutes = 0
		_, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", settings)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("persistence failure passes through", func(t *testing.T) {
		f := newFixture(t)
		cause := apperrors.Persistence("list appointments", fmt.Errorf("connection reset"))
		f.appointments.listErr = cause
		_, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
		assert.ErrorIs(t, err, cause)
		assert.True(t, apperrors.IsPersistence(err))
	})
}

func bookingRequest(f *serviceFixture, start string) model.BookingRequest {
	return model.BookingRequest{
		ClinicID:       f.settings.ClinicID,
		ProfessionalID: f.profID,
		PatientID:      uuid.New(),
		Date:           "2024-03-05",
		StartTime:      start,
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.CreateBooking(context.Background(), bookingRequest(f, "09:30"), f.settings)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC), apt.StartsAt)
	assert.Equal(t, 30*time.Minute, apt.EndsAt.Sub(apt.StartsAt))
	assert.Equal(t, f.settings.ClinicID, apt.ClinicID)

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
	require.NoError(t, err)
	for _, s := range slots {
		assert.Equal(t, s.StartTime == "09:30", s.Booked, s.StartTime)
	}
}

func TestCreateBookingAlreadyBooked(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.profID, "2024-03-05", "10:00", model.AppointmentStatusScheduled)

	_, err := f.svc.CreateBooking(context.Background(), bookingRequest(f, "10:00"), f.settings)
	assert.True(t, apperrors.IsSlotConflict(err))
}

func TestCreateBookingConcurrentWinner(t *testing.T) {
	f := newFixture(t)
	day, _ := model.ParseDate("2024-03-05", clinicTZ)
	s, e, _ := CandidateInterval(day, "10:00", 30, clinicTZ)
	f.appointments.hidden = append(f.appointments.hidden, &model.Appointment{
		Base:           model.Base{ID: uuid.New()},
		ProfessionalID: f.profID,
		StartsAt:       s.UTC(),
		EndsAt:         e.UTC(),
		Status:         model.AppointmentStatusScheduled,
	})

	apt, err := f.svc.CreateBooking(context.Background(), bookingRequest(f, "10:00"), f.settings)
	assert.Nil(t, apt)
	require.Error(t, err)
	assert.True(t, apperrors.IsSlotConflict(err))
	assert.ErrorIs(t, err, apperrors.SlotConflictError)
}

func TestCreateBookingAfterCancellation(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.profID, "2024-03-05", "10:00", model.AppointmentStatusCancelled)

	_, err := f.svc.CreateBooking(context.Background(), bookingRequest(f, "10:00"), f.settings)
	assert.NoError(t, err)
}

func TestCreateBookingRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.BookingRequest)
	}{
		{"outside availability", func(r *model.BookingRequest) { r.StartTime = "13:00" }},
		{"off the slot grid", func(r *model.BookingRequest) { r.StartTime = "09:15" }},
		{"malformed time", func(r *model.BookingRequest) { r.StartTime = "9:00" }},
		{"malformed date", func(r *model.BookingRequest) { r.Date = "2024-13-01" }},
		{"in the past", func(r *model.BookingRequest) { r.Date = "2024-02-27" }},
		{"missing patient", func(r *model.BookingRequest) { r.PatientID = uuid.Nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := bookingRequest(f, "09:00")
			tt.mutate(&req)

			_, err := f.svc.CreateBooking(context.Background(), req, f.settings)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
			assert.Empty(t, f.appointments.appointments)
		})
	}
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestReplaceWeeklyAvailability(t *testing.T) {
	f := newFixture(t)
	caller := model.Caller{UserID: uuid.New(), Role: model.RoleProfessional, ProfessionalID: f.profID}
	inputs := []model.WeeklySlotInput{
		{Weekday: intp(3), StartTime: "14:00", EndTime: "18:00"},
		{Weekday: intp(1), StartTime: "08:00", EndTime: "12:00", Active: boolp(false)},
	}

	got, err := f.svc.ReplaceWeeklyAvailability(context.Background(), caller, f.profID, inputs)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Weekday)
	assert.False(t, got[0].Active)
	assert.Equal(t, 3, got[1].Weekday)
	assert.True(t, got[1].Active)

	stored, err := f.svc.GetWeeklyAvailability(context.Background(), f.profID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestReplaceWeeklyAvailabilityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	admin := model.Caller{UserID: uuid.New(), Role: model.RoleAdmin}
	inputs := []model.WeeklySlotInput{
		{Weekday: intp(2), StartTime: "08:00", EndTime: "12:00"},
		{Weekday: intp(4), StartTime: "13:00", EndTime: "17:00"},
	}

	for i := 0; i < 2; i++ {
		_, err := f.svc.ReplaceWeeklyAvailability(context.Background(), admin, f.profID, inputs)
		require.NoError(t, err)
	}

	stored, err := f.svc.GetWeeklyAvailability(context.Background(), f.profID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	type key struct {
		weekday    int
		start, end string
	}
	got := []key{}
	for _, s := range stored {
		got = append(got, key{s.Weekday, s.StartTime, s.EndTime})
	}
	assert.ElementsMatch(t, []key{{2, "08:00", "12:00"}, {4, "13:00", "17:00"}}, got)
}

func TestReplaceWeeklyAvailabilityEmptySet(t *testing.T) {
	f := newFixture(t)
	admin := model.Caller{UserID: uuid.New(), Role: model.RoleAdmin}

	got, err := f.svc.ReplaceWeeklyAvailability(context.Background(), admin, f.profID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-05", f.settings)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestReplaceWeeklyAvailabilityRejects(t *testing.T) {
	f := newFixture(t)
	admin := model.Caller{UserID: uuid.New(), Role: model.RoleAdmin}

	bad := [][]model.WeeklySlotInput{
		{{Weekday: intp(2), StartTime: "12:00", EndTime: "08:00"}},
		{{Weekday: intp(2), StartTime: "08:00", EndTime: "08:00"}},
		{{Weekday: intp(7), StartTime: "08:00", EndTime: "09:00"}},
		{{Weekday: intp(2), StartTime: "8:00", EndTime: "09:00"}},
		{{StartTime: "08:00", EndTime: "09:00"}},
	}
	for i, inputs := range bad {
		_, err := f.svc.ReplaceWeeklyAvailability(context.Background(), admin, f.profID, inputs)
		assert.True(t, apperrors.IsValidation(err), "case %d: %v", i, err)
	}
	assert.Zero(t, f.availability.replaced)

	other := model.Caller{UserID: uuid.New(), Role: model.RoleProfessional, ProfessionalID: uuid.New()}
	_, err := f.svc.ReplaceWeeklyAvailability(context.Background(), other, f.profID, nil)
	assert.ErrorIs(t, err, apperrors.ForbiddenError)
}

func TestSpringForwardDayOmitsSkippedTimes(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	f := newFixture(t)
	f.settings.Location = ny
	f.availability.slots[f.profID] = []model.WeeklyAvailabilitySlot{
		{ID: uuid.New(), ProfessionalID: f.profID, Weekday: 0, StartTime: "01:00", EndTime: "04:00", Active: true},
	}

	slots, err := f.svc.ListAvailableSlots(context.Background(), f.profID, "2024-03-10", f.settings)
	require.NoError(t, err)
	starts := make([]string, len(slots))
	for i, s := range slots {
		starts[i] = s.StartTime
	}
	assert.Equal(t, []string{"01:00", "01:30", "03:00", "03:30"}, starts)

	req := model.BookingRequest{
		ClinicID:       f.settings.ClinicID,
		ProfessionalID: f.profID,
		PatientID:      uuid.New(),
		Date:           "2024-03-10",
		StartTime:      "02:30",
	}
	_, err = f.svc.CreateBooking(context.Background(), req, f.settings)
	assert.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Empty(t, f.appointments.appointments)

	req.StartTime = "03:00"
	apt, err := f.svc.CreateBooking(context.Background(), req, f.settings)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), apt.StartsAt)
}

func TestReplaceWeeklyAvailabilityReportsEveryField(t *testing.T) {
	f := newFixture(t)
	admin := model.Caller{UserID: uuid.New(), Role: model.RoleAdmin}

	_, err := f.svc.ReplaceWeeklyAvailability(context.Background(), admin, f.profID, []model.WeeklySlotInput{
		{Weekday: intp(7), StartTime: "8:00", EndTime: "09:00"},
	})
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t,
		"slot 0: WeeklySlotInput.weekday value is too large; WeeklySlotInput.start_time must be a time in HH:MM format",
		err.Error())
}
