package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"salonbook/internal/booking"
	"salonbook/internal/cache"
	"salonbook/internal/clock"
	"salonbook/internal/config"
	"salonbook/internal/directory"
	"salonbook/internal/flow"
	"salonbook/internal/middleware"
	"salonbook/internal/store"
	"salonbook/internal/validation"
)

type BookingMailer interface {
	SendBookingConfirmation(ctx context.Context, appointment booking.Appointment, service directory.Service) (string, error)
}

type Server struct {
	Cfg       *config.Config
	Dir       directory.Repository
	Store     *store.Store
	Flow      *flow.Manager
	Committer *flow.Committer
	Clock     clock.Clock
	Val       *validation.Validator
	Log       *slog.Logger
	Cache     cache.Cache
	Mailer    BookingMailer
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
