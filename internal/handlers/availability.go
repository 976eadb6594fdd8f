package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/directory"
	"salonbook/internal/schedule"
	"salonbook/internal/transport"
)

type availabilityQuery struct {
	StaffID string `validate:"required"`
	Date    string `validate:"required,date"`
}

// GetAvailability returns the open slots for one staff member on one day:
// the working-hours window cut into duration-sized slots, minus anything
// already booked, minus slots that have already passed today.
func (s *Server) GetAvailability(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := availabilityQuery{
		StaffID: r.URL.Query().Get("staffId"),
		Date:    r.URL.Query().Get("date"),
	}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("availability: invalid query")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	duration, err := parseDurationParam(r.URL.Query().Get("duration"), s.Cfg.DefaultSlotMinutes)
	if err != nil {
		log.Warn("availability: invalid duration")
		transport.WriteError(w, http.StatusBadRequest, "invalid duration", nil)
		return
	}

	cacheKey := "availability:" + q.Date + ":" + q.StaffID + ":" + strconv.Itoa(duration)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info("availability: cache hit", slog.String("date", q.Date), slog.String("staff_id", q.StaffID))
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	past, err := schedule.IsDatePast(q.Date, s.Cfg.Timezone, s.Clock.Now())
	if err != nil {
		log.Warn("availability: invalid date", slog.String("date", q.Date))
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}
	if past {
		log.Warn("availability: date in the past", slog.String("date", q.Date))
		transport.WriteError(w, http.StatusBadRequest, "date in the past", nil)
		return
	}

	staff, err := s.Dir.StaffByID(r.Context(), q.StaffID)
	if err != nil {
		if err == directory.ErrStaffNotFound {
			log.Warn("availability: staff not found", slog.String("staff_id", q.StaffID))
			transport.WriteError(w, http.StatusNotFound, "staff not found", nil)
			return
		}
		log.Error("availability: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	slots, err := s.computeAvailableSlots(staff, q.Date, duration)
	if err != nil {
		log.Error("availability: compute error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "availability error", nil)
		return
	}

	response := map[string]interface{}{
		"staffId":  q.StaffID,
		"date":     q.Date,
		"timezone": s.Cfg.Timezone.String(),
		"duration": duration,
		"slots":    slots,
	}

	if payload, err := encodeJSON(response); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), cacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info("availability: ok",
		slog.String("date", q.Date),
		slog.String("staff_id", q.StaffID),
		slog.Int("duration", duration),
		slog.Int("slots", len(slots)),
	)
	transport.WriteJSON(w, http.StatusOK, response)
}

func (s *Server) computeAvailableSlots(staff directory.Staff, date string, duration int) ([]string, error) {
	parsed, err := schedule.ParseDate(date, s.Cfg.Timezone)
	if err != nil {
		return nil, err
	}

	day, ok := staff.WorkingHours[schedule.WeekdayKey(parsed)]
	if !ok || !day.Active {
		return []string{}, nil
	}

	slots, err := schedule.SlotsBetween(day.StartTime, day.EndTime, duration)
	if err != nil {
		return nil, err
	}

	reserved := s.reservedIntervals(date, staff.ID)
	slots, err = schedule.FilterOverlapping(slots, duration, reserved)
	if err != nil {
		return nil, err
	}

	if date == s.Clock.Today() {
		slots, err = schedule.FilterPastSlots(date, slots, s.Cfg.Timezone, s.Clock.Now())
		if err != nil {
			return nil, err
		}
	}

	return slots, nil
}

func (s *Server) reservedIntervals(date, staffID string) []schedule.Interval {
	appointments := s.Store.ByDate(date)
	intervals := make([]schedule.Interval, 0, len(appointments))
	for _, a := range appointments {
		if a.StaffID != staffID || a.Status == booking.StatusCanceled {
			continue
		}
		start, err := schedule.ParseClockToMinutes(a.Start)
		if err != nil {
			continue
		}
		end, err := schedule.ParseClockToMinutes(a.End)
		if err != nil || end <= start {
			continue
		}
		intervals = append(intervals, schedule.Interval{Start: start, End: end})
	}
	return intervals
}

// GetDaySchedule returns the day grid: every staff column with its working
// window and booked appointments, the way the calendar renders a day.
func (s *Server) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := struct {
		Date string `validate:"required,date"`
	}{Date: r.URL.Query().Get("date")}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("day schedule: invalid query")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	staffList, err := s.Dir.ListStaff(r.Context())
	if err != nil {
		log.Error("day schedule: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	parsed, err := schedule.ParseDate(q.Date, s.Cfg.Timezone)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}
	dayKey := schedule.WeekdayKey(parsed)

	appointments := s.Store.ByDate(q.Date)
	byStaff := make(map[string][]booking.Appointment, len(staffList))
	for _, a := range appointments {
		if a.Status == booking.StatusCanceled {
			continue
		}
		byStaff[a.StaffID] = append(byStaff[a.StaffID], a)
	}

	type staffColumn struct {
		Staff        directory.Staff       `json:"staff"`
		Working      bool                  `json:"working"`
		Window       *directory.WorkingDay `json:"window,omitempty"`
		Appointments []booking.Appointment `json:"appointments"`
	}

	columns := make([]staffColumn, 0, len(staffList))
	for _, st := range staffList {
		col := staffColumn{
			Staff:        st,
			Working:      st.WorksOn(dayKey),
			Appointments: byStaff[st.ID],
		}
		if col.Appointments == nil {
			col.Appointments = []booking.Appointment{}
		}
		if day, ok := st.WorkingHours[dayKey]; ok && day.Active {
			window := day
			col.Window = &window
		}
		columns = append(columns, col)
	}

	log.Info("day schedule: ok", slog.String("date", q.Date), slog.Int("staff", len(columns)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":    q.Date,
		"columns": columns,
	})
}

// GetMonthOverview returns the 6x7 month grid the mini-calendar renders,
// with an appointment count per cell.
func (s *Server) GetMonthOverview(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := struct {
		Date string `validate:"required,date"`
	}{Date: r.URL.Query().Get("date")}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("month overview: invalid query")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	parsed, err := schedule.ParseDate(q.Date, s.Cfg.Timezone)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}

	type monthCell struct {
		Date    string `json:"date"`
		InMonth bool   `json:"inMonth"`
		Count   int    `json:"count"`
	}

	cells := make([]monthCell, 0, 42)
	for _, day := range schedule.MonthMatrix(parsed) {
		dateStr := schedule.FormatDateLocal(day)
		count := 0
		for _, a := range s.Store.ByDate(dateStr) {
			if a.Status != booking.StatusCanceled {
				count++
			}
		}
		cells = append(cells, monthCell{
			Date:    dateStr,
			InMonth: day.Month() == parsed.Month(),
			Count:   count,
		})
	}

	log.Info("month overview: ok", slog.String("date", q.Date))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":  q.Date,
		"cells": cells,
	})
}
