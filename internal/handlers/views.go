package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/metrics"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) HandleSemesters(w http.ResponseWriter, r *http.Request) {
	roadmap, err := h.service.Semesters()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap)
}

func (h *Handler) HandleSemester(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, r, fmt.Errorf("semester %q: %w", r.PathValue("n"), store.ErrNotFound))
		return
	}

	detail, err := h.service.SemesterDetail(n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) HandleGrades(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.GradesOverview()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if overview.GPA != nil {
		metrics.CurrentGPA.Set(*overview.GPA)
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) HandleGradesExport(w http.ResponseWriter, r *http.Request) {
	buf, err := h.service.GradesWorkbook()
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="grades.xlsx"`)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error.Printf("Failed to write workbook: %v", err)
	}
}

func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Schedule(r.URL.Query().Get("momento"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleScheduleICS(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.ScheduleICS(r.URL.Query().Get("momento"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	if _, err := w.Write([]byte(cal)); err != nil {
		logger.Error.Printf("Failed to write calendar: %v", err)
	}
}

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in app.SettingsInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.service.UpdateSettings(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info.Printf("Settings updated: semester=%d momento=%s", settings.CurrentSemester, settings.CurrentMomento)
	writeJSON(w, http.StatusOK, settings)
}
