package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/metrics"
	"github.com/shrimpsizemoose/studieplan/internal/models"
)

func (h *Handler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := app.ParseCourseFilter(q.Get("status"), q.Get("semester"), q.Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	courses, err := h.service.ListCourses(filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"courses":     courses,
		"sort":        filter.Sort,
		"sortOptions": app.SortLabels,
	})
}

func (h *Handler) HandleCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.Course(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleCourseStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	course, err := h.service.UpdateCourseStatus(r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *Handler) HandleAddGrade(w http.ResponseWriter, r *http.Request) {
	var in app.GradeInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	grade, err := h.service.AddGrade(r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.GradeMutationsTotal.WithLabelValues("create").Inc()
	metrics.GradeValueHistogram.Observe(grade.Value)
	writeJSON(w, http.StatusCreated, grade)
}

func (h *Handler) HandleUpdateGrade(w http.ResponseWriter, r *http.Request) {
	var patch models.GradePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	grade, err := h.service.UpdateGrade(r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.GradeMutationsTotal.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, grade)
}

func (h *Handler) HandleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	grade, err := h.service.DeleteGrade(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.GradeMutationsTotal.WithLabelValues("delete").Inc()
	writeJSON(w, http.StatusOK, grade)
}

func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var in app.NoteInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.service.AddNote(r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.NoteMutationsTotal.WithLabelValues("create").Inc()
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.service.UpdateNote(r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.NoteMutationsTotal.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.DeleteNote(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.NoteMutationsTotal.WithLabelValues("delete").Inc()
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) HandleToggleNotePin(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.ToggleNotePin(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.NoteMutationsTotal.WithLabelValues("pin").Inc()
	writeJSON(w, http.StatusOK, note)
}
