package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/metrics"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Routes registers the whole API on mux. Everything under /api/v1 except
// login and logout requires a session.
func (h *Handler) Routes(mux *http.ServeMux) {
	public := map[string]http.HandlerFunc{
		"POST /api/v1/login":  h.HandleLogin,
		"POST /api/v1/logout": h.HandleLogout,
		"GET /healthz":        h.HandleHealth,
	}
	private := map[string]http.HandlerFunc{
		"GET /api/v1/dashboard": h.HandleDashboard,

		"GET /api/v1/courses":               h.HandleListCourses,
		"GET /api/v1/courses/{id}":          h.HandleCourse,
		"PATCH /api/v1/courses/{id}/status": h.HandleCourseStatus,
		"POST /api/v1/courses/{id}/grades":  h.HandleAddGrade,
		"POST /api/v1/courses/{id}/notes":   h.HandleAddNote,

		"GET /api/v1/semesters":     h.HandleSemesters,
		"GET /api/v1/semesters/{n}": h.HandleSemester,

		"GET /api/v1/grades":             h.HandleGrades,
		"GET /api/v1/grades/export.xlsx": h.HandleGradesExport,
		"PATCH /api/v1/grades/{id}":      h.HandleUpdateGrade,
		"DELETE /api/v1/grades/{id}":     h.HandleDeleteGrade,

		"PATCH /api/v1/notes/{id}":    h.HandleUpdateNote,
		"DELETE /api/v1/notes/{id}":   h.HandleDeleteNote,
		"POST /api/v1/notes/{id}/pin": h.HandleToggleNotePin,

		"GET /api/v1/schedule":     h.HandleSchedule,
		"GET /api/v1/schedule.ics": h.HandleScheduleICS,

		"GET /api/v1/settings": h.HandleSettings,
		"PUT /api/v1/settings": h.HandleUpdateSettings,
	}

	for pattern, fn := range public {
		mux.Handle(pattern, observe(pattern, fn))
	}
	for pattern, fn := range private {
		mux.Handle(pattern, observe(pattern, h.requireAuth(fn)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe records the request duration under the route pattern so that
// path parameters do not blow up the label cardinality.
func observe(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			duration := time.Since(start).Seconds()
			metrics.APIRequestDuration.WithLabelValues(
				pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(duration)
		}()
		next.ServeHTTP(rec, r)
	})
}

func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.service.Auth.Authenticated(r.Context(), app.SessionFromRequest(r)) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, app.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, app.ErrInvalidPassword):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, app.ErrAuthNotConfigured):
		status, message = http.StatusServiceUnavailable, err.Error()
	default:
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, errorBody{Error: message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %w", app.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
