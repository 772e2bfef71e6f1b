package course

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/andrasnagy-data/learning-center/internal/components/session"
	"github.com/andrasnagy-data/learning-center/internal/shared/resource"
	"github.com/andrasnagy-data/learning-center/templates"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

type (
	sessionReader interface {
		State() session.SessionState
	}

	Router struct {
		repo     resource.Repository[Course]
		sessions sessionReader
	}
)

func NewRouter(repo resource.Repository[Course], sessions *session.Store) chi.Router {
	router := &Router{repo: repo, sessions: sessions}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.GetCourses)
	router.Post("/add", r.CreateCourse)
	router.Put("/{id}", r.UpdateCourse)
	router.Delete("/{id}", r.DeleteCourse)

	return router
}

// GetCourses renders the course page. A failed fetch still renders, with the error shown.
func (r *Router) GetCourses(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	data := CoursesTemplateData{Session: r.sessions.State()}
	status := http.StatusOK

	courses, err := r.repo.GetAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting courses")
		data.Error = "Could not load courses"
		status = http.StatusBadGateway
	}
	data.Courses = courses

	if err := templates.Write(w, status, "courses.html", data); err != nil {
		logger.Error().Err(err).Msg("Failed to render courses page")
	}
}

// CreateCourse creates a course and triggers a table refresh for HTMX
func (r *Router) CreateCourse(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	body, ok := parseCourse(w, req)
	if !ok {
		return
	}

	created, err := r.repo.Create(ctx, body)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating course")
		message(w, "error", "Failed to create course")
		return
	}

	logger.Info().Int("id", created.ID).Msg("Course created")
	w.Header().Set("HX-Trigger", "refreshTable")
	message(w, "success", "Course added successfully!")
}

func (r *Router) UpdateCourse(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	id, ok := parseID(w, req)
	if !ok {
		return
	}
	body, ok := parseCourse(w, req)
	if !ok {
		return
	}

	if _, err := r.repo.Update(ctx, id, body); err != nil {
		logger.Error().Err(err).Int("id", id).Msg("Error updating course")
		message(w, "error", "Failed to update course")
		return
	}

	w.Header().Set("HX-Trigger", "refreshTable")
	message(w, "success", "Course updated successfully!")
}

func (r *Router) DeleteCourse(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	id, ok := parseID(w, req)
	if !ok {
		return
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Int("id", id).Msg("Error deleting course")
		message(w, "error", "Failed to delete course")
		return
	}

	w.Header().Set("HX-Trigger", "refreshTable")
	message(w, "success", "Course deleted successfully!")
}

func parseID(w http.ResponseWriter, req *http.Request) (int, bool) {
	idStr := chi.URLParam(req, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		hlog.FromRequest(req).Warn().Str("id", idStr).Msg("Invalid course ID")
		message(w, "error", "Invalid course ID")
		return 0, false
	}
	return id, true
}

func parseCourse(w http.ResponseWriter, req *http.Request) (Course, bool) {
	if err := req.ParseForm(); err != nil {
		hlog.FromRequest(req).Warn().Err(err).Msg("Failed to parse form")
		message(w, "error", "Invalid form data")
		return Course{}, false
	}

	title := strings.TrimSpace(req.FormValue("title"))
	if title == "" {
		message(w, "error", "Title is required")
		return Course{}, false
	}

	return Course{
		Title:       title,
		Description: strings.TrimSpace(req.FormValue("description")),
	}, true
}

// message answers an HTMX form with a status line. It is always a 200 so HTMX swaps it in.
func message(w http.ResponseWriter, class, text string) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<div class="%s">%s</div>`, class, template.HTMLEscapeString(text))
}
