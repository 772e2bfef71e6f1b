package course

import "github.com/andrasnagy-data/learning-center/internal/components/session"

type (
	Course struct {
		ID          int    `json:"id,omitempty"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	// CoursesTemplateData feeds courses.html.
	CoursesTemplateData struct {
		Session session.SessionState
		Courses []Course
		Error   string
	}
)
