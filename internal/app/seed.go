package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/models"
)

// CatalogCourse is one entry of the static course catalog.
type CatalogCourse struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Semester       int     `json:"semester"`
	Credits        int     `json:"credits"`
	Status         string  `json:"status"`
	Professor      *string `json:"professor"`
	ProfessorEmail *string `json:"professorEmail"`
	Day            *string `json:"day"`
	Time           *string `json:"time"`
	Group          *string `json:"group"`
	Momento        *string `json:"momento"`
	MomentoDates   *string `json:"momentoDates"`
	TeamsLink      *string `json:"teamsLink"`
}

func (c CatalogCourse) course() *models.Course {
	course := &models.Course{
		Code:           c.Code,
		Name:           c.Name,
		Semester:       c.Semester,
		Credits:        c.Credits,
		Status:         models.ParseStatus(c.Status),
		Professor:      c.Professor,
		ProfessorEmail: c.ProfessorEmail,
		Day:            c.Day,
		Time:           c.Time,
		Group:          c.Group,
		MomentoDates:   c.MomentoDates,
		TeamsLink:      c.TeamsLink,
	}
	if c.Momento != nil {
		course.Momento = models.ParseMomento(*c.Momento)
	}
	return course
}

func ReadCatalog(r io.Reader) ([]CatalogCourse, error) {
	var catalog []CatalogCourse
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return catalog, nil
}

func LoadCatalog(path string) ([]CatalogCourse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// Seed upserts every catalog course by code and creates the settings row
// if it does not exist yet. Existing settings are left untouched.
func (s *Service) Seed(catalog []CatalogCourse, studentName string) (int, error) {
	for i, entry := range catalog {
		course := entry.course()
		if err := course.Validate(); err != nil {
			return i, invalid(fmt.Errorf("catalog entry %d (%s): %w", i, entry.Code, err))
		}
		if err := s.Store.UpsertCourse(course); err != nil {
			return i, err
		}
		logger.Debug.Printf("Seeded %s %s", course.Code, course.Name)
	}

	existing, err := s.Store.GetSettings()
	if err != nil {
		return len(catalog), err
	}
	if existing == nil {
		settings := models.DefaultSettings()
		if studentName != "" {
			settings.StudentName = &studentName
		}
		if err := s.Store.UpsertSettings(settings); err != nil {
			return len(catalog), err
		}
	}

	return len(catalog), nil
}
