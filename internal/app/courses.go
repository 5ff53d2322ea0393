package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/schedule"
	"github.com/shrimpsizemoose/studieplan/internal/scoring"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

type SortOption string

const (
	SortDefault  SortOption = "default"
	SortNameAsc  SortOption = "name-asc"
	SortNameDesc SortOption = "name-desc"
	SortStatus   SortOption = "status"
	SortDay      SortOption = "day"
	SortCredits  SortOption = "credits"
)

var SortLabels = map[SortOption]string{
	SortDefault:  "Default",
	SortNameAsc:  "Name (A-Z)",
	SortNameDesc: "Name (Z-A)",
	SortStatus:   "Status",
	SortDay:      "Day",
	SortCredits:  "Credits",
}

// ParseSortOption treats an empty value as the default order.
func ParseSortOption(s string) (SortOption, bool) {
	if s == "" {
		return SortDefault, true
	}
	opt := SortOption(s)
	_, ok := SortLabels[opt]
	return opt, ok
}

// SortCourses returns a sorted copy; the default option keeps store order.
func SortCourses(courses []models.CourseSummary, by SortOption) []models.CourseSummary {
	sorted := make([]models.CourseSummary, len(courses))
	copy(sorted, courses)

	switch by {
	case SortNameAsc, SortNameDesc:
		// collators are not safe for concurrent use
		c := collate.New(language.Spanish, collate.Loose)
		sort.SliceStable(sorted, func(i, j int) bool {
			cmp := c.CompareString(sorted[i].Name, sorted[j].Name)
			if by == SortNameDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	case SortStatus:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Status.Rank() < sorted[j].Status.Rank()
		})
	case SortDay:
		sort.SliceStable(sorted, func(i, j int) bool {
			return schedule.DayOrder(sorted[i].DayText()) < schedule.DayOrder(sorted[j].DayText())
		})
	case SortCredits:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Credits > sorted[j].Credits
		})
	}
	return sorted
}

type CourseFilter struct {
	Status   models.Status
	Semester int
	Sort     SortOption
}

// ParseCourseFilter reads the status, semester and sort query values.
func ParseCourseFilter(status, semester, sortBy string) (CourseFilter, error) {
	var f CourseFilter

	if status != "" {
		f.Status = models.Status(strings.ToUpper(status))
		if !f.Status.Valid() {
			return f, invalid(fmt.Errorf("unknown status %q", status))
		}
	}

	if semester != "" {
		n, err := strconv.Atoi(semester)
		if err != nil || n < 1 || n > 10 {
			return f, invalid(fmt.Errorf("semester must be between 1 and 10, got %q", semester))
		}
		f.Semester = n
	}

	opt, ok := ParseSortOption(sortBy)
	if !ok {
		return f, invalid(fmt.Errorf("unknown sort option %q", sortBy))
	}
	f.Sort = opt
	return f, nil
}

type CourseListItem struct {
	models.CourseSummary
	Average *float64     `json:"average"`
	Band    scoring.Band `json:"band,omitempty"`
}

func withAverage(c models.CourseSummary) CourseListItem {
	item := CourseListItem{CourseSummary: c, Average: scoring.CourseAverage(c.Grades)}
	if item.Average != nil {
		item.Band = scoring.BandFor(*item.Average)
	}
	return item
}

func (s *Service) ListCourses(f CourseFilter) ([]CourseListItem, error) {
	var (
		courses []models.CourseSummary
		err     error
	)
	if f.Semester > 0 {
		courses, err = s.Store.ListCoursesBySemester(f.Semester)
	} else {
		courses, err = s.Store.ListCourses()
	}
	if err != nil {
		return nil, err
	}

	filtered := courses[:0:0]
	for _, c := range courses {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		filtered = append(filtered, c)
	}

	items := make([]CourseListItem, 0, len(filtered))
	for _, c := range SortCourses(filtered, f.Sort) {
		items = append(items, withAverage(c))
	}
	return items, nil
}

type CourseView struct {
	models.CourseDetail
	Average    *float64     `json:"average"`
	Band       scoring.Band `json:"band,omitempty"`
	DayLabel   string       `json:"dayLabel,omitempty"`
	TimeLabel  string       `json:"timeLabel,omitempty"`
	StatusText string       `json:"statusLabel"`
}

func (s *Service) Course(id string) (*CourseView, error) {
	detail, err := s.Store.GetCourse(id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("course %s: %w", id, store.ErrNotFound)
	}

	view := &CourseView{
		CourseDetail: *detail,
		Average:      scoring.CourseAverage(detail.Grades),
		StatusText:   detail.Status.Label(),
	}
	if view.Average != nil {
		view.Band = scoring.BandFor(*view.Average)
	}
	if day := detail.DayText(); strings.TrimSpace(day) != "" {
		view.DayLabel = schedule.DayLabel(day)
	}
	if t := detail.TimeText(); strings.TrimSpace(t) != "" {
		view.TimeLabel = schedule.ParseTimeRange(t).String()
	}
	return view, nil
}

// CourseByCode looks a course up by its catalog code, ignoring case.
func (s *Service) CourseByCode(code string) (*CourseView, error) {
	courses, err := s.Store.ListCourses()
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		if strings.EqualFold(c.Code, strings.TrimSpace(code)) {
			return s.Course(c.ID)
		}
	}
	return nil, fmt.Errorf("course %s: %w", code, store.ErrNotFound)
}

// UpdateCourseStatus only accepts the four known statuses; the lenient
// fallback of ParseStatus is for reading stored rows, not for input.
func (s *Service) UpdateCourseStatus(id, status string) (*CourseView, error) {
	st := models.Status(strings.ToUpper(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, invalid(fmt.Errorf("unknown status %q", status))
	}
	if err := s.Store.UpdateCourseStatus(id, st); err != nil {
		return nil, err
	}
	return s.Course(id)
}

func (s *Service) requireCourse(id string) error {
	detail, err := s.Store.GetCourse(id)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("course %s: %w", id, store.ErrNotFound)
	}
	return nil
}

type GradeInput struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Momento string  `json:"momento"`
}

func (s *Service) AddGrade(courseID string, in GradeInput) (*models.Grade, error) {
	grade := models.NewGrade(courseID, strings.TrimSpace(in.Label), in.Value, in.Weight, models.ParseMomento(in.Momento))
	if err := grade.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.requireCourse(courseID); err != nil {
		return nil, err
	}
	if err := s.Store.CreateGrade(grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *Service) UpdateGrade(id string, patch models.GradePatch) (*models.Grade, error) {
	if err := patch.Validate(); err != nil {
		return nil, invalid(err)
	}
	return s.Store.UpdateGrade(id, patch)
}

func (s *Service) DeleteGrade(id string) (*models.Grade, error) {
	return s.Store.DeleteGrade(id)
}

type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Service) AddNote(courseID string, in NoteInput) (*models.Note, error) {
	note := models.NewNote(courseID, strings.TrimSpace(in.Title), in.Content)
	if err := note.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.requireCourse(courseID); err != nil {
		return nil, err
	}
	if err := s.Store.CreateNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) UpdateNote(id string, patch models.NotePatch) (*models.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, invalid(err)
	}
	return s.Store.UpdateNote(id, patch)
}

func (s *Service) DeleteNote(id string) (*models.Note, error) {
	return s.Store.DeleteNote(id)
}

func (s *Service) ToggleNotePin(id string) (*models.Note, error) {
	return s.Store.ToggleNotePin(id)
}
