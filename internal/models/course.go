package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted  Status = "COMPLETED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPlanned    Status = "PLANNED"
	StatusNotStarted Status = "NOT_STARTED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusCompleted, StatusInProgress, StatusPlanned, StatusNotStarted}

var statusLabels = map[Status]string{
	StatusCompleted:  "Completed",
	StatusInProgress: "In Progress",
	StatusPlanned:    "Planned",
	StatusNotStarted: "Not Started",
}

// ParseStatus never fails: anything unknown is NOT_STARTED.
func ParseStatus(s string) Status {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusLabels[st]; ok {
		return st
	}
	return StatusNotStarted
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[ParseStatus(string(s))]
}

// Rank is the position of s in Statuses.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return len(Statuses)
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StatusNotStarted
	case string:
		*s = ParseStatus(v)
	case []byte:
		*s = ParseStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	return nil
}

func (s Status) Value() (driver.Value, error) {
	return string(ParseStatus(string(s))), nil
}

type Momento string

const (
	MomentoNone Momento = ""
	MomentoI    Momento = "I"
	MomentoII   Momento = "II"
	MomentoFull Momento = "FULL"
)

// ParseMomento maps unknown markers to MomentoNone.
func ParseMomento(s string) Momento {
	switch m := Momento(strings.ToUpper(strings.TrimSpace(s))); m {
	case MomentoI, MomentoII, MomentoFull:
		return m
	default:
		return MomentoNone
	}
}

// ActiveIn reports whether a course tagged m runs during window.
// FULL courses run in both halves of the semester.
func (m Momento) ActiveIn(window Momento) bool {
	return m == window || m == MomentoFull
}

func (m *Momento) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = MomentoNone
	case string:
		*m = ParseMomento(v)
	case []byte:
		*m = ParseMomento(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Momento", src)
	}
	return nil
}

func (m Momento) Value() (driver.Value, error) {
	if m == MomentoNone {
		return nil, nil
	}
	return string(m), nil
}

type Course struct {
	ID             string  `db:"id" json:"id"`
	Code           string  `db:"code" json:"code" validate:"required,max=32"`
	Name           string  `db:"name" json:"name" validate:"required,max=200"`
	Semester       int     `db:"semester" json:"semester" validate:"min=1,max=10"`
	Credits        int     `db:"credits" json:"credits" validate:"gt=0"`
	Status         Status  `db:"status" json:"status"`
	Professor      *string `db:"professor" json:"professor,omitempty"`
	ProfessorEmail *string `db:"professor_email" json:"professorEmail,omitempty" validate:"omitempty,email"`
	Day            *string `db:"class_day" json:"day,omitempty"`
	Time           *string `db:"class_time" json:"time,omitempty"`
	Group          *string `db:"group_label" json:"group,omitempty"`
	Momento        Momento `db:"momento" json:"momento,omitempty"`
	MomentoDates   *string `db:"momento_dates" json:"momentoDates,omitempty"`
	TeamsLink      *string `db:"teams_link" json:"teamsLink,omitempty" validate:"omitempty,url"`
}

func (c *Course) Validate() error {
	return validate.Struct(c)
}

// EnsureID assigns a fresh identifier when the course has none yet.
func (c *Course) EnsureID() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
}

// DayText and TimeText return the free-text fields, empty when unset.
func (c *Course) DayText() string {
	if c.Day == nil {
		return ""
	}
	return *c.Day
}

func (c *Course) TimeText() string {
	if c.Time == nil {
		return ""
	}
	return *c.Time
}

// Scheduled reports whether the course has both a day and a time.
func (c *Course) Scheduled() bool {
	return strings.TrimSpace(c.DayText()) != "" && strings.TrimSpace(c.TimeText()) != ""
}

// CourseSummary is a course with its grades and the number of notes attached.
type CourseSummary struct {
	Course
	Grades    []Grade `json:"grades"`
	NoteCount int     `json:"noteCount"`
}

type CourseDetail struct {
	Course
	Grades []Grade `json:"grades"`
	Notes  []Note  `json:"notes"`
}
