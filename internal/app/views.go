package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/schedule"
	"github.com/shrimpsizemoose/studieplan/internal/scoring"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

const (
	totalSemesters = 10
	dateFormat     = "2006-01-02"
	defaultStudent = "Student"
)

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func countStatus[T any](items []T, status models.Status, get func(T) models.Status) int {
	n := 0
	for _, it := range items {
		if get(it) == status {
			n++
		}
	}
	return n
}

func summaryStatus(c models.CourseSummary) models.Status { return c.Status }

type UpcomingClass struct {
	CourseID  string  `json:"courseId"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Professor *string `json:"professor,omitempty"`
	TeamsLink *string `json:"teamsLink,omitempty"`
	DayLabel  string  `json:"dayLabel"`
	StartsAt  string  `json:"startsAt"`
	NextDate  string  `json:"nextDate"`
}

type SemesterCount struct {
	Semester int  `json:"semester"`
	Count    int  `json:"count"`
	Current  bool `json:"current"`
}

type Dashboard struct {
	StudentName     string          `json:"studentName"`
	CurrentSemester int             `json:"currentSemester"`
	CurrentMomento  models.Momento  `json:"currentMomento"`
	TotalCourses    int             `json:"totalCourses"`
	Completed       int             `json:"completed"`
	InProgress      int             `json:"inProgress"`
	Remaining       int             `json:"remaining"`
	Percentage      int             `json:"percentage"`
	GPA             *float64        `json:"gpa"`
	Upcoming        []UpcomingClass `json:"upcoming"`
	Roadmap         []SemesterCount `json:"roadmap"`
}

func (s *Service) Dashboard() (*Dashboard, error) {
	courses, err := s.Store.ListCourses()
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		StudentName:     defaultStudent,
		CurrentSemester: settings.CurrentSemester,
		CurrentMomento:  settings.CurrentMomento,
		TotalCourses:    len(courses),
		Completed:       countStatus(courses, models.StatusCompleted, summaryStatus),
		InProgress:      countStatus(courses, models.StatusInProgress, summaryStatus),
		Upcoming:        []UpcomingClass{},
		Roadmap:         make([]SemesterCount, 0, totalSemesters),
	}
	if settings.StudentName != nil && *settings.StudentName != "" {
		d.StudentName = *settings.StudentName
	}
	d.Remaining = d.TotalCourses - d.Completed - d.InProgress
	d.Percentage = percent(d.Completed, d.TotalCourses)

	report := scoring.Summarize(courses)
	d.GPA = report.GPA

	today := s.Now()
	perSemester := make(map[int]int)
	for _, c := range courses {
		perSemester[c.Semester]++

		if c.Status != models.StatusInProgress || !c.Momento.ActiveIn(settings.CurrentMomento) || !c.Scheduled() {
			continue
		}
		d.Upcoming = append(d.Upcoming, UpcomingClass{
			CourseID:  c.ID,
			Code:      c.Code,
			Name:      c.Name,
			Professor: c.Professor,
			TeamsLink: c.TeamsLink,
			DayLabel:  schedule.DayLabel(c.DayText()),
			StartsAt:  schedule.FormatTime(schedule.ParseTime(c.TimeText())),
			NextDate:  schedule.NextOccurrence(c.DayText(), today).Format(dateFormat),
		})
	}

	for n := 1; n <= totalSemesters; n++ {
		d.Roadmap = append(d.Roadmap, SemesterCount{
			Semester: n,
			Count:    perSemester[n],
			Current:  n == settings.CurrentSemester,
		})
	}

	return d, nil
}

type GradeRow struct {
	ID         string         `json:"id"`
	CourseID   string         `json:"courseId"`
	CourseName string         `json:"courseName"`
	CourseCode string         `json:"courseCode"`
	Semester   int            `json:"semester"`
	Label      string         `json:"label"`
	Value      float64        `json:"value"`
	Weight     float64        `json:"weight"`
	Momento    models.Momento `json:"momento,omitempty"`
}

type GradesOverview struct {
	*scoring.Report
	TotalCourses int        `json:"totalCourses"`
	Grades       []GradeRow `json:"grades"`
}

func (s *Service) GradesOverview() (*GradesOverview, error) {
	courses, err := s.Store.ListCourses()
	if err != nil {
		return nil, err
	}

	overview := &GradesOverview{
		Report:       scoring.Summarize(courses),
		TotalCourses: len(courses),
		Grades:       []GradeRow{},
	}
	for _, c := range courses {
		for _, g := range c.Grades {
			overview.Grades = append(overview.Grades, GradeRow{
				ID:         g.ID,
				CourseID:   c.ID,
				CourseName: c.Name,
				CourseCode: c.Code,
				Semester:   c.Semester,
				Label:      g.Label,
				Value:      g.Value,
				Weight:     g.Weight,
				Momento:    g.Momento,
			})
		}
	}
	return overview, nil
}

type SemesterCourse struct {
	ID      string         `json:"id"`
	Code    string         `json:"code"`
	Name    string         `json:"name"`
	Credits int            `json:"credits"`
	Status  models.Status  `json:"status"`
	Momento models.Momento `json:"momento,omitempty"`
	Average *float64       `json:"average"`
}

type SemesterSummary struct {
	Semester      int              `json:"semester"`
	Total         int              `json:"total"`
	Completed     int              `json:"completed"`
	Percent       int              `json:"percent"`
	Credits       int              `json:"credits"`
	Current       bool             `json:"current"`
	AllCompleted  bool             `json:"allCompleted"`
	HasInProgress bool             `json:"hasInProgress"`
	Courses       []SemesterCourse `json:"courses"`
}

type Roadmap struct {
	TotalCourses    int               `json:"totalCourses"`
	Completed       int               `json:"completed"`
	Percent         int               `json:"percent"`
	CreditsEarned   int               `json:"creditsEarned"`
	TotalCredits    int               `json:"totalCredits"`
	CurrentSemester int               `json:"currentSemester"`
	Semesters       []SemesterSummary `json:"semesters"`
}

func semesterCourse(c models.CourseSummary) SemesterCourse {
	return SemesterCourse{
		ID:      c.ID,
		Code:    c.Code,
		Name:    c.Name,
		Credits: c.Credits,
		Status:  c.Status,
		Momento: c.Momento,
		Average: scoring.CourseAverage(c.Grades),
	}
}

func summarizeSemester(n int, courses []models.CourseSummary, current int) SemesterSummary {
	sum := SemesterSummary{
		Semester: n,
		Total:    len(courses),
		Current:  n == current,
		Courses:  make([]SemesterCourse, 0, len(courses)),
	}
	for _, c := range courses {
		sum.Credits += c.Credits
		switch c.Status {
		case models.StatusCompleted:
			sum.Completed++
		case models.StatusInProgress:
			sum.HasInProgress = true
		}
		sum.Courses = append(sum.Courses, semesterCourse(c))
	}
	sum.Percent = percent(sum.Completed, sum.Total)
	sum.AllCompleted = sum.Total > 0 && sum.Completed == sum.Total
	return sum
}

// Semesters groups every course by semester. Only semesters with courses appear.
func (s *Service) Semesters() (*Roadmap, error) {
	courses, err := s.Store.ListCourses()
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}

	r := &Roadmap{
		TotalCourses:    len(courses),
		CurrentSemester: settings.CurrentSemester,
		Semesters:       []SemesterSummary{},
	}

	bySemester := make(map[int][]models.CourseSummary)
	for _, c := range courses {
		bySemester[c.Semester] = append(bySemester[c.Semester], c)
		r.TotalCredits += c.Credits
		if c.Status == models.StatusCompleted {
			r.Completed++
			r.CreditsEarned += c.Credits
		}
	}
	r.Percent = percent(r.Completed, r.TotalCourses)

	numbers := make([]int, 0, len(bySemester))
	for n := range bySemester {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		r.Semesters = append(r.Semesters, summarizeSemester(n, bySemester[n], settings.CurrentSemester))
	}
	return r, nil
}

type SemesterDetail struct {
	SemesterSummary
	MomentoI    []SemesterCourse `json:"momentoI"`
	MomentoII   []SemesterCourse `json:"momentoII"`
	MomentoFull []SemesterCourse `json:"momentoFull"`
}

// SemesterDetail is not found for numbers outside 1..10 and for empty semesters.
func (s *Service) SemesterDetail(n int) (*SemesterDetail, error) {
	if n < 1 || n > totalSemesters {
		return nil, fmt.Errorf("semester %d: %w", n, store.ErrNotFound)
	}
	courses, err := s.Store.ListCoursesBySemester(n)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("semester %d: %w", n, store.ErrNotFound)
	}
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}

	d := &SemesterDetail{
		SemesterSummary: summarizeSemester(n, courses, settings.CurrentSemester),
		MomentoI:        []SemesterCourse{},
		MomentoII:       []SemesterCourse{},
		MomentoFull:     []SemesterCourse{},
	}
	for _, c := range d.Courses {
		switch c.Momento {
		case models.MomentoII:
			d.MomentoII = append(d.MomentoII, c)
		case models.MomentoFull:
			d.MomentoFull = append(d.MomentoFull, c)
		default:
			// courses without a momento are listed with the first half
			d.MomentoI = append(d.MomentoI, c)
		}
	}
	return d, nil
}

type ScheduleClass struct {
	CourseID  string             `json:"courseId"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Professor *string            `json:"professor,omitempty"`
	TeamsLink *string            `json:"teamsLink,omitempty"`
	Momento   models.Momento     `json:"momento,omitempty"`
	Day       string             `json:"day"`
	Time      string             `json:"time"`
	Range     schedule.TimeRange `json:"range"`
	TimeLabel string             `json:"timeLabel"`
}

type ScheduleDay struct {
	Day      string          `json:"day"`
	Label    string          `json:"label"`
	NextDate string          `json:"nextDate"`
	Today    bool            `json:"today"`
	Classes  []ScheduleClass `json:"classes"`
}

type ScheduleView struct {
	Semester   int              `json:"semester"`
	Momento    models.Momento   `json:"momento"`
	ClassCount int              `json:"classCount"`
	Layout     *schedule.Layout `json:"layout"`
	Days       []ScheduleDay    `json:"days"`
	Courses    []ScheduleClass  `json:"courses"`
}

// activeScheduleCourses returns the current semester's courses running in
// window, falling back to the stored momento when window is empty.
func (s *Service) activeScheduleCourses(window string) ([]models.Course, *models.Settings, models.Momento, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, nil, "", err
	}

	momento := settings.CurrentMomento
	if strings.TrimSpace(window) != "" {
		momento = models.ParseMomento(window)
		if momento == models.MomentoNone {
			return nil, nil, "", invalid(fmt.Errorf("unknown momento %q", window))
		}
	}

	courses, err := s.Store.ListScheduleCourses(settings.CurrentSemester)
	if err != nil {
		return nil, nil, "", err
	}

	active := courses[:0:0]
	for _, c := range courses {
		if c.Momento.ActiveIn(momento) {
			active = append(active, c)
		}
	}
	return active, settings, momento, nil
}

func scheduleClass(c models.Course) ScheduleClass {
	r := schedule.ParseTimeRange(c.TimeText())
	return ScheduleClass{
		CourseID:  c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Professor: c.Professor,
		TeamsLink: c.TeamsLink,
		Momento:   c.Momento,
		Day:       c.DayText(),
		Time:      c.TimeText(),
		Range:     r,
		TimeLabel: r.String(),
	}
}

func (s *Service) Schedule(window string) (*ScheduleView, error) {
	courses, settings, momento, err := s.activeScheduleCourses(window)
	if err != nil {
		return nil, err
	}

	view := &ScheduleView{
		Semester: settings.CurrentSemester,
		Momento:  momento,
		Days:     []ScheduleDay{},
		Courses:  make([]ScheduleClass, 0, len(courses)),
	}

	var entries []schedule.Entry
	grouped := make(map[string][]ScheduleClass)
	for _, c := range courses {
		class := scheduleClass(c)
		view.Courses = append(view.Courses, class)

		if strings.TrimSpace(c.DayText()) == "" {
			continue
		}
		view.ClassCount++
		key := schedule.NormalizeDay(c.DayText())
		grouped[key] = append(grouped[key], class)

		if c.Scheduled() {
			entries = append(entries, schedule.Entry{CourseID: c.ID, Day: c.DayText(), Time: c.TimeText()})
		}
	}
	view.Layout = schedule.Compute(entries)

	days := make([]string, 0, len(grouped))
	for day := range grouped {
		days = append(days, day)
	}
	sort.Strings(days)
	schedule.SortDays(days)

	now := s.Now()
	today := schedule.DayKey(now.Weekday())
	for _, day := range days {
		view.Days = append(view.Days, ScheduleDay{
			Day:      day,
			Label:    schedule.DayLabel(day),
			NextDate: schedule.NextOccurrence(day, now).Format(dateFormat),
			Today:    day == today,
			Classes:  grouped[day],
		})
	}
	return view, nil
}

// classStart places the range of a class on the given date in loc.
func classStart(date time.Time, r schedule.TimeRange, loc *time.Location) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	start := midnight.Add(time.Duration(r.StartMinute()) * time.Minute)
	end := midnight.Add(time.Duration(r.EndMinute()) * time.Minute)
	return start, end
}
