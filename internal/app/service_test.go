package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/store"
	"github.com/shrimpsizemoose/studieplan/internal/store/sqlite"
)

func strPtr(s string) *string { return &s }

// monday is the pinned "now" of every service test: Monday 2024-01-15, 10:00 UTC.
var monday = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = ":0"
	cfg.Database.DSN = ":memory:"
	cfg.Display.TimeZone = "UTC"
	cfg.applyDefaults()
	return cfg
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)

	cfg := testConfig()
	auth, err := NewAuth(cfg)
	require.NoError(t, err)

	svc := NewServiceWith(cfg, st, auth)
	svc.SetClock(func() time.Time { return monday })
	t.Cleanup(func() {
		require.NoError(t, svc.Close())
	})
	return svc
}

func testCatalog() []CatalogCourse {
	return []CatalogCourse{
		{
			Code: "MAT101", Name: "Calculus", Semester: 1, Credits: 4, Status: "IN_PROGRESS",
			Professor: strPtr("Ana Ruiz"), Day: strPtr("Lunes"), Time: strPtr("6:30 PM - 8:30 PM"),
			Momento: strPtr("I"), TeamsLink: strPtr("https://teams.example.com/mat101"),
		},
		{
			Code: "INF101", Name: "Algorithms", Semester: 1, Credits: 3, Status: "IN_PROGRESS",
			Day: strPtr("Miércoles"), Time: strPtr("7 pm"), Momento: strPtr("FULL"),
		},
		{
			Code: "ENG101", Name: "English", Semester: 1, Credits: 2, Status: "COMPLETED",
			Day: strPtr("Sábado"), Time: strPtr("8:00 AM - 10:00 AM"), Momento: strPtr("II"),
		},
		{
			Code: "HIS101", Name: "History", Semester: 1, Credits: 1, Status: "PLANNED",
			Momento: strPtr("I"),
		},
		{
			Code: "FIS201", Name: "Physics", Semester: 2, Credits: 3, Status: "whatever",
		},
	}
}

// seededService returns a service with the test catalog loaded and a map of
// course ids by code.
func seededService(t *testing.T) (*Service, map[string]string) {
	svc := newTestService(t)
	n, err := svc.Seed(testCatalog(), "Luis")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	items, err := svc.ListCourses(CourseFilter{})
	require.NoError(t, err)
	ids := make(map[string]string)
	for _, c := range items {
		ids[c.Code] = c.ID
	}
	return svc, ids
}

func codes(items []CourseListItem) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Code)
	}
	return out
}

func TestSeed(t *testing.T) {
	svc, ids := seededService(t)
	assert.Len(t, ids, 5)

	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.CurrentSemester)
	assert.Equal(t, models.MomentoI, settings.CurrentMomento)
	require.NotNil(t, settings.StudentName)
	assert.Equal(t, "Luis", *settings.StudentName)

	physics, err := svc.Course(ids["FIS201"])
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, physics.Status, "unknown catalog status")

	// reseeding keeps ids and leaves existing settings alone
	_, err = svc.Seed(testCatalog(), "Someone Else")
	require.NoError(t, err)
	settings, err = svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, "Luis", *settings.StudentName)

	again, _ := svc.ListCourses(CourseFilter{})
	assert.Len(t, again, 5)

	_, err = svc.Seed([]CatalogCourse{{Code: "BAD", Name: "Bad", Semester: 12, Credits: 1}}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	svc := newTestService(t)

	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	updated, err := svc.UpdateSettings(SettingsInput{CurrentSemester: 3, CurrentMomento: "ii", StudentName: strPtr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentSemester)
	assert.Equal(t, models.MomentoII, updated.CurrentMomento)

	_, err = svc.UpdateSettings(SettingsInput{CurrentSemester: 0, CurrentMomento: "I"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateSettings(SettingsInput{CurrentSemester: 2, CurrentMomento: "III"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboard(t *testing.T) {
	svc, _ := seededService(t)

	d, err := svc.Dashboard()
	require.NoError(t, err)

	assert.Equal(t, "Luis", d.StudentName)
	assert.Equal(t, 5, d.TotalCourses)
	assert.Equal(t, 1, d.Completed)
	assert.Equal(t, 2, d.InProgress)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, 20, d.Percentage)
	assert.Nil(t, d.GPA, "no grades yet")

	require.Len(t, d.Upcoming, 2, "in-progress classes of momento I, FULL included")
	assert.Equal(t, "INF101", d.Upcoming[0].Code)
	assert.Equal(t, "Wednesday", d.Upcoming[0].DayLabel)
	assert.Equal(t, "7:00 PM", d.Upcoming[0].StartsAt)
	assert.Equal(t, "2024-01-17", d.Upcoming[0].NextDate)
	assert.Equal(t, "MAT101", d.Upcoming[1].Code)
	assert.Equal(t, "2024-01-15", d.Upcoming[1].NextDate, "a class today is next today")

	require.Len(t, d.Roadmap, 10)
	assert.Equal(t, SemesterCount{Semester: 1, Count: 4, Current: true}, d.Roadmap[0])
	assert.Equal(t, SemesterCount{Semester: 2, Count: 1}, d.Roadmap[1])
	assert.Equal(t, 0, d.Roadmap[9].Count)
}

func TestGradesOverview(t *testing.T) {
	svc, ids := seededService(t)

	_, err := svc.AddGrade(ids["MAT101"], GradeInput{Label: "Parcial 1", Value: 5, Weight: 70})
	require.NoError(t, err)
	_, err = svc.AddGrade(ids["MAT101"], GradeInput{Label: "Quiz", Value: 3, Weight: 30, Momento: "I"})
	require.NoError(t, err)
	_, err = svc.AddGrade(ids["INF101"], GradeInput{Label: "Taller", Value: 2, Weight: 0})
	require.NoError(t, err)

	overview, err := svc.GradesOverview()
	require.NoError(t, err)

	require.NotNil(t, overview.GPA)
	// (4.4*4 + 2*3) / 7
	assert.InDelta(t, 3.37, *overview.GPA, 1e-9)
	assert.Equal(t, 2, overview.GradedCount)
	assert.Equal(t, 50, overview.PassingRate)
	assert.Equal(t, 5, overview.TotalCourses)
	assert.Len(t, overview.Grades, 3)
	require.Len(t, overview.SemesterGPAs, 1)
	assert.Equal(t, 1, overview.SemesterGPAs[0].Semester)

	d, err := svc.Dashboard()
	require.NoError(t, err)
	require.NotNil(t, d.GPA)
	assert.InDelta(t, 3.37, *d.GPA, 1e-9)
}

func TestSemesters(t *testing.T) {
	svc, _ := seededService(t)

	r, err := svc.Semesters()
	require.NoError(t, err)
	assert.Equal(t, 5, r.TotalCourses)
	assert.Equal(t, 13, r.TotalCredits)
	assert.Equal(t, 2, r.CreditsEarned)
	assert.Equal(t, 20, r.Percent)

	require.Len(t, r.Semesters, 2)
	first := r.Semesters[0]
	assert.Equal(t, 1, first.Semester)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 25, first.Percent)
	assert.Equal(t, 10, first.Credits)
	assert.True(t, first.Current)
	assert.True(t, first.HasInProgress)
	assert.False(t, first.AllCompleted)

	detail, err := svc.SemesterDetail(1)
	require.NoError(t, err)
	assert.Len(t, detail.MomentoI, 2)
	assert.Len(t, detail.MomentoII, 1)
	assert.Len(t, detail.MomentoFull, 1)

	for _, n := range []int{0, 3, 11} {
		_, err := svc.SemesterDetail(n)
		assert.ErrorIs(t, err, store.ErrNotFound, "semester %d", n)
	}
}

func TestSchedule(t *testing.T) {
	svc, ids := seededService(t)

	t.Run("defaults to the stored momento", func(t *testing.T) {
		view, err := svc.Schedule("")
		require.NoError(t, err)

		assert.Equal(t, models.MomentoI, view.Momento)
		assert.Len(t, view.Courses, 3)
		assert.Equal(t, 2, view.ClassCount)

		require.Len(t, view.Days, 2)
		assert.Equal(t, "lunes", view.Days[0].Day)
		assert.Equal(t, "Monday", view.Days[0].Label)
		assert.True(t, view.Days[0].Today)
		assert.Equal(t, "2024-01-15", view.Days[0].NextDate)
		assert.Equal(t, "miercoles", view.Days[1].Day)
		assert.False(t, view.Days[1].Today)

		require.Len(t, view.Layout.Blocks, 2)
		require.Len(t, view.Layout.Segments, 1)
		assert.Equal(t, 18*60, view.Layout.Segments[0].Start)
		assert.Equal(t, 21*60, view.Layout.Segments[0].End)

		for _, b := range view.Layout.Blocks {
			if b.CourseID == ids["MAT101"] {
				assert.Equal(t, 0, b.DayColumn)
				assert.Equal(t, 18*60+30, b.StartMinute)
			}
		}
	})

	t.Run("second half", func(t *testing.T) {
		view, err := svc.Schedule("II")
		require.NoError(t, err)
		require.Len(t, view.Days, 2)
		assert.Equal(t, "miercoles", view.Days[0].Day)
		assert.Equal(t, "sabado", view.Days[1].Day)
		assert.Equal(t, "2024-01-20", view.Days[1].NextDate)
	})

	t.Run("unknown momento", func(t *testing.T) {
		_, err := svc.Schedule("III")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestListCourses(t *testing.T) {
	svc, _ := seededService(t)

	tests := []struct {
		name     string
		filter   CourseFilter
		expected []string
	}{
		{
			name:     "store order by default",
			filter:   CourseFilter{},
			expected: []string{"INF101", "MAT101", "HIS101", "ENG101", "FIS201"},
		},
		{
			name:     "by name",
			filter:   CourseFilter{Sort: SortNameAsc},
			expected: []string{"INF101", "MAT101", "ENG101", "HIS101", "FIS201"},
		},
		{
			name:     "by name descending",
			filter:   CourseFilter{Sort: SortNameDesc},
			expected: []string{"FIS201", "HIS101", "ENG101", "MAT101", "INF101"},
		},
		{
			name:     "by status",
			filter:   CourseFilter{Sort: SortStatus},
			expected: []string{"ENG101", "INF101", "MAT101", "HIS101", "FIS201"},
		},
		{
			name:     "by day with unscheduled courses last",
			filter:   CourseFilter{Sort: SortDay},
			expected: []string{"MAT101", "INF101", "ENG101", "HIS101", "FIS201"},
		},
		{
			name:     "by credits, most first",
			filter:   CourseFilter{Sort: SortCredits},
			expected: []string{"MAT101", "INF101", "FIS201", "ENG101", "HIS101"},
		},
		{
			name:     "only in progress",
			filter:   CourseFilter{Status: models.StatusInProgress},
			expected: []string{"INF101", "MAT101"},
		},
		{
			name:     "second semester",
			filter:   CourseFilter{Semester: 2},
			expected: []string{"FIS201"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.ListCourses(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, codes(items))
		})
	}
}

func TestParseCourseFilter(t *testing.T) {
	f, err := ParseCourseFilter("in_progress", "2", "credits")
	require.NoError(t, err)
	assert.Equal(t, CourseFilter{Status: models.StatusInProgress, Semester: 2, Sort: SortCredits}, f)

	f, err = ParseCourseFilter("", "", "")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, f.Sort)

	for _, bad := range [][3]string{
		{"DROPPED", "", ""},
		{"", "0", ""},
		{"", "eleven", ""},
		{"", "", "random"},
	} {
		_, err := ParseCourseFilter(bad[0], bad[1], bad[2])
		assert.ErrorIs(t, err, ErrInvalidInput, "%v", bad)
	}
}

func TestCourseMutations(t *testing.T) {
	svc, ids := seededService(t)
	mat := ids["MAT101"]

	t.Run("status", func(t *testing.T) {
		view, err := svc.UpdateCourseStatus(mat, "completed")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, view.Status)
		assert.Equal(t, "Completed", view.StatusText)

		_, err = svc.UpdateCourseStatus(mat, "DROPPED")
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.UpdateCourseStatus("missing", "PLANNED")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("grades", func(t *testing.T) {
		_, err := svc.AddGrade(mat, GradeInput{Label: "Too high", Value: 6})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.AddGrade("missing", GradeInput{Label: "Quiz", Value: 3})
		assert.ErrorIs(t, err, store.ErrNotFound)

		grade, err := svc.AddGrade(mat, GradeInput{Label: "Quiz", Value: 3, Weight: 0})
		require.NoError(t, err)

		value := 4.5
		updated, err := svc.UpdateGrade(grade.ID, models.GradePatch{Value: &value})
		require.NoError(t, err)
		assert.InDelta(t, 4.5, updated.Value, 1e-9)

		view, err := svc.Course(mat)
		require.NoError(t, err)
		require.NotNil(t, view.Average)
		assert.InDelta(t, 4.5, *view.Average, 1e-9, "averages read the latest values")

		negative := -1.0
		_, err = svc.UpdateGrade(grade.ID, models.GradePatch{Weight: &negative})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.DeleteGrade(grade.ID)
		require.NoError(t, err)
		view, err = svc.Course(mat)
		require.NoError(t, err)
		assert.Nil(t, view.Average)
	})

	t.Run("notes", func(t *testing.T) {
		_, err := svc.AddNote(mat, NoteInput{Title: "   "})
		assert.ErrorIs(t, err, ErrInvalidInput)

		note, err := svc.AddNote(mat, NoteInput{Title: "Syllabus", Content: "chapter 1"})
		require.NoError(t, err)

		pinned, err := svc.ToggleNotePin(note.ID)
		require.NoError(t, err)
		assert.True(t, pinned.Pinned)

		content := "chapters 1-3"
		updated, err := svc.UpdateNote(note.ID, models.NotePatch{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, content, updated.Content)
		assert.True(t, updated.Pinned)

		_, err = svc.DeleteNote(note.ID)
		require.NoError(t, err)
		_, err = svc.DeleteNote(note.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("course view", func(t *testing.T) {
		view, err := svc.Course(mat)
		require.NoError(t, err)
		assert.Equal(t, "Monday", view.DayLabel)
		assert.Equal(t, "6:30 - 8:30 PM", view.TimeLabel)

		_, err = svc.Course("missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
