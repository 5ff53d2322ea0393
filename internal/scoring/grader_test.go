package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

// MockStore implements only what the grader reads; any other call panics
// through the nil embedded interface.
type MockStore struct {
	mock.Mock
	store.TrackerStore
}

func (m *MockStore) ListGrades(courseID string) ([]models.Grade, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Grade), args.Error(1)
}

func (m *MockStore) ListCourses() ([]models.CourseSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CourseSummary), args.Error(1)
}

func avg(v float64) *float64 { return &v }

func TestWeightedAverage(t *testing.T) {
	testCases := []struct {
		name     string
		grades   []Weighted
		expected float64
		ok       bool
	}{
		{
			name:   "Nothing to average",
			grades: nil,
			ok:     false,
		},
		{
			name:     "All weights zero falls back to the plain mean",
			grades:   []Weighted{{4, 0}, {2, 0}},
			expected: 3.0,
			ok:       true,
		},
		{
			name:     "Weighted by percentage",
			grades:   []Weighted{{5, 70}, {3, 30}},
			expected: 4.4,
			ok:       true,
		},
		{
			name:     "Weights need not add up to a hundred",
			grades:   []Weighted{{4, 11}, {3, 1}},
			expected: 3.92,
			ok:       true,
		},
		{
			name:     "Zero weight entries drop out once any weight is set",
			grades:   []Weighted{{5, 50}, {0, 0}},
			expected: 5.0,
			ok:       true,
		},
		{
			name:     "Single grade",
			grades:   []Weighted{{2.346, 10}},
			expected: 2.35,
			ok:       true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := WeightedAverage(tc.grades)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestGPA(t *testing.T) {
	testCases := []struct {
		name     string
		courses  []CreditAverage
		expected float64
		ok       bool
	}{
		{
			name:    "No courses",
			courses: nil,
			ok:      false,
		},
		{
			name:    "Only ungraded courses",
			courses: []CreditAverage{{Credits: 3}, {Credits: 4}},
			ok:      false,
		},
		{
			name: "Ungraded courses are ignored",
			courses: []CreditAverage{
				{Credits: 3, Average: avg(4.0)},
				{Credits: 1, Average: avg(3.0)},
				{Credits: 5, Average: nil},
			},
			expected: 3.75,
			ok:       true,
		},
		{
			name: "Rounded to two decimals",
			courses: []CreditAverage{
				{Credits: 2, Average: avg(4.1)},
				{Credits: 1, Average: avg(3.0)},
			},
			expected: 3.73,
			ok:       true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GPA(tc.courses)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestBands(t *testing.T) {
	testCases := []struct {
		value   float64
		band    Band
		passing bool
	}{
		{5.0, BandExcellent, true},
		{4.5, BandExcellent, true},
		{4.49, BandGood, true},
		{4.0, BandGood, true},
		{3.0, BandPassing, true},
		{2.99, BandAtRisk, false},
		{2.0, BandAtRisk, false},
		{1.99, BandFailing, false},
		{0, BandFailing, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.band, BandFor(tc.value), "band for %.2f", tc.value)
		assert.Equal(t, tc.passing, IsPassing(tc.value), "passing for %.2f", tc.value)
	}
}

func TestSummarize(t *testing.T) {
	courses := []models.CourseSummary{
		{
			Course: models.Course{ID: "a", Code: "MAT101", Semester: 1, Credits: 4},
			Grades: []models.Grade{{Value: 5, Weight: 70}, {Value: 3, Weight: 30}},
		},
		{
			Course: models.Course{ID: "b", Code: "INF101", Semester: 1, Credits: 2},
			Grades: []models.Grade{{Value: 2, Weight: 0}},
		},
		{
			Course: models.Course{ID: "c", Code: "FIS201", Semester: 2, Credits: 3},
			Grades: []models.Grade{{Value: 3.5, Weight: 0}},
		},
		{
			Course: models.Course{ID: "d", Code: "ENG201", Semester: 2, Credits: 3},
			Grades: []models.Grade{},
		},
	}

	report := Summarize(courses)

	require.Len(t, report.Courses, 4)
	assert.InDelta(t, 4.4, *report.Courses[0].Average, 1e-9)
	assert.Equal(t, BandGood, report.Courses[0].Band)
	assert.False(t, report.Courses[1].Passing)
	assert.Nil(t, report.Courses[3].Average)
	assert.Equal(t, Band(""), report.Courses[3].Band)

	// (4.4*4 + 2*2 + 3.5*3) / 9 = 3.5667
	require.NotNil(t, report.GPA)
	assert.InDelta(t, 3.57, *report.GPA, 1e-9)

	assert.Equal(t, 3, report.GradedCount)
	assert.Equal(t, 67, report.PassingRate)

	require.Len(t, report.SemesterGPAs, 2)
	assert.Equal(t, 1, report.SemesterGPAs[0].Semester)
	assert.InDelta(t, 3.6, report.SemesterGPAs[0].GPA, 1e-9)
	assert.Equal(t, 2, report.SemesterGPAs[1].Semester)
	assert.InDelta(t, 3.5, report.SemesterGPAs[1].GPA, 1e-9)
}

func TestSummarizeWithoutGrades(t *testing.T) {
	report := Summarize([]models.CourseSummary{
		{Course: models.Course{ID: "a", Semester: 1, Credits: 3}},
	})
	assert.Nil(t, report.GPA)
	assert.Equal(t, 0, report.GradedCount)
	assert.Equal(t, 0, report.PassingRate)
	assert.Empty(t, report.SemesterGPAs)
}

func TestGrader_ScoreCourse(t *testing.T) {
	ms := new(MockStore)
	grader := NewGrader(ms)

	t.Run("reads the latest grades", func(t *testing.T) {
		ms.On("ListGrades", "course1").
			Return([]models.Grade{{Value: 4, Weight: 0}}, nil).Once()
		got, err := grader.ScoreCourse("course1")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, *got, 1e-9)

		ms.On("ListGrades", "course1").
			Return([]models.Grade{{Value: 4, Weight: 0}, {Value: 2, Weight: 0}}, nil).Once()
		got, err = grader.ScoreCourse("course1")
		require.NoError(t, err)
		assert.InDelta(t, 3.0, *got, 1e-9)
	})

	t.Run("course without grades has no average", func(t *testing.T) {
		ms.On("ListGrades", "course2").Return([]models.Grade{}, nil).Once()
		got, err := grader.ScoreCourse("course2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		ms.On("ListGrades", "course3").Return(nil, boom).Once()
		_, err := grader.ScoreCourse("course3")
		assert.ErrorIs(t, err, boom)
	})

	ms.AssertExpectations(t)
}

func TestGrader_Report(t *testing.T) {
	ms := new(MockStore)
	ms.On("ListCourses").Return([]models.CourseSummary{
		{
			Course: models.Course{ID: "a", Semester: 1, Credits: 3},
			Grades: []models.Grade{{Value: 4.5, Weight: 0}},
		},
	}, nil).Once()

	report, err := NewGrader(ms).Report()
	require.NoError(t, err)
	require.NotNil(t, report.GPA)
	assert.InDelta(t, 4.5, *report.GPA, 1e-9)
	assert.Equal(t, 100, report.PassingRate)
	ms.AssertExpectations(t)
}
