package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/shrimpsizemoose/studieplan/internal/models"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

// PassingGrade is the lowest passing value on the 0.0-5.0 scale.
const PassingGrade = 3.0

type Weighted struct {
	Value  float64
	Weight float64
}

type CreditAverage struct {
	Credits int
	Average *float64
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// WeightedAverage returns false when there is nothing to average. A zero
// total weight means every grade counts the same.
func WeightedAverage(grades []Weighted) (float64, bool) {
	if len(grades) == 0 {
		return 0, false
	}

	var totalWeight, sum, weightedSum float64
	for _, g := range grades {
		totalWeight += g.Weight
		sum += g.Value
		weightedSum += g.Value * g.Weight
	}

	if totalWeight == 0 {
		return round2(sum / float64(len(grades))), true
	}
	return round2(weightedSum / totalWeight), true
}

// GPA is the credit weighted mean of the courses that have an average.
func GPA(courses []CreditAverage) (float64, bool) {
	var credits int
	var weightedSum float64
	graded := 0
	for _, c := range courses {
		if c.Average == nil {
			continue
		}
		graded++
		credits += c.Credits
		weightedSum += *c.Average * float64(c.Credits)
	}

	if graded == 0 || credits == 0 {
		return 0, false
	}
	return round2(weightedSum / float64(credits)), true
}

func IsPassing(value float64) bool {
	return value >= PassingGrade
}

type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandPassing   Band = "passing"
	BandAtRisk    Band = "at-risk"
	BandFailing   Band = "failing"
)

func BandFor(value float64) Band {
	switch {
	case value >= 4.5:
		return BandExcellent
	case value >= 4.0:
		return BandGood
	case value >= 3.0:
		return BandPassing
	case value >= 2.0:
		return BandAtRisk
	default:
		return BandFailing
	}
}

func weights(grades []models.Grade) []Weighted {
	out := make([]Weighted, 0, len(grades))
	for _, g := range grades {
		out = append(out, Weighted{Value: g.Value, Weight: g.Weight})
	}
	return out
}

// CourseAverage is nil for a course without grades.
func CourseAverage(grades []models.Grade) *float64 {
	avg, ok := WeightedAverage(weights(grades))
	if !ok {
		return nil
	}
	return &avg
}

type Grader struct {
	store store.TrackerStore
}

func NewGrader(store store.TrackerStore) *Grader {
	return &Grader{store: store}
}

// ScoreCourse re-reads the grades of a course before averaging them, so a
// mutation made a moment ago is always reflected.
func (g *Grader) ScoreCourse(courseID string) (*float64, error) {
	grades, err := g.store.ListGrades(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades for %s: %w", courseID, err)
	}
	return CourseAverage(grades), nil
}

type CourseScore struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Semester int      `json:"semester"`
	Credits  int      `json:"credits"`
	Graded   int      `json:"gradeCount"`
	Average  *float64 `json:"average"`
	Band     Band     `json:"band,omitempty"`
	Passing  bool     `json:"passing"`
}

type SemesterGPA struct {
	Semester int     `json:"semester"`
	GPA      float64 `json:"gpa"`
}

type Report struct {
	Courses      []CourseScore `json:"courses"`
	GPA          *float64      `json:"gpa"`
	SemesterGPAs []SemesterGPA `json:"semesterGpas"`
	GradedCount  int           `json:"gradedCount"`
	PassingRate  int           `json:"passingRate"`
}

func scoreCourse(c models.CourseSummary) CourseScore {
	score := CourseScore{
		ID:       c.ID,
		Code:     c.Code,
		Name:     c.Name,
		Semester: c.Semester,
		Credits:  c.Credits,
		Graded:   len(c.Grades),
		Average:  CourseAverage(c.Grades),
	}
	if score.Average != nil {
		score.Band = BandFor(*score.Average)
		score.Passing = IsPassing(*score.Average)
	}
	return score
}

func creditAverages(scores []CourseScore) []CreditAverage {
	out := make([]CreditAverage, 0, len(scores))
	for _, s := range scores {
		out = append(out, CreditAverage{Credits: s.Credits, Average: s.Average})
	}
	return out
}

// Summarize builds the report for an already loaded course list.
func Summarize(courses []models.CourseSummary) *Report {
	report := &Report{
		Courses:      make([]CourseScore, 0, len(courses)),
		SemesterGPAs: []SemesterGPA{},
	}

	bySemester := make(map[int][]CourseScore)
	passing := 0
	for _, c := range courses {
		score := scoreCourse(c)
		report.Courses = append(report.Courses, score)
		bySemester[score.Semester] = append(bySemester[score.Semester], score)

		if score.Graded > 0 {
			report.GradedCount++
			if score.Passing {
				passing++
			}
		}
	}

	if gpa, ok := GPA(creditAverages(report.Courses)); ok {
		report.GPA = &gpa
	}

	for semester, scores := range bySemester {
		if gpa, ok := GPA(creditAverages(scores)); ok {
			report.SemesterGPAs = append(report.SemesterGPAs, SemesterGPA{Semester: semester, GPA: gpa})
		}
	}
	sort.Slice(report.SemesterGPAs, func(i, j int) bool {
		return report.SemesterGPAs[i].Semester < report.SemesterGPAs[j].Semester
	})

	if report.GradedCount > 0 {
		report.PassingRate = int(math.Round(float64(passing) / float64(report.GradedCount) * 100))
	}

	return report
}

// Report loads every course with its grades and summarizes them.
func (g *Grader) Report() (*Report, error) {
	courses, err := g.store.ListCourses()
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return Summarize(courses), nil
}
