package app

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	coursesSheet = "Courses"
	gradesSheet  = "Grades"
)

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) {
	for i, h := range headers {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, cell(name, 1), h)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", cell(last, 1), style)
}

// GradesWorkbook exports the grade report: one sheet of course averages with
// the overall GPA and one sheet listing every grade.
func (s *Service) GradesWorkbook() (*bytes.Buffer, error) {
	overview, err := s.GradesOverview()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(coursesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(gradesSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	f.SetColWidth(coursesSheet, "A", "A", 12)
	f.SetColWidth(coursesSheet, "B", "B", 40)
	f.SetColWidth(gradesSheet, "B", "C", 30)

	writeHeader(f, coursesSheet, headerStyle, []string{"Code", "Name", "Semester", "Credits", "Grades", "Average", "Band"})
	row := 2
	for _, c := range overview.Courses {
		f.SetCellValue(coursesSheet, cell("A", row), c.Code)
		f.SetCellValue(coursesSheet, cell("B", row), c.Name)
		f.SetCellValue(coursesSheet, cell("C", row), c.Semester)
		f.SetCellValue(coursesSheet, cell("D", row), c.Credits)
		f.SetCellValue(coursesSheet, cell("E", row), c.Graded)
		if c.Average != nil {
			f.SetCellValue(coursesSheet, cell("F", row), *c.Average)
			f.SetCellValue(coursesSheet, cell("G", row), string(c.Band))
		} else {
			f.SetCellValue(coursesSheet, cell("F", row), "-")
		}
		row++
	}

	row++
	f.SetCellValue(coursesSheet, cell("A", row), "GPA")
	if overview.GPA != nil {
		f.SetCellValue(coursesSheet, cell("F", row), *overview.GPA)
	} else {
		f.SetCellValue(coursesSheet, cell("F", row), "-")
	}
	f.SetCellValue(coursesSheet, cell("A", row+1), "Passing rate")
	f.SetCellValue(coursesSheet, cell("F", row+1), fmt.Sprintf("%d%%", overview.PassingRate))

	writeHeader(f, gradesSheet, headerStyle, []string{"Code", "Course", "Label", "Value", "Weight", "Momento", "Semester"})
	row = 2
	for _, g := range overview.Grades {
		f.SetCellValue(gradesSheet, cell("A", row), g.CourseCode)
		f.SetCellValue(gradesSheet, cell("B", row), g.CourseName)
		f.SetCellValue(gradesSheet, cell("C", row), g.Label)
		f.SetCellValue(gradesSheet, cell("D", row), g.Value)
		f.SetCellValue(gradesSheet, cell("E", row), g.Weight)
		f.SetCellValue(gradesSheet, cell("F", row), string(g.Momento))
		f.SetCellValue(gradesSheet, cell("G", row), g.Semester)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
