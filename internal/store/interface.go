package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/studieplan/internal/models"
)

var ErrNotFound = errors.New("not found")

type TrackerStore interface {
	Close() error
	ApplyMigrations(dir string) error

	UpsertCourse(course *models.Course) error
	ListCourses() ([]models.CourseSummary, error)
	ListCoursesBySemester(semester int) ([]models.CourseSummary, error)
	ListScheduleCourses(semester int) ([]models.Course, error)
	GetCourse(id string) (*models.CourseDetail, error)
	UpdateCourseStatus(id string, status models.Status) error

	ListGrades(courseID string) ([]models.Grade, error)
	CreateGrade(grade *models.Grade) error
	UpdateGrade(id string, patch models.GradePatch) (*models.Grade, error)
	DeleteGrade(id string) (*models.Grade, error)

	CreateNote(note *models.Note) error
	UpdateNote(id string, patch models.NotePatch) (*models.Note, error)
	DeleteNote(id string) (*models.Note, error)
	ToggleNotePin(id string) (*models.Note, error)

	GetSettings() (*models.Settings, error)
	UpsertSettings(settings *models.Settings) error
}

// BaseStore provides common functionality for different DB implementations.
// Queries are written with ? placeholders and passed through Converter.
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

const courseColumns = `
	c.id, c.code, c.name, c.semester, c.credits, c.status,
	c.professor, c.professor_email, c.class_day, c.class_time,
	c.group_label, c.momento, c.momento_dates, c.teams_link`

const gradeColumns = `id, course_id, label, value, weight, momento, created_at`

const noteColumns = `id, course_id, title, content, pinned, created_at`

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory in file name order,
// translating dialect if needed.
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", name)
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *BaseStore) UpsertCourse(course *models.Course) error {
	course.EnsureID()
	if course.Status == "" {
		course.Status = models.StatusNotStarted
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO courses (
			id, code, name, semester, credits, status, professor, professor_email,
			class_day, class_time, group_label, momento, momento_dates, teams_link
		) VALUES (
			:id, :code, :name, :semester, :credits, :status, :professor, :professor_email,
			:class_day, :class_time, :group_label, :momento, :momento_dates, :teams_link
		)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			semester = excluded.semester,
			credits = excluded.credits,
			status = excluded.status,
			professor = excluded.professor,
			professor_email = excluded.professor_email,
			class_day = excluded.class_day,
			class_time = excluded.class_time,
			group_label = excluded.group_label,
			momento = excluded.momento,
			momento_dates = excluded.momento_dates,
			teams_link = excluded.teams_link
	`, course)
	if err != nil {
		return fmt.Errorf("failed to upsert course %s: %w", course.Code, err)
	}

	// on conflict the row keeps its original id
	if err := s.DB.Get(&course.ID, s.Converter(`SELECT id FROM courses WHERE code = ?`), course.Code); err != nil {
		return fmt.Errorf("failed to read back course %s: %w", course.Code, err)
	}
	return nil
}

func (s *BaseStore) summaries(where string, args ...any) ([]models.CourseSummary, error) {
	var courses []models.Course
	query := s.Converter(`
		SELECT ` + courseColumns + `
		FROM courses c
		` + where + `
		ORDER BY c.semester ASC, COALESCE(c.momento, '') ASC, c.name ASC
	`)
	if err := s.DB.Select(&courses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	var grades []models.Grade
	if err := s.DB.Select(&grades, `SELECT `+gradeColumns+` FROM grades ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	gradesByCourse := make(map[string][]models.Grade)
	for _, g := range grades {
		gradesByCourse[g.CourseID] = append(gradesByCourse[g.CourseID], g)
	}

	var counts []struct {
		CourseID string `db:"course_id"`
		Count    int    `db:"note_count"`
	}
	if err := s.DB.Select(&counts, `SELECT course_id, COUNT(*) AS note_count FROM notes GROUP BY course_id`); err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	noteCounts := make(map[string]int, len(counts))
	for _, c := range counts {
		noteCounts[c.CourseID] = c.Count
	}

	out := make([]models.CourseSummary, 0, len(courses))
	for _, c := range courses {
		summary := models.CourseSummary{
			Course:    c,
			Grades:    gradesByCourse[c.ID],
			NoteCount: noteCounts[c.ID],
		}
		if summary.Grades == nil {
			summary.Grades = []models.Grade{}
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *BaseStore) ListCourses() ([]models.CourseSummary, error) {
	return s.summaries("")
}

func (s *BaseStore) ListCoursesBySemester(semester int) ([]models.CourseSummary, error) {
	return s.summaries("WHERE c.semester = ?", semester)
}

func (s *BaseStore) ListScheduleCourses(semester int) ([]models.Course, error) {
	var courses []models.Course
	query := s.Converter(`
		SELECT ` + courseColumns + `
		FROM courses c
		WHERE c.semester = ?
		ORDER BY c.code ASC
	`)
	if err := s.DB.Select(&courses, query, semester); err != nil {
		return nil, fmt.Errorf("failed to list schedule courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) GetCourse(id string) (*models.CourseDetail, error) {
	var detail models.CourseDetail
	err := s.DB.Get(&detail.Course, s.Converter(`SELECT `+courseColumns+` FROM courses c WHERE c.id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	detail.Grades, err = s.ListGrades(id)
	if err != nil {
		return nil, err
	}

	detail.Notes = []models.Note{}
	err = s.DB.Select(&detail.Notes, s.Converter(`
		SELECT `+noteColumns+`
		FROM notes
		WHERE course_id = ?
		ORDER BY pinned DESC, created_at DESC, id
	`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return &detail, nil
}

func (s *BaseStore) UpdateCourseStatus(id string, status models.Status) error {
	res, err := s.DB.Exec(s.Converter(`UPDATE courses SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update course status: %w", err)
	}
	return expectRow(res, "course", id)
}

func (s *BaseStore) ListGrades(courseID string) ([]models.Grade, error) {
	grades := []models.Grade{}
	err := s.DB.Select(&grades, s.Converter(`
		SELECT `+gradeColumns+`
		FROM grades
		WHERE course_id = ?
		ORDER BY created_at DESC, id
	`), courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return grades, nil
}

func (s *BaseStore) CreateGrade(grade *models.Grade) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO grades (id, course_id, label, value, weight, momento, created_at)
		VALUES (:id, :course_id, :label, :value, :weight, :momento, :created_at)
	`, grade)
	if err != nil {
		return fmt.Errorf("failed to create grade: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateGrade(id string, patch models.GradePatch) (*models.Grade, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var grade models.Grade
	err = tx.Get(&grade, s.Converter(`SELECT `+gradeColumns+` FROM grades WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grade %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}

	patch.Apply(&grade)
	_, err = tx.NamedExec(`
		UPDATE grades SET label = :label, value = :value, weight = :weight, momento = :momento
		WHERE id = :id
	`, &grade)
	if err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit grade update: %w", err)
	}
	return &grade, nil
}

func (s *BaseStore) DeleteGrade(id string) (*models.Grade, error) {
	var grade models.Grade
	err := s.DB.Get(&grade, s.Converter(`SELECT `+gradeColumns+` FROM grades WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grade %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}

	if _, err := s.DB.Exec(s.Converter(`DELETE FROM grades WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("failed to delete grade: %w", err)
	}
	return &grade, nil
}

func (s *BaseStore) CreateNote(note *models.Note) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO notes (id, course_id, title, content, pinned, created_at)
		VALUES (:id, :course_id, :title, :content, :pinned, :created_at)
	`, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (s *BaseStore) getNote(tx *sqlx.Tx, id string) (*models.Note, error) {
	var note models.Note
	err := tx.Get(&note, s.Converter(`SELECT `+noteColumns+` FROM notes WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

func (s *BaseStore) saveNote(tx *sqlx.Tx, note *models.Note) error {
	_, err := tx.NamedExec(`
		UPDATE notes SET title = :title, content = :content, pinned = :pinned
		WHERE id = :id
	`, note)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// modifyNote runs a read-modify-write of one note inside a transaction.
func (s *BaseStore) modifyNote(id string, modify func(*models.Note)) (*models.Note, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	note, err := s.getNote(tx, id)
	if err != nil {
		return nil, err
	}
	modify(note)
	if err := s.saveNote(tx, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit note update: %w", err)
	}
	return note, nil
}

func (s *BaseStore) UpdateNote(id string, patch models.NotePatch) (*models.Note, error) {
	return s.modifyNote(id, patch.Apply)
}

func (s *BaseStore) ToggleNotePin(id string) (*models.Note, error) {
	return s.modifyNote(id, func(n *models.Note) {
		n.Pinned = !n.Pinned
	})
}

func (s *BaseStore) DeleteNote(id string) (*models.Note, error) {
	var note models.Note
	err := s.DB.Get(&note, s.Converter(`SELECT `+noteColumns+` FROM notes WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if _, err := s.DB.Exec(s.Converter(`DELETE FROM notes WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	return &note, nil
}

func (s *BaseStore) GetSettings() (*models.Settings, error) {
	var settings models.Settings
	err := s.DB.Get(&settings, s.Converter(`
		SELECT id, current_semester, current_momento, student_name
		FROM settings
		WHERE id = ?
	`), models.SettingsID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (s *BaseStore) UpsertSettings(settings *models.Settings) error {
	settings.ID = models.SettingsID
	if settings.CurrentMomento == models.MomentoNone {
		settings.CurrentMomento = models.MomentoI
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO settings (id, current_semester, current_momento, student_name)
		VALUES (:id, :current_semester, :current_momento, :student_name)
		ON CONFLICT(id) DO UPDATE SET
			current_semester = excluded.current_semester,
			current_momento = excluded.current_momento,
			student_name = excluded.student_name
	`, settings)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
