package bot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/store/sqlite"
)

const owner int64 = 42

func strPtr(s string) *string { return &s }

func newTestBot(t *testing.T) (*Bot, *app.Service) {
	t.Helper()

	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Display.TimeZone = "UTC"
	auth, err := app.NewAuth(cfg)
	require.NoError(t, err)

	svc := app.NewServiceWith(cfg, st, auth)
	// Monday
	svc.SetClock(func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) })
	t.Cleanup(func() { svc.Close() })

	_, err = svc.Seed([]app.CatalogCourse{
		{Code: "MAT101", Name: "Calculus", Semester: 1, Credits: 4, Status: "IN_PROGRESS",
			Professor: strPtr("Ana Ruiz"), Day: strPtr("Lunes"), Time: strPtr("6:30 PM - 8:30 PM"), Momento: strPtr("I")},
		{Code: "INF101", Name: "Algorithms", Semester: 1, Credits: 3, Status: "IN_PROGRESS",
			Day: strPtr("Miércoles"), Time: strPtr("7 pm"), Momento: strPtr("II")},
	}, "Luis")
	require.NoError(t, err)

	return &Bot{service: svc, owners: owners([]int64{owner})}, svc
}

func TestReplyOwnerOnly(t *testing.T) {
	b, _ := newTestBot(t)

	text, err := b.reply(7, "gpa", "")
	require.NoError(t, err)
	assert.Equal(t, "This bot is private.", text)

	text, err = b.reply(owner, "", "")
	require.NoError(t, err)
	assert.Contains(t, text, "/help")

	text, err = b.reply(owner, "grade", "add")
	require.NoError(t, err)
	assert.Equal(t, "Unknown command /grade. Send /help for the list of commands.", text)

	text, err = b.reply(owner, "start", "")
	require.NoError(t, err)
	assert.Equal(t, helpText, text)
}

func TestReplySchedule(t *testing.T) {
	b, _ := newTestBot(t)

	text, err := b.reply(owner, "today", "")
	require.NoError(t, err)
	assert.Equal(t, "Today, Monday:\n  6:30 - 8:30 PM  MAT101 Calculus (Ana Ruiz)", text)

	text, err = b.reply(owner, "week", "II")
	require.NoError(t, err)
	assert.Equal(t, "Semester 1, momento II: 1 classes\n\nWednesday, next on 2024-01-17\n  7:00 - 9:00 PM  INF101 Algorithms", text)

	_, err = b.reply(owner, "week", "III")
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestReplyGrades(t *testing.T) {
	b, svc := newTestBot(t)

	text, err := b.reply(owner, "gpa", "")
	require.NoError(t, err)
	assert.Equal(t, "No grades yet.", text)

	mat, err := svc.CourseByCode("mat101")
	require.NoError(t, err)
	_, err = svc.AddGrade(mat.ID, app.GradeInput{Label: "Parcial", Value: 4.2})
	require.NoError(t, err)

	text, err = b.reply(owner, "gpa", "")
	require.NoError(t, err)
	assert.Equal(t, "GPA: 4.20\nGraded courses: 1 of 2, 100% passing\nSemester 1: 4.20", text)

	text, err = b.reply(owner, "course", " mat101 ")
	require.NoError(t, err)
	assert.Equal(t, "MAT101 Calculus\n"+
		"Semester 1, 4 credits, In Progress\n"+
		"Monday 6:30 - 8:30 PM\n"+
		"Professor: Ana Ruiz\n"+
		"Average: 4.20 (good)\n"+
		"Grades: 1, notes: 0", text)

	text, err = b.reply(owner, "course", "XYZ999")
	require.NoError(t, err)
	assert.Equal(t, "No course with code XYZ999.", text)

	text, err = b.reply(owner, "course", "")
	require.NoError(t, err)
	assert.Contains(t, text, "Usage")
}

func TestFormatTodayWithoutClasses(t *testing.T) {
	assert.Equal(t, "No classes today.", formatToday(&app.ScheduleView{}))
	assert.Equal(t, "No classes in semester 3, momento I.", formatWeek(&app.ScheduleView{Semester: 3, Momento: "I"}))
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bot]\ntoken = \"file-token\"\nowner_ids = [42, 43]\n"), 0o600))

	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, []int64{42, 43}, cfg.Bot.OwnerIDs)

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	cfg, err = ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)

	empty := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("[bot]\ntoken = \"x\"\n"), 0o600))
	_, err = ReadConfig(empty)
	assert.Error(t, err, "no owners")
}
