package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/studieplan/internal/app"
	"github.com/shrimpsizemoose/studieplan/internal/store"
)

const helpText = `Available commands:
/today - Classes scheduled for today
/week [I|II|FULL] - The week schedule, current momento by default
/gpa - Overall and per semester GPA
/course <code> - Details of one course
/help - Show this message

Examples:
/week II
/course MAT101`

type commandHandler func(args string) (string, error)

func (b *Bot) routeCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":  b.handleHelp,
		"help":   b.handleHelp,
		"today":  b.handleToday,
		"week":   b.handleWeek,
		"gpa":    b.handleGPA,
		"course": b.handleCourse,
	}
	handler, found := commands[cmd]
	return handler, found
}

// reply computes the answer to one message. cmd is empty for plain text.
func (b *Bot) reply(userID int64, cmd, args string) (string, error) {
	if !b.owners[userID] {
		return "This bot is private.", nil
	}
	if cmd == "" {
		return "Send /help for the list of commands.", nil
	}

	handler, ok := b.routeCommands(cmd)
	if !ok {
		return fmt.Sprintf("Unknown command /%s. Send /help for the list of commands.", cmd), nil
	}
	return handler(strings.TrimSpace(args))
}

func (b *Bot) handleHelp(string) (string, error) {
	return helpText, nil
}

func (b *Bot) handleToday(string) (string, error) {
	view, err := b.service.Schedule("")
	if err != nil {
		return "", fmt.Errorf("failed to load schedule: %w", err)
	}
	return formatToday(view), nil
}

func (b *Bot) handleWeek(args string) (string, error) {
	view, err := b.service.Schedule(args)
	if err != nil {
		return "", err
	}
	return formatWeek(view), nil
}

func (b *Bot) handleGPA(string) (string, error) {
	overview, err := b.service.GradesOverview()
	if err != nil {
		return "", fmt.Errorf("failed to load grades: %w", err)
	}
	return formatGPA(overview), nil
}

func (b *Bot) handleCourse(args string) (string, error) {
	if args == "" {
		return "Usage: /course <code>, e.g. /course MAT101", nil
	}

	view, err := b.service.CourseByCode(args)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("No course with code %s.", args), nil
	}
	if err != nil {
		return "", err
	}
	return formatCourse(view), nil
}

func writeClasses(sb *strings.Builder, classes []app.ScheduleClass) {
	for _, c := range classes {
		fmt.Fprintf(sb, "  %s  %s %s", c.TimeLabel, c.Code, c.Name)
		if c.Professor != nil && *c.Professor != "" {
			fmt.Fprintf(sb, " (%s)", *c.Professor)
		}
		sb.WriteString("\n")
	}
}

func formatToday(view *app.ScheduleView) string {
	for _, day := range view.Days {
		if !day.Today {
			continue
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Today, %s:\n", day.Label)
		writeClasses(&sb, day.Classes)
		return strings.TrimRight(sb.String(), "\n")
	}
	return "No classes today."
}

func formatWeek(view *app.ScheduleView) string {
	if len(view.Days) == 0 {
		return fmt.Sprintf("No classes in semester %d, momento %s.", view.Semester, view.Momento)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Semester %d, momento %s: %d classes\n", view.Semester, view.Momento, view.ClassCount)
	for _, day := range view.Days {
		fmt.Fprintf(&sb, "\n%s, next on %s\n", day.Label, day.NextDate)
		writeClasses(&sb, day.Classes)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatGPA(overview *app.GradesOverview) string {
	if overview.GPA == nil {
		return "No grades yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "GPA: %.2f\n", *overview.GPA)
	fmt.Fprintf(&sb, "Graded courses: %d of %d, %d%% passing\n", overview.GradedCount, overview.TotalCourses, overview.PassingRate)
	for _, s := range overview.SemesterGPAs {
		fmt.Fprintf(&sb, "Semester %d: %.2f\n", s.Semester, s.GPA)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCourse(view *app.CourseView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", view.Code, view.Name)
	fmt.Fprintf(&sb, "Semester %d, %d credits, %s\n", view.Semester, view.Credits, view.StatusText)
	if view.DayLabel != "" {
		fmt.Fprintf(&sb, "%s %s\n", view.DayLabel, view.TimeLabel)
	}
	if view.Professor != nil && *view.Professor != "" {
		fmt.Fprintf(&sb, "Professor: %s\n", *view.Professor)
	}
	if view.Average != nil {
		fmt.Fprintf(&sb, "Average: %.2f (%s)\n", *view.Average, view.Band)
	} else {
		sb.WriteString("Average: -\n")
	}
	fmt.Fprintf(&sb, "Grades: %d, notes: %d", len(view.Grades), len(view.Notes))
	return sb.String()
}
