package app

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/shrimpsizemoose/studieplan/internal/schedule"
)

const calendarProductID = "-//studieplan//schedule//EN"

// ScheduleICS renders the active classes as weekly recurring events, each
// starting on its next occurrence from today.
func (s *Service) ScheduleICS(window string) (string, error) {
	courses, settings, momento, err := s.activeScheduleCourses(window)
	if err != nil {
		return "", err
	}

	now := s.Now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("Semester %d, momento %s", settings.CurrentSemester, momento))
	cal.SetXWRTimezone(s.loc.String())

	for _, c := range courses {
		if !c.Scheduled() {
			continue
		}
		if _, ok := schedule.Weekday(c.DayText()); !ok {
			continue
		}

		r := schedule.ParseTimeRange(c.TimeText())
		start, end := classStart(schedule.NextOccurrence(c.DayText(), now), r, s.loc)

		event := cal.AddEvent(fmt.Sprintf("%s-%s@studieplan", c.ID, strings.ToLower(string(momento))))
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s %s", c.Code, c.Name))
		event.AddRrule("FREQ=WEEKLY")

		var desc []string
		if c.Professor != nil && *c.Professor != "" {
			desc = append(desc, "Professor: "+*c.Professor)
		}
		if c.Group != nil && *c.Group != "" {
			desc = append(desc, "Group: "+*c.Group)
		}
		desc = append(desc, "Time: "+r.String())
		event.SetDescription(strings.Join(desc, "\n"))

		if c.TeamsLink != nil && *c.TeamsLink != "" {
			event.SetURL(*c.TeamsLink)
		}
	}

	return cal.Serialize(), nil
}
