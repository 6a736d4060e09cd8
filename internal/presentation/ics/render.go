package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/combine"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// LessonsCalendar renders a plain timetable. One event per lesson, no
// correlation.
func LessonsCalendar(lessons []model.Lesson, opts Options) (string, error) {
	var cal calendar
	for i := range lessons {
		e, err := lessonEvent(&lessons[i], nil, nil, nil, opts)
		if err != nil {
			return "", err
		}
		cal.add(e)
	}
	return cal.String(), nil
}

// MergedCalendar renders a merged timeline plus standalone events for the
// remainder. A homework deadline or an exam no lesson claimed still deserves
// a calendar entry.
func MergedCalendar(merged []combine.MergedLesson, rem combine.Remainder, opts Options) (string, error) {
	var cal calendar

	for i := range merged {
		m := &merged[i]
		e, err := lessonEvent(&m.Lesson, m.Homework, m.Exam, m.Absence, opts)
		if err != nil {
			return "", err
		}
		cal.add(e)
	}

	for i := range rem.Homework {
		e, err := homeworkEvent(&rem.Homework[i], opts)
		if err != nil {
			return "", err
		}
		cal.add(e)
	}
	for i := range rem.Exams {
		e, err := examEvent(&rem.Exams[i], opts)
		if err != nil {
			return "", err
		}
		cal.add(e)
	}
	// remainder absences carry no schedulable moment of their own, the stats
	// page reports them instead

	return cal.String(), nil
}

// ErrorCalendar wraps an error into a single-event calendar. Calendar clients
// silently drop subscriptions that return http errors, so failures ship as a
// calendar the subscriber can actually see.
func ErrorCalendar(err error) string {
	today := util.GetTimeProvider().Now()

	var cal calendar
	cal.add(event{
		summary:     "timetable error",
		location:    "see event notes for details",
		description: err.Error(),
		start:       today,
		end:         today,
		allDay:      true,
	})
	return cal.String()
}

func lessonEvent(l *model.Lesson, hw *model.Homework, exam *model.Exam, absence *model.Absence, opts Options) (event, error) {
	start, err := eventTime("lesson", l.Uid, l.StartTime)
	if err != nil {
		return event{}, err
	}
	end, err := eventTime("lesson", l.Uid, l.EndTime)
	if err != nil {
		return event{}, err
	}

	summary := l.Name
	if opts.MarkAbsences {
		// the matched absence record is authoritative; without one, the
		// lesson's own presence field is still a usable guess
		if absence != nil {
			summary += absenceMarker(absence)
		} else {
			summary += presenceMarker(l.PresenceOf())
		}
	}

	var desc []string
	if l.Topic != nil && *l.Topic != "" {
		desc = append(desc, *l.Topic)
	}
	if teacher := lessonTeacher(l); teacher != "" {
		desc = append(desc, teacher)
	}
	if exam != nil {
		desc = append(desc, fmt.Sprintf("%s %s (%s)", opts.AnnouncedExamPrefix, exam.Topic, exam.Method.Name))
	}
	if opts.IncludeHomework && hw != nil {
		desc = append(desc, opts.HomeworkGivenPrefix+" "+kreta.HomeworkText(hw))
	}

	return event{
		summary:     summary,
		location:    l.RoomName,
		description: strings.Join(desc, "\n"),
		start:       start,
		end:         end,
	}, nil
}

func homeworkEvent(hw *model.Homework, opts Options) (event, error) {
	deadline, err := eventTime("homework", hw.Uid, hw.Deadline)
	if err != nil {
		return event{}, err
	}

	desc := kreta.HomeworkText(hw)
	if assigned, err := time.Parse(time.RFC3339, hw.DateAssigned); err == nil {
		desc += fmt.Sprintf("\n- %s, %s", hw.TeacherName,
			util.GetTimeProvider().Format(assigned, "2006. January 2. 15:04"))
	}

	return event{
		summary:     opts.HomeworkGivenPrefix + " " + hw.SubjectName,
		description: desc,
		start:       deadline,
		end:         deadline,
		allDay:      true,
	}, nil
}

func examEvent(exam *model.Exam, opts Options) (event, error) {
	date, err := eventTime("exam", exam.Uid, exam.Date)
	if err != nil {
		return event{}, err
	}

	return event{
		summary:     fmt.Sprintf("%s %s - %s", opts.AnnouncedExamPrefix, exam.SubjectName, exam.Topic),
		location:    exam.Method.Desc,
		description: fmt.Sprintf("%s\n- %s", exam.Topic, exam.TeacherName),
		start:       date,
		end:         date,
		allDay:      true,
	}, nil
}

// eventTime parses a record timestamp; a malformed one fails the whole
// calendar, which the caller turns into an error calendar.
func eventTime(kind, uid, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("rendering %s %s: %q is not a valid timestamp: %w", kind, uid, raw, err)
	}
	return t, nil
}

func lessonTeacher(l *model.Lesson) string {
	if l.SubstituteTeacherName != nil && *l.SubstituteTeacherName != "" {
		return *l.SubstituteTeacherName + " (helyettesítő)"
	}
	return l.TeacherName
}

func absenceMarker(a *model.Absence) string {
	if a.LateMinutes != nil && *a.LateMinutes > 0 {
		return fmt.Sprintf(" (késés: %d perc)", *a.LateMinutes)
	}
	return " (hiányzás)"
}

func presenceMarker(p model.Presence) string {
	switch p {
	case model.PresenceLate:
		return " (késés)"
	case model.PresenceMissed:
		return " (hiányzás)"
	default:
		return ""
	}
}
