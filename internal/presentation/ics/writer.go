package ics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

const (
	prodID = "-//kreta-tools//go-kreta-bridge//EN"

	dateStamp     = "20060102"
	dateTimeStamp = "20060102T150405"
)

// event is one VEVENT before serialization. All-day events carry only the
// date part of start/end.
type event struct {
	summary     string
	location    string
	description string
	start       time.Time
	end         time.Time
	allDay      bool
}

// calendar accumulates events and serializes them with CRLF line endings as
// the RFC wants.
type calendar struct {
	events []event
}

func (c *calendar) add(e event) {
	c.events = append(c.events, e)
}

func (c *calendar) String() string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)

	tp := util.GetTimeProvider()
	for _, e := range c.events {
		line("BEGIN:VEVENT")
		// events are regenerated on every fetch, a stable uid would make
		// clients dedupe stale entries against live ones
		line("UID:" + uuid.NewString())
		line("DTSTAMP:" + time.Now().UTC().Format(dateTimeStamp) + "Z")
		if e.allDay {
			line("DTSTART;VALUE=DATE:" + tp.Format(e.start, dateStamp))
			line("DTEND;VALUE=DATE:" + tp.Format(e.end, dateStamp))
		} else {
			line("DTSTART:" + tp.Format(e.start, dateTimeStamp))
			line("DTEND:" + tp.Format(e.end, dateTimeStamp))
		}
		line("SUMMARY:" + escapeText(e.summary))
		if e.location != "" {
			line("LOCATION:" + escapeText(e.location))
		}
		if e.description != "" {
			line("DESCRIPTION:" + escapeText(e.description))
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return b.String()
}

// escapeText escapes a property value per RFC 5545 section 3.3.11
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}
