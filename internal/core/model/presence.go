package model

// Presence is a best guess at whether the student attended a lesson,
// derived from the TanuloJelenlet name on a timetable entry.
type Presence int

const (
	PresenceAttended Presence = iota
	PresenceLate
	PresenceMissed
)

// GuessPresence maps the portal's presence label to a Presence value.
// "Na" means the lesson has not happened yet, which counts as attended for
// rendering purposes. Anything unrecognized is assumed to be a real absence.
func GuessPresence(name string) Presence {
	switch name {
	case "Jelenlet", "Na":
		return PresenceAttended
	case "Keses":
		return PresenceLate
	default:
		return PresenceMissed
	}
}

// PresenceOf is a convenience wrapper over the lesson's presence field.
// A lesson with no presence record at all counts as attended.
func (l *Lesson) PresenceOf() Presence {
	if l.StudentPresence.Name == "" {
		return PresenceAttended
	}
	return GuessPresence(l.StudentPresence.Name)
}
