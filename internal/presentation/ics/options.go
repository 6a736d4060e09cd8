// Package ics renders lessons, merged timelines and their leftovers as
// RFC 5545 calendars that any subscribing client can consume.
package ics

import (
	"encoding/base64"
	"fmt"

	"github.com/bytedance/sonic"
)

// Options tune how events are titled and what gets included. Subscribers pass
// them as a base64url-encoded json blob in the ?opts= query parameter, so the
// whole struct has to stay backward compatible with already-pasted urls.
type Options struct {
	// HomeworkGivenPrefix is prepended to standalone homework deadline events
	HomeworkGivenPrefix string `json:"homework_given_prefix"`
	// AnnouncedExamPrefix is prepended to standalone exam events
	AnnouncedExamPrefix string `json:"announced_exam_prefix"`
	// IncludeHomework puts the homework text into the lesson description
	IncludeHomework bool `json:"include_homework"`
	// MarkAbsences annotates lessons the student missed or was late from
	MarkAbsences bool `json:"mark_absences"`
}

// DefaultOptions is what subscribers get without an ?opts= parameter
func DefaultOptions() Options {
	return Options{
		HomeworkGivenPrefix: "HF:",
		AnnouncedExamPrefix: "Számonkérés:",
		IncludeHomework:     true,
		MarkAbsences:        true,
	}
}

// DecodeOptions parses the ?opts= parameter; an empty parameter means the
// defaults.
func DecodeOptions(param string) (Options, error) {
	if param == "" {
		return DefaultOptions(), nil
	}

	raw, err := base64.URLEncoding.DecodeString(param)
	if err != nil {
		return Options{}, fmt.Errorf("decoding the opts parameter: %w", err)
	}

	opts := DefaultOptions()
	if err := sonic.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("opts parameter is not valid json: %w", err)
	}
	return opts, nil
}
