package combine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Fetcher supplies the four record streams for a date window. The portal
// client implements it; tests use an in-memory stand-in. The joiner does not
// validate the window or retry failures, both belong to the fetch layer.
type Fetcher interface {
	Lessons(ctx context.Context, from, to time.Time) ([]model.Lesson, error)
	Homework(ctx context.Context, from, to time.Time) ([]model.Homework, error)
	Exams(ctx context.Context, from, to time.Time) ([]model.Exam, error)
	Absences(ctx context.Context, from, to time.Time) ([]model.Absence, error)
}

// Joiner merges the four streams of one date window. It holds no cross-call
// state; every merge owns its own indices, so concurrent merges need no lock.
type Joiner struct {
	fetcher Fetcher
}

// NewJoiner creates a Joiner over the given fetcher
func NewJoiner(fetcher Fetcher) *Joiner {
	return &Joiner{fetcher: fetcher}
}

// fetched carries the result of the concurrent fan-out
type fetched struct {
	lessons  []model.Lesson
	homework []model.Homework
	exams    []model.Exam
	absences []model.Absence
}

// fetchAll issues the four fetches concurrently and waits for all of them.
// Any single failure fails the whole operation, annotated with the stream
// that failed; no partial timeline is ever built from three streams.
func (j *Joiner) fetchAll(ctx context.Context, from, to time.Time) (*fetched, error) {
	var result fetched
	errs := make(chan error, 4)

	go func() {
		var err error
		result.lessons, err = j.fetcher.Lessons(ctx, from, to)
		errs <- wrapStream("lessons", err)
	}()
	go func() {
		var err error
		result.homework, err = j.fetcher.Homework(ctx, from, to)
		errs <- wrapStream("homework", err)
	}()
	go func() {
		var err error
		result.exams, err = j.fetcher.Exams(ctx, from, to)
		errs <- wrapStream("exams", err)
	}()
	go func() {
		var err error
		result.absences, err = j.fetcher.Absences(ctx, from, to)
		errs <- wrapStream("absences", err)
	}()

	var firstErr error
	for i := 0; i < 4; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return &result, nil
}

func wrapStream(stream string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetching the %s stream: %w", stream, err)
}

// MergeWithRemainder fetches all four streams for the window and correlates
// them. The merged list preserves the lesson fetch order and always has
// exactly one entry per input lesson, matched or not.
func (j *Joiner) MergeWithRemainder(ctx context.Context, from, to time.Time) ([]MergedLesson, Remainder, error) {
	streams, err := j.fetchAll(ctx, from, to)
	if err != nil {
		return nil, Remainder{}, err
	}
	return MergeRecords(streams.lessons, streams.homework, streams.exams, streams.absences)
}

// Merge is MergeWithRemainder for callers that only want the timeline
func (j *Joiner) Merge(ctx context.Context, from, to time.Time) ([]MergedLesson, error) {
	merged, _, err := j.MergeWithRemainder(ctx, from, to)
	return merged, err
}

// MergeRecords is the in-memory join over already-fetched streams.
//
// Homework and absences are indexed by surrogate key, exams by uid. Each
// lesson in fetch order computes its own key and takes the matching entries
// out of the indices; removal guarantees at-most-one lesson claims a record.
// Whatever survives in the indices becomes the remainder. Any timestamp that
// fails to parse during key computation aborts the whole merge.
func MergeRecords(lessons []model.Lesson, homework []model.Homework, exams []model.Exam, absences []model.Absence) ([]MergedLesson, Remainder, error) {
	homeworkIdx, err := indexHomework(homework)
	if err != nil {
		return nil, Remainder{}, err
	}
	absenceIdx, err := indexAbsences(absences)
	if err != nil {
		return nil, Remainder{}, err
	}
	examIdx := indexExams(exams)

	merged := make([]MergedLesson, 0, len(lessons))
	for i := range lessons {
		lesson := lessons[i]
		entry := MergedLesson{Lesson: lesson}

		if subjectUid, ok := lesson.SubjectUid(); ok {
			start, err := keyTime("lesson", lesson.Uid, lesson.StartTime)
			if err != nil {
				return nil, Remainder{}, err
			}
			key := KeyFor(start, subjectUid)

			if pos, ok := homeworkIdx[key]; ok {
				entry.Homework = &homework[pos]
				delete(homeworkIdx, key)
			}
			if pos, ok := absenceIdx[key]; ok {
				entry.Absence = &absences[pos]
				delete(absenceIdx, key)
			}
		}

		if lesson.AnnouncedExamUid != nil {
			if pos, ok := examIdx[*lesson.AnnouncedExamUid]; ok {
				entry.Exam = &exams[pos]
				delete(examIdx, *lesson.AnnouncedExamUid)
			}
		}

		merged = append(merged, entry)
	}

	remainder := Remainder{
		Homework: remainingHomework(homework, homeworkIdx),
		Exams:    remainingExams(exams, examIdx),
		Absences: remainingAbsences(absences, absenceIdx),
	}
	return merged, remainder, nil
}

// indexHomework keys each homework by its deadline date and subject.
// Colliding keys overwrite last-write-wins; the shadowed record is dropped.
func indexHomework(homework []model.Homework) (map[SurrogateKey]int, error) {
	idx := make(map[SurrogateKey]int, len(homework))
	for i := range homework {
		deadline, err := keyTime("homework", homework[i].Uid, homework[i].Deadline)
		if err != nil {
			return nil, err
		}
		key := KeyFor(deadline, homework[i].Subject.Uid)
		if prev, ok := idx[key]; ok {
			util.LogDebugf("homework %s shadows %s on the same day and subject", homework[i].Uid, homework[prev].Uid)
		}
		idx[key] = i
	}
	return idx, nil
}

func indexAbsences(absences []model.Absence) (map[SurrogateKey]int, error) {
	idx := make(map[SurrogateKey]int, len(absences))
	for i := range absences {
		start, err := keyTime("absence", absences[i].Uid, absences[i].Lesson.StartTime)
		if err != nil {
			return nil, err
		}
		key := KeyFor(start, absences[i].Subject.Uid)
		if prev, ok := idx[key]; ok {
			util.LogDebugf("absence %s shadows %s on the same day and subject", absences[i].Uid, absences[prev].Uid)
		}
		idx[key] = i
	}
	return idx, nil
}

// indexExams needs no hashing, the lesson references the exam uid directly
func indexExams(exams []model.Exam) map[string]int {
	idx := make(map[string]int, len(exams))
	for i := range exams {
		idx[exams[i].Uid] = i
	}
	return idx
}

func remainingHomework(homework []model.Homework, idx map[SurrogateKey]int) []model.Homework {
	out := make([]model.Homework, 0, len(idx))
	for _, pos := range sortedPositions(idx) {
		out = append(out, homework[pos])
	}
	return out
}

func remainingExams(exams []model.Exam, idx map[string]int) []model.Exam {
	positions := make([]int, 0, len(idx))
	for _, pos := range idx {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	out := make([]model.Exam, 0, len(positions))
	for _, pos := range positions {
		out = append(out, exams[pos])
	}
	return out
}

func remainingAbsences(absences []model.Absence, idx map[SurrogateKey]int) []model.Absence {
	out := make([]model.Absence, 0, len(idx))
	for _, pos := range sortedPositions(idx) {
		out = append(out, absences[pos])
	}
	return out
}

// sortedPositions restores fetch order for remainder output; map iteration
// order would reshuffle it on every run
func sortedPositions(idx map[SurrogateKey]int) []int {
	positions := make([]int, 0, len(idx))
	for _, pos := range idx {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}
