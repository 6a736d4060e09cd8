package combine

import (
	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
)

// MergedLesson is a lesson with whatever secondary records were correlated
// onto it. Each pointer is nil when nothing matched. The merged timeline owns
// the matched records: a claimed record is removed from its index, so no two
// merged lessons ever reference the same homework, exam or absence.
type MergedLesson struct {
	Lesson   model.Lesson
	Homework *model.Homework
	Exam     *model.Exam
	Absence  *model.Absence
}

// Remainder holds the secondary records no lesson claimed, in their original
// fetch order. Callers render these as standalone calendar entries so a
// homework deadline without a matching lesson is still visible.
type Remainder struct {
	Homework []model.Homework
	Exams    []model.Exam
	Absences []model.Absence
}

// Empty reports whether nothing was left over
func (r *Remainder) Empty() bool {
	return len(r.Homework) == 0 && len(r.Exams) == 0 && len(r.Absences) == 0
}
