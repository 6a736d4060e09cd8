// Package absence turns raw absence records into per-category and per-week
// statistics and projects them to an end-of-year estimate.
package absence

import (
	"errors"
	"fmt"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
)

// CategoryKind is the excuse state of an absence record
type CategoryKind int

const (
	// KindUnexcused is an absence the school rejected or nobody excused
	KindUnexcused CategoryKind = iota
	// KindPending is an absence still waiting for an excuse to be accepted
	KindPending
	// KindExcused is an accepted absence; the category carries the excuse label
	KindExcused
	// KindUnclassified collects records whose status could not be mapped,
	// only produced by AggregateWithUnclassified
	KindUnclassified
)

func (k CategoryKind) String() string {
	switch k {
	case KindUnexcused:
		return "unexcused"
	case KindPending:
		return "pending"
	case KindExcused:
		return "excused"
	case KindUnclassified:
		return "unclassified"
	default:
		return "unknown"
	}
}

// Category is the classification bucket of an absence record. Two records
// land in the same bucket iff both the kind and the description match, so
// differently-labelled excused absences stay separate.
type Category struct {
	Kind CategoryKind
	// Description is the excuse type label for excused absences, empty otherwise
	Description string
}

func (c Category) String() string {
	if c.Description == "" {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", c.Kind, c.Description)
}

// Portal status codes on the IgazolasAllapota field
const (
	statusUnexcused = "Igazolatlan"
	statusPending   = "Igazolando"
	statusExcused   = "Igazolt"
)

var (
	// ErrUnknownStatus marks a status code the classifier does not recognize
	ErrUnknownStatus = errors.New("unknown excuse status")
	// ErrMissingDescription marks an excused absence without an excuse type
	ErrMissingDescription = errors.New("excused absence carries no excuse type")
)

// Classify maps an absence record's status code to its category. Excused
// records must carry an excuse type; its name becomes the category
// description. Errors name the offending record.
func Classify(rec *model.Absence) (Category, error) {
	switch rec.ExcuseStatus {
	case statusUnexcused:
		return Category{Kind: KindUnexcused}, nil
	case statusPending:
		return Category{Kind: KindPending}, nil
	case statusExcused:
		if rec.ExcuseType == nil || rec.ExcuseType.Name == "" {
			return Category{}, fmt.Errorf("classifying absence %s: %w", rec.Uid, ErrMissingDescription)
		}
		return Category{Kind: KindExcused, Description: rec.ExcuseType.Name}, nil
	default:
		return Category{}, fmt.Errorf("classifying absence %s: %w: %q", rec.Uid, ErrUnknownStatus, rec.ExcuseStatus)
	}
}
