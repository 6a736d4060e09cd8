// Package combine correlates the portal's four independently-fetched record
// streams into one merged timeline. Lessons are the primary stream; homework
// and absences are joined onto them by a content-derived surrogate key, exams
// by their stable uid. Secondary records a lesson claims are removed from
// their index, and whatever is left over is surfaced as the remainder.
package combine

import (
	"fmt"
	"hash/fnv"
	"io"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// SurrogateKey is a synthetic join key for records that lack a stable
// cross-record identifier. It is derived from the calendar date (in the
// reference timezone) and the subject uid, so a homework deadline and a
// lesson on the same day for the same subject produce the same key no matter
// what time of day either was stamped with.
//
// FNV-64a keeps the key stable across process runs; Go's map hashing is
// seeded per process and would not be. Two different (date, subject) pairs
// can collide; colliding entries overwrite last-write-wins, a known
// limitation of the content-derived key.
type SurrogateKey uint64

// KeyFor computes the surrogate key of a (date, subject) pair
func KeyFor(date time.Time, subjectUid string) SurrogateKey {
	day := util.GetTimeProvider().Format(date, util.ISODate)

	h := fnv.New64a()
	io.WriteString(h, day)
	io.WriteString(h, "|")
	io.WriteString(h, subjectUid)
	return SurrogateKey(h.Sum64())
}

// keyTime parses a record's defining timestamp for key computation. Unlike
// week bucketing, a parse failure here fails the whole merge: a single bad
// key could silently corrupt the join for unrelated records, so the join is
// all-or-nothing.
func keyTime(kind, uid, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("computing join key for %s %s: %q is not a valid timestamp: %w", kind, uid, raw, err)
	}
	return t, nil
}
