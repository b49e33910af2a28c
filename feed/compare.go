package feed

import (
	"slices"
	"time"
)

// Dated is anything with a publish instant.
type Dated interface {
	Published() time.Time
}

// ByPublishDate orders newest first: negative when a is newer than b,
// positive when older, zero when both share the same instant.
func ByPublishDate[T Dated](a, b T) int {
	return b.Published().Compare(a.Published())
}

// SortNewestFirst sorts s in place by publish date, newest first. Ties keep
// their original relative order.
func SortNewestFirst[T Dated](s []T) {
	slices.SortStableFunc(s, ByPublishDate[T])
}
