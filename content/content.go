// Package content holds the typed records of the site's collections and the
// stores that serve them.
//
// Every store only ever returns records that passed Validate; records that
// fail the schema are dropped (and logged) at load time.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Collection names a homogeneous group of records.
type Collection string

const (
	Blog Collection = "blog"
	TIL  Collection = "til"
)

// Collections lists every collection the site serves, in feed concatenation order.
var Collections = []Collection{Blog, TIL}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, k := range Collections {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCollection converts a name into a known Collection.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection %q", name)
	}
	return c, nil
}

// Record is one validated entry of a collection.
type Record struct {
	Collection Collection
	Slug       string
	Data       Data
}

// Data is the frontmatter of a record after validation.
type Data struct {
	Title       string
	Description string
	Author      string
	PublishDate time.Time
	Tags        []string
}

// Published returns the record's publish instant.
func (r Record) Published() time.Time {
	return r.Data.PublishDate
}

// Link returns the site-relative permalink, e.g. "/blog/hello-world/".
func (r Record) Link() string {
	return "/" + string(r.Collection) + "/" + r.Slug + "/"
}

// Getter retrieves every record of a collection.
type Getter interface {
	GetCollection(ctx context.Context, c Collection) ([]Record, error)
}

var (
	// ErrCollectionUnavailable is matched by every retrieval failure.
	ErrCollectionUnavailable = errors.New("collection unavailable")
	// ErrNotFound is returned when a single record does not exist.
	ErrNotFound = errors.New("record not found")
)

// UnavailableError reports which collection could not be retrieved and why.
type UnavailableError struct {
	Collection Collection
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("collection %s unavailable: %v", e.Collection, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCollectionUnavailable) hold for every UnavailableError.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrCollectionUnavailable
}

// Unavailable wraps err as a retrieval failure of c. Errors that already
// carry ErrCollectionUnavailable are returned unchanged.
func Unavailable(c Collection, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCollectionUnavailable) {
		return err
	}
	return &UnavailableError{Collection: c, Err: err}
}
