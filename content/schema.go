package content

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Frontmatter is the raw metadata block of a content file. Pointer fields
// must be present but may be empty.
type Frontmatter struct {
	Title       string   `yaml:"title" validate:"required"`
	Description *string  `yaml:"description" validate:"required"`
	Author      *string  `yaml:"author" validate:"required"`
	PublishDate string   `yaml:"publishDate" validate:"required"`
	Tags        []string `yaml:"tags" validate:"required"`
	Slug        string   `yaml:"slug"`
}

// Result is the outcome of validating one record: either a Record or the
// list of problems that kept it out of its collection.
type Result struct {
	Source   string
	Record   Record
	Problems []string
}

// OK reports whether the record passed validation.
func (r Result) OK() bool {
	return len(r.Problems) == 0
}

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report frontmatter keys instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a publish date in any of the accepted layouts. Values
// without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD or RFC 3339", s)
}

// Validate checks fm against the collection schema and builds the Record.
func Validate(c Collection, slug string, fm Frontmatter) Result {
	var problems []string
	if !c.Valid() {
		problems = append(problems, fmt.Sprintf("unknown collection %q", c))
	}
	if strings.TrimSpace(slug) == "" {
		problems = append(problems, "slug is required")
	}
	if err := schema.Struct(fm); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Result{Problems: append(problems, err.Error())}
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	var published time.Time
	if fm.PublishDate != "" {
		t, err := ParseDate(fm.PublishDate)
		if err != nil {
			problems = append(problems, "publishDate: "+err.Error())
		}
		published = t
	}
	if len(problems) > 0 {
		return Result{Problems: problems}
	}
	return Result{Record: Record{
		Collection: c,
		Slug:       slug,
		Data: Data{
			Title:       fm.Title,
			Description: *fm.Description,
			Author:      *fm.Author,
			PublishDate: published,
			Tags:        fm.Tags,
		},
	}}
}
