package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eringen/tilsite/content"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestByPublishDateSign(t *testing.T) {
	older := Item{PublishDate: day("2024-01-10")}
	newer := Item{PublishDate: day("2024-02-01")}

	assert.Negative(t, ByPublishDate(newer, older))
	assert.Positive(t, ByPublishDate(older, newer))
	assert.Zero(t, ByPublishDate(older, Item{PublishDate: day("2024-01-10")}))
}

func TestByPublishDateWorksForRecords(t *testing.T) {
	a := content.Record{Collection: content.Blog, Data: content.Data{PublishDate: day("2023-05-01")}}
	b := content.Record{Collection: content.TIL, Data: content.Data{PublishDate: day("2023-06-01")}}

	assert.Positive(t, ByPublishDate(a, b))
	assert.Negative(t, ByPublishDate(b, a))
}

func TestByPublishDateComparesInstants(t *testing.T) {
	utc := Item{PublishDate: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	offset := Item{PublishDate: time.Date(2024, 1, 1, 14, 0, 0, 0, time.FixedZone("EET", 2*3600))}

	assert.Zero(t, ByPublishDate(utc, offset))
}

func TestSortNewestFirstIsStable(t *testing.T) {
	items := []Item{
		{Title: "old", PublishDate: day("2024-01-01")},
		{Title: "tie-1", PublishDate: day("2024-03-01")},
		{Title: "new", PublishDate: day("2024-04-01")},
		{Title: "tie-2", PublishDate: day("2024-03-01")},
		{Title: "tie-3", PublishDate: day("2024-03-01")},
	}
	SortNewestFirst(items)

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	assert.Equal(t, []string{"new", "tie-1", "tie-2", "tie-3", "old"}, titles)
}
