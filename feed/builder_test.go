package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tilsite/content"
)

type fakeSource struct {
	records map[content.Collection][]content.Record
	fail    map[content.Collection]error
}

func (f *fakeSource) GetCollection(ctx context.Context, c content.Collection) ([]content.Record, error) {
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	return f.records[c], nil
}

func rec(c content.Collection, slug, title, date string) content.Record {
	return content.Record{
		Collection: c,
		Slug:       slug,
		Data: content.Data{
			Title:       title,
			Description: "about " + title,
			Author:      "Md Sohail",
			PublishDate: day(date),
			Tags:        []string{"go"},
		},
	}
}

var testChannel = Channel{
	Title:       "Md Sohail | Blog & TIL",
	Description: "My personal blog and TIL posts",
	Site:        "https://mdsohail.dev",
}

func TestItemsEndToEndOrder(t *testing.T) {
	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: {rec(content.Blog, "a", "A", "2024-01-10")},
		content.TIL:  {rec(content.TIL, "b", "B", "2024-02-01")},
	}}

	items, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "B", items[0].Title)
	assert.Equal(t, "/til/b/", items[0].Link)
	assert.Equal(t, "A", items[1].Title)
	assert.Equal(t, "/blog/a/", items[1].Link)
}

func TestItemsLinks(t *testing.T) {
	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: {rec(content.Blog, "hello-world", "Hello", "2024-01-01")},
		content.TIL:  {rec(content.TIL, "quick-tip", "Tip", "2024-01-02")},
	}}

	items, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)

	links := map[string]string{}
	for _, it := range items {
		links[it.Title] = it.Link
	}
	assert.Equal(t, "/blog/hello-world/", links["Hello"])
	assert.Equal(t, "/til/quick-tip/", links["Tip"])
}

func TestItemsOrderingIgnoresRetrievalOrder(t *testing.T) {
	var blog, til []content.Record
	start := day("2020-01-01")
	for i := 0; i < 40; i++ {
		d := start.Add(time.Duration(i) * 36 * time.Hour).Format("2006-01-02")
		if i%3 == 0 {
			til = append(til, rec(content.TIL, fmt.Sprintf("t%d", i), fmt.Sprint(i), d))
		} else {
			blog = append(blog, rec(content.Blog, fmt.Sprintf("b%d", i), fmt.Sprint(i), d))
		}
	}
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(blog), func(i, j int) { blog[i], blog[j] = blog[j], blog[i] })
	rng.Shuffle(len(til), func(i, j int) { til[i], til[j] = til[j], til[i] })

	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: blog,
		content.TIL:  til,
	}}
	items, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, len(blog)+len(til))
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].PublishDate.After(items[i-1].PublishDate),
			"item %d (%s) is newer than item %d (%s)", i, items[i].PublishDate, i-1, items[i-1].PublishDate)
	}
}

func TestItemsTiesKeepBlogBeforeTIL(t *testing.T) {
	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: {
			rec(content.Blog, "b1", "blog-1", "2024-05-05"),
			rec(content.Blog, "b2", "blog-2", "2024-05-05"),
		},
		content.TIL: {
			rec(content.TIL, "t1", "til-1", "2024-05-05"),
		},
	}}

	items, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)

	titles := []string{items[0].Title, items[1].Title, items[2].Title}
	assert.Equal(t, []string{"blog-1", "blog-2", "til-1"}, titles)
}

func TestItemsCompleteness(t *testing.T) {
	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: {rec(content.Blog, "x", "X", "2024-01-01"), rec(content.Blog, "y", "Y", "2024-01-03")},
		content.TIL:  {rec(content.TIL, "x", "X til", "2024-01-02")},
	}}

	items, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)

	seen := map[string]int{}
	for _, it := range items {
		seen[it.Link]++
	}
	assert.Equal(t, map[string]int{"/blog/x/": 1, "/blog/y/": 1, "/til/x/": 1}, seen)
}

func TestItemsDoesNotMutateSource(t *testing.T) {
	blog := []content.Record{
		rec(content.Blog, "old", "Old", "2020-01-01"),
		rec(content.Blog, "new", "New", "2024-01-01"),
	}
	src := &fakeSource{records: map[content.Collection][]content.Record{content.Blog: blog}}

	_, err := NewBuilder(src).Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", blog[0].Slug)
}

func TestBuildFailsWholeFeedWhenTILUnavailable(t *testing.T) {
	cause := errors.New("til store unreachable")
	src := &fakeSource{
		records: map[content.Collection][]content.Record{
			content.Blog: {rec(content.Blog, "a", "A", "2024-01-10")},
		},
		fail: map[content.Collection]error{content.TIL: cause},
	}

	doc, err := NewBuilder(src).Build(context.Background(), testChannel)
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrCollectionUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, doc)

	var ue *content.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, content.TIL, ue.Collection)
}

func TestBuildRejectsInvalidChannel(t *testing.T) {
	src := &fakeSource{}
	_, err := NewBuilder(src).Build(context.Background(), Channel{Title: "t", Description: "d", Site: "/relative"})
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestBuildEndToEnd(t *testing.T) {
	src := &fakeSource{records: map[content.Collection][]content.Record{
		content.Blog: {rec(content.Blog, "a", "A", "2024-01-10")},
		content.TIL:  {rec(content.TIL, "b", "B", "2024-02-01")},
	}}

	doc, err := NewBuilder(src).Build(context.Background(), testChannel)
	require.NoError(t, err)

	parsed := parseRSS(t, doc)
	require.Len(t, parsed.Channel.Items, 2)
	assert.Equal(t, "https://mdsohail.dev/til/b/", parsed.Channel.Items[0].Link)
	assert.Equal(t, "https://mdsohail.dev/blog/a/", parsed.Channel.Items[1].Link)
}
