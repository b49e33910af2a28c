// Package feed merges the site's collections into one chronological list and
// renders it as an RSS 2.0 document.
package feed

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/tilsite/content"
)

// Item is the syndication view of a record. Items live for one request.
type Item struct {
	Title       string
	Description string
	PublishDate time.Time
	Link        string // site-relative, "/<collection>/<slug>/"
	Collection  content.Collection
}

// Published returns the item's sort key.
func (i Item) Published() time.Time {
	return i.PublishDate
}

// FromRecord projects a record onto a feed item.
func FromRecord(r content.Record) Item {
	return Item{
		Title:       r.Data.Title,
		Description: r.Data.Description,
		PublishDate: r.Data.PublishDate,
		Link:        r.Link(),
		Collection:  r.Collection,
	}
}

// Builder assembles feed items from a content source.
type Builder struct {
	Source      content.Getter
	Collections []content.Collection
}

// NewBuilder returns a Builder over src. With no collections given it
// merges every known collection.
func NewBuilder(src content.Getter, collections ...content.Collection) *Builder {
	if len(collections) == 0 {
		collections = content.Collections
	}
	return &Builder{Source: src, Collections: collections}
}

// Items fetches every collection concurrently and returns their records as
// items, newest first. Items with equal dates keep collection order. Any
// fetch failure fails the whole call.
func (b *Builder) Items(ctx context.Context) ([]Item, error) {
	fetched := make([][]content.Record, len(b.Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range b.Collections {
		g.Go(func() error {
			records, err := b.Source.GetCollection(gctx, c)
			if err != nil {
				return content.Unavailable(c, err)
			}
			fetched[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, records := range fetched {
		n += len(records)
	}
	items := make([]Item, 0, n)
	for _, records := range fetched {
		for _, r := range records {
			items = append(items, FromRecord(r))
		}
	}
	SortNewestFirst(items)
	return items, nil
}

// Build produces the complete RSS document for ch, or an error and no
// document at all.
func (b *Builder) Build(ctx context.Context, ch Channel) ([]byte, error) {
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	items, err := b.Items(ctx)
	if err != nil {
		return nil, err
	}
	return Render(ch, items)
}
