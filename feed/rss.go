package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ContentType is the media type of a rendered feed.
const ContentType = "application/rss+xml; charset=utf-8"

// ErrInvalidChannel is returned when channel metadata is incomplete.
var ErrInvalidChannel = errors.New("invalid feed channel")

// Channel is the site-level metadata of the feed.
type Channel struct {
	Title       string
	Description string
	Site        string // absolute base URL
}

// Validate checks that every channel field is set and Site is absolute.
func (ch Channel) Validate() error {
	var missing []string
	if strings.TrimSpace(ch.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(ch.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(ch.Site) == "" {
		missing = append(missing, "site")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidChannel, strings.Join(missing, ", "))
	}
	u, err := url.Parse(ch.Site)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: site %q is not an absolute URL", ErrInvalidChannel, ch.Site)
	}
	return nil
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Link        string    `xml:"link"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// FormatPubDate formats t as an RFC 822 date in UTC.
func FormatPubDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

// Render serializes ch and items, in the given order, into an RSS 2.0 document.
func Render(ch Channel, items []Item) ([]byte, error) {
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	out := make([]rssItem, 0, len(items))
	for _, it := range items {
		link := AbsoluteURL(ch.Site, it.Link)
		out = append(out, rssItem{
			Title:       it.Title,
			Description: it.Description,
			PubDate:     FormatPubDate(it.PublishDate),
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		})
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       ch.Title,
			Description: ch.Description,
			Link:        ch.Site,
			Items:       out,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
