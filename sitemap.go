package tilsite

import (
	"bytes"
	"encoding/xml"
	"time"

	"github.com/eringen/tilsite/content"
	"github.com/eringen/tilsite/feed"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the site root, each collection index and every item.
// Collection indexes carry the date of their newest item.
func renderSitemap(base string, items []feed.Item) ([]byte, error) {
	newest := make(map[content.Collection]time.Time)
	for _, it := range items {
		if it.PublishDate.After(newest[it.Collection]) {
			newest[it.Collection] = it.PublishDate
		}
	}

	urls := []sitemapURL{{Loc: feed.BuildURL(base)}}
	for _, c := range content.Collections {
		u := sitemapURL{Loc: feed.BuildURL(base, string(c))}
		if t, ok := newest[c]; ok {
			u.LastMod = t.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, it := range items {
		urls = append(urls, sitemapURL{
			Loc:     feed.AbsoluteURL(base, it.Link),
			LastMod: it.PublishDate.UTC().Format("2006-01-02"),
		})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
