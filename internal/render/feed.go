package render

import (
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/site"
)

// pubDateLayout is the RFC 822 variant RSS readers expect.
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	AtomLink    atomLink  `xml:"atom:link"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Description string  `xml:"description"`
	Content     cdata   `xml:"content:encoded"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

// feedItem is a rendered child page queued for its parent's feed.
type feedItem struct {
	page    *site.Page
	content string
}

// renderFeed builds the rss.xml document for an index page from its
// already rendered direct children.
func (r *Renderer) renderFeed(index *site.Page, items []feedItem) ([]byte, error) {
	feedURL, err := joinURL(r.cfg.URL, index.Path, "rss.xml")
	if err != nil {
		return nil, err
	}

	channel := rssChannel{
		Title:       r.cfg.Title,
		Link:        r.cfg.URL,
		Description: r.cfg.Description,
		AtomLink:    atomLink{Href: feedURL, Rel: "self", Type: "application/rss+xml"},
	}

	for _, it := range items {
		link, err := joinURL(r.cfg.URL, it.page.Path)
		if err != nil {
			return nil, err
		}
		description := it.page.Info.Description
		if description == "" {
			description = r.cfg.Description
		}
		item := rssItem{
			Title:       it.page.Info.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: description,
			Content:     cdata{Value: it.content},
		}
		if it.page.Info.ClosedAt != nil {
			item.PubDate = it.page.Info.ClosedAt.UTC().Format(pubDateLayout)
		}
		channel.Items = append(channel.Items, item)
	}

	feed := rssFeed{
		Version:   "2.0",
		AtomNS:    "http://www.w3.org/2005/Atom",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel:   channel,
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, errors.CategoryFeed, errors.SeverityFatal,
			"marshalling feed for %s", index.Path)
	}
	return append([]byte(xml.Header), out...), nil
}

// joinURL joins path elements onto the site URL, keeping the trailing
// slash semantics of page paths out of the result.
func joinURL(base string, elem ...string) (string, error) {
	trimmed := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			trimmed = append(trimmed, e)
		}
	}
	out, err := url.JoinPath(base, trimmed...)
	if err != nil {
		return "", errors.Wrapf(err, errors.CategoryFeed, errors.SeverityFatal, "joining url %q", base)
	}
	return out, nil
}
