package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/httpclient"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// DataSource tags records that came from a channel feed.
const DataSource = "youtube_feed"

// Importer turns a channel or playlist Atom feed into raw records.
type Importer struct {
	feedParser *gofeed.Parser
}

// fetchTimeout bounds one feed download.
const fetchTimeout = 30 * time.Second

// NewImporter creates a new feed importer
func NewImporter() *Importer {
	return NewImporterWithClient(httpclient.NewClient(fetchTimeout, ""))
}

// NewImporterWithClient creates an importer that downloads feeds with client.
func NewImporterWithClient(client *http.Client) *Importer {
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = httpclient.DefaultUserAgent
	return &Importer{feedParser: p}
}

// ParseURL fetches and converts the feed at feedURL.
func (i *Importer) ParseURL(ctx context.Context, feedURL string) ([]domain.RawRecord, error) {
	feed, err := i.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return records(feed)
}

// Parse converts a feed read from r.
func (i *Importer) Parse(r io.Reader) ([]domain.RawRecord, error) {
	feed, err := i.feedParser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return records(feed)
}

func records(feed *gofeed.Feed) ([]domain.RawRecord, error) {
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	channelID := extValue(feed.Extensions, "yt", "channelId")
	channelName := ""
	if feed.Author != nil {
		channelName = feed.Author.Name
	}

	out := make([]domain.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		rec := domain.RawRecord{
			"VideoURL":    item.Link,
			"Video_title": item.Title,
			"Description": item.Description,
		}

		if id := extValue(item.Extensions, "yt", "videoId"); id != "" {
			rec["video_id"] = id
		}

		name := channelName
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			name = item.Authors[0].Name
		}
		if name != "" {
			rec["Channel_Name"] = name
		}

		cid := extValue(item.Extensions, "yt", "channelId")
		if cid == "" {
			cid = channelID
		}
		if cid != "" {
			rec["Channel_Id"] = cid
		}

		if group := mediaGroup(item.Extensions); group != nil {
			if rec["Description"] == "" {
				rec["Description"] = childValue(group.Children, "description")
			}
			if views := mediaViews(group); views != "" {
				rec["Views"] = views
			}
		}

		if item.PublishedParsed != nil {
			rec["published_Date"] = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.Published != "" {
			rec["published_Date"] = item.Published
		}

		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid links found in feed items")
	}
	return out, nil
}

func extValue(exts ext.Extensions, prefix, name string) string {
	if exts == nil {
		return ""
	}
	return childValue(exts[prefix], name)
}

func childValue(children map[string][]ext.Extension, name string) string {
	if vals := children[name]; len(vals) > 0 {
		return vals[0].Value
	}
	return ""
}

func mediaGroup(exts ext.Extensions) *ext.Extension {
	if exts == nil {
		return nil
	}
	groups := exts["media"]["group"]
	if len(groups) == 0 {
		return nil
	}
	return &groups[0]
}

// mediaViews reads media:community/media:statistics@views.
func mediaViews(group *ext.Extension) string {
	for _, community := range group.Children["community"] {
		for _, stats := range community.Children["statistics"] {
			if v := stats.Attrs["views"]; v != "" {
				return v
			}
		}
	}
	return ""
}
