// Package seed pulls items from an RSS/Atom feed and turns them into tweet
// stimuli, as an alternate way to fill the social-media wall before an
// exercise.
package seed

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"crisisdrill/internal/domain"
)

type Feed struct {
	loc    *time.Location
	client *http.Client
	parser *gofeed.Parser
}

func NewFeed(loc *time.Location) *Feed {
	return &Feed{
		loc:    loc,
		client: &http.Client{Timeout: 15 * time.Second},
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads the feed and converts each item into a tweet. Items
// without a published date are stamped with the current time, so they are
// due immediately.
func (f *Feed) Fetch(ctx context.Context, url string) ([]domain.Tweet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	tweets := make([]domain.Tweet, 0, len(feed.Items))
	for _, item := range feed.Items {
		at := time.Now().In(f.loc)
		if item.PublishedParsed != nil {
			at = item.PublishedParsed.In(f.loc)
		}
		sender := feed.Title
		if item.Author != nil && item.Author.Name != "" {
			sender = item.Author.Name
		}
		tweets = append(tweets, domain.Tweet{
			ID:     "tw-feed-" + shortHash(item.GUID+item.Link),
			At:     at,
			Sender: sender,
			Text:   item.Title,
		})
	}
	return tweets, nil
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return fmt.Sprintf("%x", sum)[:12]
}
