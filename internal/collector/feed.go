package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mmcdole/gofeed"
)

const defaultFeedTimeout = 10 * time.Second

// FeedFetcher 通过 RSS/Atom feed 抓取某个源的头条
type FeedFetcher struct {
	name    string
	url     string
	timeout time.Duration
}

// NewFeedFetcher timeoutSeconds <= 0 时使用默认超时
func NewFeedFetcher(name, url string, timeoutSeconds int) *FeedFetcher {
	timeout := defaultFeedTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &FeedFetcher{name: name, url: url, timeout: timeout}
}

func (f *FeedFetcher) Name() string {
	return f.name
}

func (f *FeedFetcher) Fetch() ([]HeadlineItem, error) {
	log.Printf("fetch feed %s ...", f.name)

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed %s: parse: %w", f.name, err)
	}

	items := make([]HeadlineItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		// 原始时间优先取 published，缺失时回退 updated，再缺省为空串
		published := it.Published
		if published == "" {
			published = it.Updated
		}
		items = append(items, HeadlineItem{
			Source:       f.name,
			Title:        it.Title,
			Link:         it.Link,
			PublishedRaw: published,
		})
	}
	return items, nil
}
