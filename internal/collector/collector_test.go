package collector

import (
	"errors"
	"fmt"
	"testing"
)

type fakeFetcher struct {
	name  string
	items []HeadlineItem
	err   error
}

func (f *fakeFetcher) Name() string                   { return f.name }
func (f *fakeFetcher) Fetch() ([]HeadlineItem, error) { return f.items, f.err }

func TestCollectIsolatesSourceFailure(t *testing.T) {
	ok := &fakeFetcher{
		name:  "good",
		items: []HeadlineItem{{Source: "good", Title: "Title"}},
	}
	bad := &fakeFetcher{name: "bad", err: errors.New("connection refused")}

	results := Collect([]Fetcher{bad, ok})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// 失败的源带错误、零条目，成功的源不受影响
	if results[0].Err == nil {
		t.Fatalf("expected error for bad source")
	}
	if len(results[0].Items) != 0 {
		t.Fatalf("failed source should contribute 0 items, got %d", len(results[0].Items))
	}
	if results[1].Err != nil || len(results[1].Items) != 1 {
		t.Fatalf("good source should still deliver: %+v", results[1])
	}
}

func TestCollectCapsEntriesPerSource(t *testing.T) {
	items := make([]HeadlineItem, 0, 80)
	for i := 0; i < 80; i++ {
		items = append(items, HeadlineItem{Source: "big", Title: fmt.Sprintf("Title %d", i)})
	}
	f := &fakeFetcher{name: "big", items: items}

	results := Collect([]Fetcher{f})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].Items) != maxEntriesPerSource {
		t.Fatalf("expected cap at %d, got %d", maxEntriesPerSource, len(results[0].Items))
	}
	// 保留的是前 50 条
	if results[0].Items[0].Title != "Title 0" {
		t.Fatalf("cap should keep leading entries, got %q", results[0].Items[0].Title)
	}
}

func TestSourcesFromMapDeterministicOrder(t *testing.T) {
	m := map[string]string{
		"Zeta News":  "https://example.com/z.xml",
		"Alpha Wire": "https://example.com/a.xml",
		"Mid Feed":   "https://example.com/m.xml",
	}

	got := SourcesFromMap(m)
	if len(got) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(got))
	}
	// 按名称排序，保证 map 随机顺序不影响批次
	if got[0].Name != "Alpha Wire" || got[1].Name != "Mid Feed" || got[2].Name != "Zeta News" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestNewFetcherSelectsKind(t *testing.T) {
	feed := NewFetcher(Source{Name: "wire", URL: "https://example.com/rss"}, 5)
	if _, ok := feed.(*FeedFetcher); !ok {
		t.Fatalf("default kind should build a FeedFetcher, got %T", feed)
	}
	if feed.Name() != "wire" {
		t.Fatalf("feed fetcher name = %q, want %q", feed.Name(), "wire")
	}

	hn := NewFetcher(HackerNewsSource(), 5)
	if _, ok := hn.(*HackerNewsFetcher); !ok {
		t.Fatalf("hackernews kind should build a HackerNewsFetcher, got %T", hn)
	}
	if hn.Name() != "Hacker News (Top stories)" {
		t.Fatalf("hackernews fetcher name = %q", hn.Name())
	}

	scrape := NewFetcher(Source{
		Name: "board",
		URL:  "https://example.com/board",
		Kind: KindScrape,
		Scrape: &ScrapeConfig{
			ItemSelector:  "li.headline",
			TitleSelector: "a",
		},
	}, 5)
	sf, ok := scrape.(*ScrapeFetcher)
	if !ok {
		t.Fatalf("scrape kind should build a ScrapeFetcher, got %T", scrape)
	}
	if sf.Name() != "board" || sf.url != "https://example.com/board" || sf.itemSelector != "li.headline" {
		t.Fatalf("scrape config not carried over: %+v", sf)
	}
}

func TestFetchersFollowSourceOrder(t *testing.T) {
	sources := append(DefaultSources(), HackerNewsSource())

	fetchers := Fetchers(sources, 5)
	if len(fetchers) != len(sources) {
		t.Fatalf("expected %d fetchers, got %d", len(sources), len(fetchers))
	}
	for i, f := range fetchers {
		if f.Name() != sources[i].Name {
			t.Fatalf("fetcher %d name = %q, want %q", i, f.Name(), sources[i].Name)
		}
	}
	// 末位的 Hacker News 走 API 抓取器而非 feed
	if _, ok := fetchers[len(fetchers)-1].(*HackerNewsFetcher); !ok {
		t.Fatalf("hackernews source should not be fetched as a feed: %T", fetchers[len(fetchers)-1])
	}
}

func TestSelectSourcesSubset(t *testing.T) {
	all := DefaultSources()

	sub := SelectSources(all, []string{"The Guardian (UK)", "BBC News (Top stories)"})
	if len(sub) != 2 {
		t.Fatalf("expected 2 selected sources, got %d", len(sub))
	}
	// 子集保持全量列表的顺序，而非请求顺序
	if sub[0].Name != "BBC News (Top stories)" {
		t.Fatalf("subset should keep catalog order, got %q first", sub[0].Name)
	}

	if got := SelectSources(all, nil); len(got) != len(all) {
		t.Fatalf("empty selection should return all sources")
	}

	if got := SelectSources(all, []string{"does not exist"}); len(got) != 0 {
		t.Fatalf("unknown names should select nothing, got %d", len(got))
	}
}
