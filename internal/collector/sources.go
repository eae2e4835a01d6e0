package collector

import "sort"

// Kind 源的抓取方式：RSS/Atom feed、Hacker News API 或选择器抓页面
type Kind string

const (
	KindFeed       Kind = "feed"
	KindHackerNews Kind = "hackernews"
	KindScrape     Kind = "scrape"
)

// Source 一个可选的头条源：展示名 + 地址 + 抓取方式。
// Kind 缺省按 feed 处理；Scrape 仅在 KindScrape 时使用
type Source struct {
	Name   string
	URL    string
	Kind   Kind
	Scrape *ScrapeConfig
}

// DefaultSources 默认的三个公开新闻源
func DefaultSources() []Source {
	return []Source{
		{Name: "BBC News (Top stories)", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
		{Name: "Reuters (World)", URL: "https://feeds.reuters.com/reuters/worldNews"},
		{Name: "The Guardian (UK)", URL: "https://www.theguardian.com/uk/rss"},
	}
}

// HackerNewsSource 可追加进目录的 Hacker News 源（走官方 API 而非 feed）
func HackerNewsSource() Source {
	return Source{
		Name: "Hacker News (Top stories)",
		URL:  "https://news.ycombinator.com",
		Kind: KindHackerNews,
	}
}

// SourcesFromMap 把 name->url 映射转成确定顺序的源列表。
// Go 的 map 遍历顺序随机，这里按名称排序保证批次结果可复现
func SourcesFromMap(m map[string]string) []Source {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Source, 0, len(names))
	for _, name := range names {
		out = append(out, Source{Name: name, URL: m[name]})
	}
	return out
}

// SelectSources 按名称从全量源中筛选子集，保持原有顺序；
// names 为空时返回全量
func SelectSources(all []Source, names []string) []Source {
	if len(names) == 0 {
		return all
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	out := make([]Source, 0, len(names))
	for _, s := range all {
		if _, ok := want[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}

// NewFetcher 按源的抓取方式构造对应的抓取器
func NewFetcher(s Source, timeoutSeconds int) Fetcher {
	switch s.Kind {
	case KindHackerNews:
		return NewHackerNewsFetcher(s.Name)
	case KindScrape:
		cfg := ScrapeConfig{}
		if s.Scrape != nil {
			cfg = *s.Scrape
		}
		return NewScrapeFetcher(s.Name, s.URL, cfg)
	}
	return NewFeedFetcher(s.Name, s.URL, timeoutSeconds)
}

// Fetchers 为一组源构造抓取器，顺序与源一致
func Fetchers(sources []Source, timeoutSeconds int) []Fetcher {
	fetchers := make([]Fetcher, 0, len(sources))
	for _, s := range sources {
		fetchers = append(fetchers, NewFetcher(s, timeoutSeconds))
	}
	return fetchers
}
