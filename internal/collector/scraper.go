package collector

import (
	"log"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const scraperTimeout = 10 * time.Second

// ScrapeFetcher 基于 CSS 选择器抓取没有 feed 的站点头条。
// 页面结构可能调整，此处基于配置的 DOM 选择器做"尽力而为"的解析
type ScrapeFetcher struct {
	name          string
	url           string
	allowedDomain string
	itemSelector  string
	titleSelector string
	linkSelector  string
	timeSelector  string
}

// ScrapeConfig 选择器配置：Item 定位列表项，其余在列表项内取值。
// TitleSelector 为空时取列表项自身文本
type ScrapeConfig struct {
	AllowedDomain string
	ItemSelector  string
	TitleSelector string
	LinkSelector  string
	TimeSelector  string
}

func NewScrapeFetcher(name, url string, cfg ScrapeConfig) *ScrapeFetcher {
	return &ScrapeFetcher{
		name:          name,
		url:           url,
		allowedDomain: cfg.AllowedDomain,
		itemSelector:  cfg.ItemSelector,
		titleSelector: cfg.TitleSelector,
		linkSelector:  cfg.LinkSelector,
		timeSelector:  cfg.TimeSelector,
	}
}

func (s *ScrapeFetcher) Name() string {
	return s.name
}

func (s *ScrapeFetcher) Fetch() ([]HeadlineItem, error) {
	log.Printf("scrape %s ...", s.name)

	opts := []colly.CollectorOption{
		colly.UserAgent("SentimentHubBot/1.0"),
	}
	if s.allowedDomain != "" {
		opts = append(opts, colly.AllowedDomains(s.allowedDomain))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(scraperTimeout)

	items := make([]HeadlineItem, 0, maxEntriesPerSource)

	c.OnHTML(s.itemSelector, func(e *colly.HTMLElement) {
		if len(items) >= maxEntriesPerSource {
			return
		}

		title := strings.TrimSpace(e.Text)
		if s.titleSelector != "" {
			title = strings.TrimSpace(e.ChildText(s.titleSelector))
		}
		if title == "" {
			return
		}

		link := ""
		if s.linkSelector != "" {
			link = e.Request.AbsoluteURL(e.ChildAttr(s.linkSelector, "href"))
		} else if href := e.Attr("href"); href != "" {
			link = e.Request.AbsoluteURL(href)
		}

		published := ""
		if s.timeSelector != "" {
			published = strings.TrimSpace(e.ChildAttr(s.timeSelector, "datetime"))
			if published == "" {
				published = strings.TrimSpace(e.ChildText(s.timeSelector))
			}
		}

		items = append(items, HeadlineItem{
			Source:       s.name,
			Title:        title,
			Link:         link,
			PublishedRaw: published,
		})
	})

	if err := c.Visit(s.url); err != nil {
		return nil, err
	}
	c.Wait()

	return items, nil
}
