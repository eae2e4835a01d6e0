package processor

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/LJTian/SentimentHub/internal/collector"
)

// HeadlineRecord 规整后的头条记录。
// PublishedAt 永远有值：原始时间缺失或无法解析时用整批统一的 now 兜底，
// 并通过 Imputed 标记出来，方便下游选择剔除
type HeadlineRecord struct {
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	PublishedRaw string    `json:"published_raw"`
	PublishedAt  time.Time `json:"published_at"`
	Imputed      bool      `json:"imputed"`
}

// Normalize 把逐源抓取结果规整成一批头条记录：
// 去掉空标题，按标题精确去重（先到先留，跨源同样生效），
// 解析并统一到 UTC 时间。now 在整批内只取一次，不逐条重采
func Normalize(results []collector.Result, now time.Time) []HeadlineRecord {
	now = now.UTC()

	out := make([]HeadlineRecord, 0, 64)
	seen := make(map[string]struct{})

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, it := range r.Items {
			title := strings.TrimSpace(it.Title)
			if title == "" {
				continue
			}
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}

			rec := HeadlineRecord{
				Source:       r.Source,
				Title:        title,
				Link:         it.Link,
				PublishedRaw: it.PublishedRaw,
			}
			rec.PublishedAt, rec.Imputed = parsePublished(it.PublishedRaw, now)

			out = append(out, rec)
		}
	}
	return out
}

// parsePublished 解析原始发布时间；失败时返回 (now, true)
func parsePublished(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, true
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return now, true
	}
	return t.UTC(), false
}

// FilterKeyword 按关键字过滤标题（大小写不敏感的子串匹配）。
// kw 为空时原样返回
func FilterKeyword(records []HeadlineRecord, kw string) []HeadlineRecord {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return records
	}
	lower := strings.ToLower(kw)

	out := make([]HeadlineRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), lower) {
			out = append(out, r)
		}
	}
	return out
}
