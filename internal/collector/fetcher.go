package collector

import "log"

// HeadlineItem 单条原始头条：只保留源名、标题、链接与原始发布时间字符串，
// 时间解析、去重与补时在 processor 中统一处理
type HeadlineItem struct {
	Source       string
	Title        string
	Link         string
	PublishedRaw string
}

// Fetcher 抽象每一个头条数据源
type Fetcher interface {
	Name() string
	Fetch() ([]HeadlineItem, error)
}

// Result 按源打包一次抓取的结果：成功带条目，失败带原因；
// 单个源的失败不影响整批
type Result struct {
	Source string
	Items  []HeadlineItem
	Err    error
}

// maxEntriesPerSource 每个源最多保留的条目数
const maxEntriesPerSource = 50

// Collect 按给定顺序逐个抓取所有源，错误按源隔离
func Collect(fetchers []Fetcher) []Result {
	results := make([]Result, 0, len(fetchers))
	for _, f := range fetchers {
		name := f.Name()
		items, err := f.Fetch()
		if err != nil {
			log.Printf("collect %s error: %v", name, err)
			results = append(results, Result{Source: name, Err: err})
			continue
		}
		if len(items) > maxEntriesPerSource {
			items = items[:maxEntriesPerSource]
		}
		results = append(results, Result{Source: name, Items: items})
	}
	return results
}
