package pipeline

import (
	"fmt"
	"time"

	"github.com/LJTian/SentimentHub/internal/analytics"
	"github.com/LJTian/SentimentHub/internal/collector"
	"github.com/LJTian/SentimentHub/internal/processor"
	"github.com/LJTian/SentimentHub/internal/sentiment"
)

// bucketSizes 允许的时间桶粒度，与控制面板的选项一一对应
var bucketSizes = map[string]time.Duration{
	"1min":  time.Minute,
	"5min":  5 * time.Minute,
	"15min": 15 * time.Minute,
	"30min": 30 * time.Minute,
	"1h":    time.Hour,
}

// ParseBucketSize 把 "5min" / "1h" 这类粒度串转成 Duration
func ParseBucketSize(s string) (time.Duration, error) {
	if d, ok := bucketSizes[s]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("pipeline: invalid bucket size %q (allowed: 1min/5min/15min/30min/1h)", s)
}

// Params 一次流水线运行的全部参数
type Params struct {
	Sources        []collector.Source
	Keyword        string
	NegThresh      float64
	PosThresh      float64
	LookbackHours  int
	BucketSize     time.Duration
	ExcludeImputed bool
}

// DefaultParams 控制面板的默认取值：阈值 ±0.05，回看 24 小时，5 分钟桶，剔除补时记录
func DefaultParams(sources []collector.Source) Params {
	return Params{
		Sources:        sources,
		NegThresh:      -0.05,
		PosThresh:      0.05,
		LookbackHours:  24,
		BucketSize:     5 * time.Minute,
		ExcludeImputed: true,
	}
}

// Validate 校验参数范围；不合法的配置在进入流水线之前就被拒绝
func (p Params) Validate() error {
	if err := sentiment.ValidateThresholds(p.NegThresh, p.PosThresh); err != nil {
		return err
	}
	if p.LookbackHours < 1 || p.LookbackHours > 72 {
		return fmt.Errorf("pipeline: lookback %d hours out of range [1,72]", p.LookbackHours)
	}
	valid := false
	for _, d := range bucketSizes {
		if p.BucketSize == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("pipeline: bucket size %s not in allowed set", p.BucketSize)
	}
	return nil
}

// Result 一次运行的全部产物，供展示层直接使用
type Result struct {
	FetchedAt time.Time                 `json:"fetched_at"`
	Records   []sentiment.ScoredRecord  `json:"records"`
	Series    []analytics.TimeBucket    `json:"series"`
	Summaries []analytics.SourceSummary `json:"summaries"`
}

// Pipeline 无状态流水线：同样的输入和同一个 now 产出同样的结果，
// 多个调用方并发各跑各的互不影响
type Pipeline struct {
	scorer         *sentiment.Scorer
	feedTimeoutSec int
	fetchersFor    func([]collector.Source) []collector.Fetcher
}

// New analyzer 为 nil 时用默认 VADER 模型
func New(analyzer sentiment.Analyzer, feedTimeoutSeconds int) *Pipeline {
	p := &Pipeline{
		scorer:         sentiment.NewScorer(analyzer),
		feedTimeoutSec: feedTimeoutSeconds,
	}
	p.fetchersFor = func(sources []collector.Source) []collector.Fetcher {
		return collector.Fetchers(sources, p.feedTimeoutSec)
	}
	return p
}

// SetFetcherFactory 替换源到抓取器的映射，测试与非 RSS 源接入用
func (p *Pipeline) SetFetcherFactory(f func([]collector.Source) []collector.Fetcher) {
	p.fetchersFor = f
}

// Ingest 抓取并规整一批头条。逐源隔离失败；now 整批只用这一个
func (p *Pipeline) Ingest(sources []collector.Source, now time.Time) []processor.HeadlineRecord {
	results := collector.Collect(p.fetchersFor(sources))
	return processor.Normalize(results, now)
}

// Analyze 对已规整的记录跑打分与聚合，不再访问网络
func (p *Pipeline) Analyze(records []processor.HeadlineRecord, params Params, now time.Time) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	filtered := processor.FilterKeyword(records, params.Keyword)

	scored, err := p.scorer.Score(filtered, params.NegThresh, params.PosThresh)
	if err != nil {
		return nil, err
	}

	return &Result{
		FetchedAt: now.UTC(),
		Records:   scored,
		Series:    analytics.AggregateOverTime(scored, params.LookbackHours, params.BucketSize, params.ExcludeImputed, now),
		Summaries: analytics.AggregateBySource(scored),
	}, nil
}

// Run 完整跑一轮：抓取 + 分析
func (p *Pipeline) Run(params Params, now time.Time) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	records := p.Ingest(params.Sources, now)
	return p.Analyze(records, params, now)
}
