package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/SentimentHub/internal/collector"
	"github.com/LJTian/SentimentHub/internal/pipeline"
	"github.com/LJTian/SentimentHub/internal/storage"
)

// Scheduler 定时重跑流水线：预热批次缓存并把打分结果归档。
// 相当于控制面板里"每 5 分钟自动刷新"的后台版本
type Scheduler struct {
	cron     *cron.Cron
	pipe     *pipeline.Pipeline
	store    *storage.Store
	sources  []collector.Source
	cacheTTL time.Duration
}

func New(spec string, pipe *pipeline.Pipeline, store *storage.Store, sources []collector.Source, cacheTTL time.Duration) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		pipe:     pipe,
		store:    store,
		sources:  sources,
		cacheTTL: cacheTTL,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮，避免与服务启动后的首批请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start refresh job...")

	now := time.Now()
	records := s.pipe.Ingest(s.sources, now)
	if len(records) == 0 {
		log.Println("refresh job got 0 records")
		return
	}

	// 预热批次缓存：后续同一源集合的请求直接命中
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name)
	}
	s.store.PutBatch(context.Background(), storage.BatchCacheKey(names), records, s.cacheTTL)

	res, err := s.pipe.Analyze(records, pipeline.DefaultParams(s.sources), now)
	if err != nil {
		log.Printf("refresh job analyze error: %v", err)
		return
	}

	if err := s.store.SaveBatch(res.Records); err != nil {
		log.Printf("refresh job save error: %v", err)
		return
	}

	log.Printf("refresh job done, records=%d buckets=%d sources=%d",
		len(res.Records), len(res.Series), len(res.Summaries))
}
