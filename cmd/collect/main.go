package main

import (
	"log"

	"github.com/LJTian/SentimentHub/internal/collector"
	"github.com/LJTian/SentimentHub/internal/config"
	"github.com/LJTian/SentimentHub/internal/pipeline"
	"github.com/LJTian/SentimentHub/internal/scheduler"
	"github.com/LJTian/SentimentHub/internal/storage"
)

// 一个仅执行一次采集与打分的命令行入口：适合手动触发或排查数据
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 与 cmd/api 保持一致：默认 feed 源 + Hacker News
	catalog := append(collector.DefaultSources(), collector.HackerNewsSource())
	pipe := pipeline.New(nil, cfg.FeedTimeoutSec)

	s, err := scheduler.New(cfg.CronSpec, pipe, store, catalog, cfg.CacheTTL())
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	// 只执行一轮后退出
	s.RunOnce()
}
