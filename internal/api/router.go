package api

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/SentimentHub/internal/collector"
	"github.com/LJTian/SentimentHub/internal/config"
	"github.com/LJTian/SentimentHub/internal/pipeline"
	"github.com/LJTian/SentimentHub/internal/processor"
	"github.com/LJTian/SentimentHub/internal/storage"
)

type Server struct {
	pipe    *pipeline.Pipeline
	store   *storage.Store
	catalog []collector.Source
	cfg     *config.Config
}

func NewServer(pipe *pipeline.Pipeline, store *storage.Store, catalog []collector.Source, cfg *config.Config) *Server {
	return &Server{pipe: pipe, store: store, catalog: catalog, cfg: cfg}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/headlines", s.listHeadlines)
		v1.GET("/timeseries", s.listTimeSeries)
		v1.GET("/sources", s.listSourceSummaries)
		v1.GET("/export", s.exportCSV)
		v1.GET("/archive", s.listArchive)
		v1.POST("/refresh", s.refresh)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// records 批次缓存的读穿：命中直接用，未命中抓一轮并回写
func (s *Server) records(ctx context.Context, sources []collector.Source, now time.Time) []processor.HeadlineRecord {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}
	key := storage.BatchCacheKey(names)

	if cached, ok := s.store.GetBatch(ctx, key); ok {
		return cached
	}

	records := s.pipe.Ingest(sources, now)
	if len(records) > 0 {
		s.store.PutBatch(ctx, key, records, s.cfg.CacheTTL())
	}
	return records
}

func (s *Server) run(c *gin.Context) (*pipeline.Result, bool) {
	params, err := parseParams(c, s.catalog)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}

	now := config.Now()
	records := s.records(c.Request.Context(), params.Sources, now)

	res, err := s.pipe.Analyze(records, params, now)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) listHeadlines(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}

	// 表格按 compound 降序展示
	records := res.Records
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Compound > records[j].Compound
	})

	c.JSON(http.StatusOK, gin.H{
		"code":       "ok",
		"message":    "success",
		"fetched_at": res.FetchedAt,
		"data":       records,
	})
}

func (s *Server) listTimeSeries(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       "ok",
		"message":    "success",
		"fetched_at": res.FetchedAt,
		"data":       res.Series,
	})
}

func (s *Server) listSourceSummaries(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       "ok",
		"message":    "success",
		"fetched_at": res.FetchedAt,
		"data":       res.Summaries,
	})
}

// listArchive 查询历史归档（postgres），与实时流水线互不影响
func (s *Server) listArchive(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	list, err := s.store.ListHeadlines(c.Query("source"), c.Query("label"), limit, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    list,
	})
}

// refresh 手动刷新：清掉选中源集合的批次缓存并立即重抓
func (s *Server) refresh(c *gin.Context) {
	sources, err := parseSources(c, s.catalog)
	if err != nil {
		badRequest(c, err)
		return
	}

	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
	}
	key := storage.BatchCacheKey(names)

	ctx := c.Request.Context()
	s.store.InvalidateBatch(ctx, key)

	now := config.Now()
	records := s.pipe.Ingest(sources, now)
	if len(records) > 0 {
		s.store.PutBatch(ctx, key, records, s.cfg.CacheTTL())
	}

	log.Printf("manual refresh: sources=%d records=%d", len(sources), len(records))
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    gin.H{"records": len(records)},
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    "invalid_params",
		"message": err.Error(),
	})
}
