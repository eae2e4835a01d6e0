package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/SentimentHub/internal/processor"
	"github.com/LJTian/SentimentHub/internal/sentiment"
)

// Headline 打分后头条的归档行。流水线本身无状态，
// 归档与缓存都在这一层，核心各阶段不落任何东西
type Headline struct {
	ID            string            `gorm:"primaryKey;size:40" json:"id"`
	Source        string            `gorm:"size:128;index" json:"source"`
	Title         string            `gorm:"size:512" json:"title"`
	Link          string            `gorm:"size:1024" json:"link"`
	PublishedRaw  string            `gorm:"size:128" json:"publishedRaw"`
	PublishedAt   time.Time         `gorm:"index" json:"publishedAt"`
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"` // UTC 日期 YYYY-MM-DD，便于按日查询
	Imputed       bool              `json:"imputed"`
	Compound      float64           `gorm:"index" json:"compound"`
	Label         string            `gorm:"size:16;index" json:"label"`
	ScoreParts    datatypes.JSONMap `gorm:"type:jsonb" json:"scoreParts"` // neg/neu/pos 三个子分

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Headline{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// hashTitle 标题即去重键，ID 用它的 sha1
func hashTitle(title string) string {
	h := sha1.New()
	h.Write([]byte(title))
	return hex.EncodeToString(h.Sum(nil))
}

// toValidUTF8 规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断，保证不超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// SaveBatch 归档一批打分后的头条，已存在的按标题哈希幂等更新分数
func (s *Store) SaveBatch(records []sentiment.ScoredRecord) error {
	for _, r := range records {
		title := truncateRunesDB(toValidUTF8(r.Title), 512)
		n := &Headline{
			ID:            hashTitle(r.Title),
			Source:        r.Source,
			Title:         title,
			Link:          r.Link,
			PublishedRaw:  truncateRunesDB(r.PublishedRaw, 128),
			PublishedAt:   r.PublishedAt,
			PublishedDate: r.PublishedAt.UTC().Format("2006-01-02"),
			Imputed:       r.Imputed,
			Compound:      r.Compound,
			Label:         string(r.Label),
			ScoreParts: datatypes.JSONMap{
				"neg": r.Negative,
				"neu": r.Neutral,
				"pos": r.Positive,
			},
		}

		if err := s.DB.Where("id = ?", n.ID).FirstOrCreate(n).Error; err != nil {
			return err
		}
		// 分数随阈值或词典版本变化，重复出现时刷新
		_ = s.DB.Model(n).Updates(map[string]any{
			"compound":    r.Compound,
			"label":       string(r.Label),
			"score_parts": n.ScoreParts,
		}).Error
	}

	// 归档不主动清批次缓存，完全依赖短 TTL 自然过期，
	// 手动刷新走 InvalidateBatch
	return nil
}

// ListHeadlines 按源/标签查询归档，limit 保护，Redis 做 5 分钟读缓存
func (s *Store) ListHeadlines(source, label string, limit int, date string) ([]Headline, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("headlines:list:%s:%s:%d:%s", source, label, limit, date)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Headline
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Headline
	db := s.DB.Model(&Headline{})
	if source != "" {
		db = db.Where("source = ?", source)
	}
	if label != "" {
		db = db.Where("label = ?", label)
	}
	if date != "" {
		db = db.Where("published_date = ?", date)
	}
	if err := db.Order("compound DESC").Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	const listCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}

// BatchCacheKey 选中源集合的缓存键：名字排序后拼接再哈希，
// 同一组源无论调用方给的顺序如何都命中同一条
func BatchCacheKey(sourceNames []string) string {
	names := make([]string, len(sourceNames))
	copy(names, sourceNames)
	sort.Strings(names)
	return "batch:" + hashTitle(strings.Join(names, "\x00"))
}

// GetBatch 读取缓存的规整批次；未命中或损坏时返回 false
func (s *Store) GetBatch(ctx context.Context, key string) ([]processor.HeadlineRecord, bool) {
	if s.Redis == nil {
		return nil, false
	}
	bs, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var records []processor.HeadlineRecord
	if err := json.Unmarshal(bs, &records); err != nil {
		log.Printf("warn: drop corrupt batch cache %s: %v", key, err)
		_ = s.Redis.Del(ctx, key).Err()
		return nil, false
	}
	return records, true
}

// PutBatch 缓存一个规整批次，带 TTL
func (s *Store) PutBatch(ctx context.Context, key string, records []processor.HeadlineRecord, ttl time.Duration) {
	if s.Redis == nil {
		return
	}
	bs, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, bs, ttl).Err(); err != nil {
		log.Printf("warn: cache batch %s failed: %v", key, err)
	}
}

// InvalidateBatch 手动刷新：清掉一个批次缓存
func (s *Store) InvalidateBatch(ctx context.Context, key string) {
	if s.Redis == nil {
		return
	}
	_ = s.Redis.Del(ctx, key).Err()
}
