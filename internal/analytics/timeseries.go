package analytics

import (
	"sort"
	"time"

	"github.com/LJTian/SentimentHub/internal/sentiment"
)

// TimeBucket 某个源在一个时间桶内的情感均值与平滑值
type TimeBucket struct {
	Source           string    `json:"source"`
	BucketStart      time.Time `json:"bucket_start"`
	MeanCompound     float64   `json:"mean_compound"`
	SmoothedCompound float64   `json:"smoothed_compound"`
}

// smoothingWindow 平滑窗口：当前桶加上前两个桶的滑动均值
const smoothingWindow = 3

// AggregateOverTime 时间序列聚合：
// 先按 [now-lookback, now] 闭区间过滤（可选剔除补时记录），
// 再把发布时间向下取整到桶边界，按 (source, bucket) 求 compound 均值，
// 最后对每个源按时间升序做窗口为 3、最少 1 个样本的尾随滑动平均。
// 过滤后为空时返回空序列，调用方据此展示"无数据"而非报错
func AggregateOverTime(records []sentiment.ScoredRecord, lookbackHours int, bucketSize time.Duration, excludeImputed bool, now time.Time) []TimeBucket {
	now = now.UTC()
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	type key struct {
		source string
		bucket time.Time
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)

	for _, r := range records {
		t := r.PublishedAt
		if t.Before(cutoff) || t.After(now) {
			continue
		}
		if excludeImputed && r.Imputed {
			continue
		}
		k := key{source: r.Source, bucket: t.UTC().Truncate(bucketSize)}
		sums[k] += r.Compound
		counts[k]++
	}

	if len(sums) == 0 {
		return nil
	}

	buckets := make([]TimeBucket, 0, len(sums))
	for k, sum := range sums {
		buckets = append(buckets, TimeBucket{
			Source:       k.source,
			BucketStart:  k.bucket,
			MeanCompound: sum / float64(counts[k]),
		})
	}

	// 源名升序、桶时间升序：既方便逐源平滑，也保证输出可复现
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Source != buckets[j].Source {
			return buckets[i].Source < buckets[j].Source
		}
		return buckets[i].BucketStart.Before(buckets[j].BucketStart)
	})

	smooth(buckets)
	return buckets
}

// smooth 对已按 (source, bucket) 排好序的切片逐源做尾随滑动平均
func smooth(buckets []TimeBucket) {
	start := 0
	for i := 1; i <= len(buckets); i++ {
		if i == len(buckets) || buckets[i].Source != buckets[start].Source {
			smoothSeries(buckets[start:i])
			start = i
		}
	}
}

func smoothSeries(series []TimeBucket) {
	for i := range series {
		lo := i - smoothingWindow + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for j := lo; j <= i; j++ {
			sum += series[j].MeanCompound
		}
		series[i].SmoothedCompound = sum / float64(i-lo+1)
	}
}
