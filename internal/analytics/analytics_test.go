package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/LJTian/SentimentHub/internal/processor"
	"github.com/LJTian/SentimentHub/internal/sentiment"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func scored(source string, at time.Time, imputed bool, compound float64, label sentiment.Label) sentiment.ScoredRecord {
	return sentiment.ScoredRecord{
		HeadlineRecord: processor.HeadlineRecord{
			Source:      source,
			Title:       source + at.String(),
			PublishedAt: at,
			Imputed:     imputed,
		},
		Scores: sentiment.Scores{Compound: compound},
		Label:  label,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestAggregateOverTimeBucketsAndMean(t *testing.T) {
	base := now.Add(-30 * time.Minute)
	records := []sentiment.ScoredRecord{
		scored("src", base, false, 0.3, sentiment.LabelPositive),
		scored("src", base.Add(1*time.Minute), false, 0.6, sentiment.LabelPositive),
		scored("src", base.Add(2*time.Minute), false, -0.3, sentiment.LabelNegative),
	}

	out := AggregateOverTime(records, 24, 5*time.Minute, false, now)
	if len(out) != 1 {
		t.Fatalf("records 1 minute apart should share one 5min bucket, got %d", len(out))
	}
	if !almostEqual(out[0].MeanCompound, 0.2) {
		t.Fatalf("mean compound = %v, want 0.2", out[0].MeanCompound)
	}

	// 桶边界向下取整
	if !out[0].BucketStart.Equal(base.Truncate(5 * time.Minute)) {
		t.Fatalf("bucket start = %v, want floor of %v", out[0].BucketStart, base)
	}
}

func TestAggregateOverTimeSmoothing(t *testing.T) {
	// 桶均值序列 [0.10, 0.20, -0.10, 0.30]
	// 尾随窗口 3、最少 1 个样本 → [0.10, 0.15, 0.0667, 0.1333]
	means := []float64{0.10, 0.20, -0.10, 0.30}
	base := now.Add(-2 * time.Hour)

	records := make([]sentiment.ScoredRecord, 0, len(means))
	for i, m := range means {
		records = append(records, scored("src", base.Add(time.Duration(i)*5*time.Minute), false, m, sentiment.LabelNeutral))
	}

	out := AggregateOverTime(records, 24, 5*time.Minute, false, now)
	if len(out) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(out))
	}

	wants := []float64{0.10, 0.15, 0.0667, 0.1333}
	for i, w := range wants {
		if !almostEqual(out[i].SmoothedCompound, w) {
			t.Fatalf("smoothed[%d] = %v, want %v", i, out[i].SmoothedCompound, w)
		}
	}
}

func TestAggregateOverTimeSmoothingIsPerSource(t *testing.T) {
	base := now.Add(-2 * time.Hour)
	records := []sentiment.ScoredRecord{
		scored("a", base, false, 0.4, sentiment.LabelPositive),
		scored("a", base.Add(5*time.Minute), false, 0.0, sentiment.LabelNeutral),
		scored("b", base.Add(5*time.Minute), false, -0.8, sentiment.LabelNegative),
	}

	out := AggregateOverTime(records, 24, 5*time.Minute, false, now)
	if len(out) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(out))
	}

	// b 的首个桶不应被 a 的序列影响
	last := out[2]
	if last.Source != "b" {
		t.Fatalf("expected source b last, got %q", last.Source)
	}
	if !almostEqual(last.SmoothedCompound, -0.8) {
		t.Fatalf("first bucket of a source should equal its own mean, got %v", last.SmoothedCompound)
	}
	if !almostEqual(out[1].SmoothedCompound, 0.2) {
		t.Fatalf("second bucket of source a should average its two buckets, got %v", out[1].SmoothedCompound)
	}
}

func TestAggregateOverTimeWindowInclusive(t *testing.T) {
	records := []sentiment.ScoredRecord{
		// 正好在窗口下边界
		scored("src", now.Add(-24*time.Hour), false, 0.1, sentiment.LabelNeutral),
		// 正好在 now
		scored("src", now, false, 0.1, sentiment.LabelNeutral),
		// 刚好出窗
		scored("src", now.Add(-24*time.Hour-time.Second), false, 0.1, sentiment.LabelNeutral),
		// 未来时间
		scored("src", now.Add(time.Second), false, 0.1, sentiment.LabelNeutral),
	}

	out := AggregateOverTime(records, 24, time.Hour, false, now)
	if len(out) != 2 {
		t.Fatalf("window should include both edges and nothing else, got %d buckets", len(out))
	}
}

func TestAggregateOverTimeExcludesImputed(t *testing.T) {
	records := []sentiment.ScoredRecord{
		scored("src", now, true, 0.5, sentiment.LabelPositive),
		scored("src", now.Add(-10*time.Minute), false, -0.5, sentiment.LabelNegative),
	}

	out := AggregateOverTime(records, 24, 5*time.Minute, true, now)
	if len(out) != 1 {
		t.Fatalf("imputed record should be dropped, got %d buckets", len(out))
	}
	if !almostEqual(out[0].MeanCompound, -0.5) {
		t.Fatalf("remaining bucket mean = %v, want -0.5", out[0].MeanCompound)
	}

	// 不剔除时两条都在
	out = AggregateOverTime(records, 24, 5*time.Minute, false, now)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets with imputed kept, got %d", len(out))
	}
}

func TestAggregateOverTimeEmptyInput(t *testing.T) {
	if out := AggregateOverTime(nil, 24, 5*time.Minute, false, now); len(out) != 0 {
		t.Fatalf("empty input should yield empty series")
	}
}

func TestAggregateBySourceRanking(t *testing.T) {
	base := now.Add(-time.Hour)
	records := []sentiment.ScoredRecord{
		scored("low", base, false, -0.4, sentiment.LabelNegative),
		scored("low", base, false, -0.2, sentiment.LabelNegative),
		scored("high", base, false, 0.6, sentiment.LabelPositive),
		scored("high", base, false, 0.0, sentiment.LabelNeutral),
		// 与 high 均值相同，用名字字典序打破平局
		scored("also-high", base, false, 0.3, sentiment.LabelPositive),
	}

	out := AggregateBySource(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(out))
	}

	if out[0].Source != "also-high" || out[1].Source != "high" || out[2].Source != "low" {
		t.Fatalf("unexpected ranking: %q %q %q", out[0].Source, out[1].Source, out[2].Source)
	}

	high := out[1]
	if high.Count != 2 || high.PositiveCount != 1 || high.NegativeCount != 0 {
		t.Fatalf("unexpected counts for high: %+v", high)
	}
	if !almostEqual(high.AvgCompound, 0.3) {
		t.Fatalf("avg compound for high = %v, want 0.3", high.AvgCompound)
	}

	low := out[2]
	if low.NegativeCount != 2 || low.PositiveCount != 0 {
		t.Fatalf("unexpected counts for low: %+v", low)
	}
}

func TestAggregateBySourceEmptyInput(t *testing.T) {
	if out := AggregateBySource(nil); len(out) != 0 {
		t.Fatalf("empty input should yield empty summaries")
	}
}
