package analytics

import (
	"sort"

	"github.com/LJTian/SentimentHub/internal/sentiment"
)

// SourceSummary 单个源的汇总统计，用于排行展示
type SourceSummary struct {
	Source        string  `json:"source"`
	Count         int     `json:"count"`
	AvgCompound   float64 `json:"avg_compound"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
}

// AggregateBySource 逐源汇总：条数、compound 均值、正负面条数。
// 按均值降序排列，均值相同时按源名升序，保证结果确定
func AggregateBySource(records []sentiment.ScoredRecord) []SourceSummary {
	bySource := make(map[string]*SourceSummary)
	sums := make(map[string]float64)

	for _, r := range records {
		s, ok := bySource[r.Source]
		if !ok {
			s = &SourceSummary{Source: r.Source}
			bySource[r.Source] = s
		}
		s.Count++
		sums[r.Source] += r.Compound
		switch r.Label {
		case sentiment.LabelPositive:
			s.PositiveCount++
		case sentiment.LabelNegative:
			s.NegativeCount++
		}
	}

	out := make([]SourceSummary, 0, len(bySource))
	for name, s := range bySource {
		s.AvgCompound = sums[name] / float64(s.Count)
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgCompound != out[j].AvgCompound {
			return out[i].AvgCompound > out[j].AvgCompound
		}
		return out[i].Source < out[j].Source
	})
	return out
}
