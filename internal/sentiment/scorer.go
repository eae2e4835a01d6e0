package sentiment

import (
	"errors"
	"fmt"

	"github.com/jonreiter/govader"

	"github.com/LJTian/SentimentHub/internal/processor"
)

// Label 三分类情感标签，内部统一小写
type Label string

const (
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
	LabelPositive Label = "positive"
)

// Display 导出展示用的首字母大写形式
func (l Label) Display() string {
	switch l {
	case LabelNegative:
		return "Negative"
	case LabelNeutral:
		return "Neutral"
	case LabelPositive:
		return "Positive"
	}
	return string(l)
}

// Scores VADER 风格的四个子分：neg/neu/pos 取值 [0,1] 且和为 1，
// compound 取值 [-1,1]
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer 情感模型的可插拔接口：任何产出同样四个子分的实现都可替换
type Analyzer interface {
	PolarityScores(text string) Scores
}

// VaderAnalyzer 基于 govader 词典模型的默认实现
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) PolarityScores(text string) Scores {
	s := v.sia.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

// ScoredRecord 打分后的头条：原记录 + 四个子分 + 分类标签
type ScoredRecord struct {
	processor.HeadlineRecord
	Scores
	Label Label `json:"label"`
}

// ErrCrossedThresholds 阈值交叉（neg > pos）时两个分支会同时命中，
// 标签取决于判断顺序，属于配置错误，直接拒绝而非静默选一个
var ErrCrossedThresholds = errors.New("sentiment: negative threshold exceeds positive threshold")

// Scorer 对一批头条做打分与阈值分类
type Scorer struct {
	analyzer Analyzer
}

// NewScorer analyzer 为 nil 时使用默认的 VADER 实现
func NewScorer(analyzer Analyzer) *Scorer {
	if analyzer == nil {
		analyzer = NewVaderAnalyzer()
	}
	return &Scorer{analyzer: analyzer}
}

// Score 纯函数：不修改输入，产出新的打分序列。
// 分类策略：compound <= negThresh 为 negative，
// 否则 compound >= posThresh 为 positive，其余 neutral，两端边界都含等号
func (s *Scorer) Score(records []processor.HeadlineRecord, negThresh, posThresh float64) ([]ScoredRecord, error) {
	if err := ValidateThresholds(negThresh, posThresh); err != nil {
		return nil, err
	}

	out := make([]ScoredRecord, 0, len(records))
	for _, r := range records {
		scores := s.analyzer.PolarityScores(r.Title)
		out = append(out, ScoredRecord{
			HeadlineRecord: r,
			Scores:         scores,
			Label:          Classify(scores.Compound, negThresh, posThresh),
		})
	}
	return out, nil
}

// ValidateThresholds negThresh 必须落在 [-1,0]，posThresh 落在 [0,1]，且不交叉。
// 先查交叉再查范围，让交叉配置得到专门的错误
func ValidateThresholds(negThresh, posThresh float64) error {
	if negThresh > posThresh {
		return ErrCrossedThresholds
	}
	if negThresh < -1 || negThresh > 0 {
		return fmt.Errorf("sentiment: negative threshold %.2f out of range [-1,0]", negThresh)
	}
	if posThresh < 0 || posThresh > 1 {
		return fmt.Errorf("sentiment: positive threshold %.2f out of range [0,1]", posThresh)
	}
	return nil
}

// Classify 阈值分类；调用方需先保证阈值合法
func Classify(compound, negThresh, posThresh float64) Label {
	if compound <= negThresh {
		return LabelNegative
	}
	if compound >= posThresh {
		return LabelPositive
	}
	return LabelNeutral
}
