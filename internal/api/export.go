package api

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/SentimentHub/internal/sentiment"
)

// csvHeader 导出列的命名契约：保留原始时间与规整时间，
// 小写 label 不导出，只给首字母大写的 Label
var csvHeader = []string{
	"source", "title", "link", "published", "imputed_time", "published_dt",
	"neg", "neu", "pos", "compound", "Label",
}

// exportCSV 把当前筛选下的打分表导出为 CSV
func (s *Server) exportCSV(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="sentiment_headlines.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(csvHeader)
	for _, r := range res.Records {
		_ = w.Write(csvRow(r))
	}
	w.Flush()
}

func csvRow(r sentiment.ScoredRecord) []string {
	return []string{
		r.Source,
		r.Title,
		r.Link,
		r.PublishedRaw,
		strconv.FormatBool(r.Imputed),
		r.PublishedAt.Format("2006-01-02 15:04:05Z07:00"),
		formatScore(r.Negative),
		formatScore(r.Neutral),
		formatScore(r.Positive),
		formatScore(r.Compound),
		r.Label.Display(),
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
