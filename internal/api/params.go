package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/SentimentHub/internal/collector"
	"github.com/LJTian/SentimentHub/internal/pipeline"
)

// parseSources sources=a,b,c 按名称从目录里筛子集；缺省为全量
func parseSources(c *gin.Context, catalog []collector.Source) ([]collector.Source, error) {
	raw := strings.TrimSpace(c.Query("sources"))
	if raw == "" {
		return catalog, nil
	}

	names := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}

	selected := collector.SelectSources(catalog, names)
	if len(selected) == 0 {
		return nil, fmt.Errorf("api: no known source in %q", raw)
	}
	return selected, nil
}

// parseParams 从查询串组装流水线参数；范围校验交给 Params.Validate
func parseParams(c *gin.Context, catalog []collector.Source) (pipeline.Params, error) {
	params := pipeline.DefaultParams(nil)

	sources, err := parseSources(c, catalog)
	if err != nil {
		return params, err
	}
	params.Sources = sources
	params.Keyword = strings.TrimSpace(c.Query("q"))

	if params.NegThresh, err = floatQuery(c, "neg", params.NegThresh); err != nil {
		return params, err
	}
	if params.PosThresh, err = floatQuery(c, "pos", params.PosThresh); err != nil {
		return params, err
	}

	if v := c.Query("lookback"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("api: invalid lookback %q", v)
		}
		params.LookbackHours = n
	}

	if v := c.Query("bucket"); v != "" {
		d, err := pipeline.ParseBucketSize(v)
		if err != nil {
			return params, err
		}
		params.BucketSize = d
	}

	if v := c.Query("exclude_imputed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return params, fmt.Errorf("api: invalid exclude_imputed %q", v)
		}
		params.ExcludeImputed = b
	}

	return params, params.Validate()
}

func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("api: invalid %s %q", key, v)
	}
	return f, nil
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
