package storage

import (
	"encoding/json"
	"strconv"

	"hr-agent-go/internal/types"
)

// NormalizeSearchResults 把原始检索命中批量规范化为DocumentMatch
func NormalizeSearchResults(results []SearchResult) []types.DocumentMatch {
	matches := make([]types.DocumentMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, NormalizeSearchResult(r))
	}
	return matches
}

// NormalizeSearchResult 把单个检索命中规范化为DocumentMatch。
// payload有两种可能形状：字段平铺在payload顶层，或嵌套在"metadata"键下；
// 内部逻辑只认规范化后的DocumentMatch，不再对形状做分支判断。
func NormalizeSearchResult(r SearchResult) types.DocumentMatch {
	fields := r.Payload
	if nested, ok := r.Payload["metadata"].(map[string]interface{}); ok {
		fields = nested
	}

	return types.DocumentMatch{
		ID:         r.ID,
		Score:      r.Score,
		Title:      stringField(fields, "title"),
		DocumentID: intField(fields, "document_id"),
		Text:       stringField(fields, "text"),
	}
}

// stringField 从payload取字符串字段，缺失或类型不符返回空串
func stringField(fields map[string]interface{}, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// intField 从payload取整数字段。JSON反序列化后数字可能是float64、
// json.Number或字符串，逐一尝试；全部失败返回0（视为缺失）。
func intField(fields map[string]interface{}, key string) int {
	if fields == nil {
		return 0
	}
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
