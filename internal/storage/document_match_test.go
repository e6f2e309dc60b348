package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeFlatPayload 字段平铺在payload顶层的形状
func TestNormalizeFlatPayload(t *testing.T) {
	r := SearchResult{
		ID:    "point-1",
		Score: 0.87,
		Payload: map[string]interface{}{
			"title":       "Employee Handbook",
			"document_id": float64(42), // JSON反序列化后的数字形态
			"text":        "vacation policy details",
		},
	}

	m := NormalizeSearchResult(r)

	assert.Equal(t, "point-1", m.ID)
	assert.Equal(t, 0.87, m.Score)
	assert.Equal(t, "Employee Handbook", m.Title)
	assert.Equal(t, 42, m.DocumentID)
	assert.Equal(t, "vacation policy details", m.Text)
}

// TestNormalizeNestedMetadataPayload 字段嵌套在metadata键下的形状
func TestNormalizeNestedMetadataPayload(t *testing.T) {
	r := SearchResult{
		ID:    "point-2",
		Score: 0.5,
		Payload: map[string]interface{}{
			"metadata": map[string]interface{}{
				"title":       "Onboarding",
				"document_id": "7",
				"text":        "first week checklist",
			},
		},
	}

	m := NormalizeSearchResult(r)

	assert.Equal(t, "Onboarding", m.Title)
	assert.Equal(t, 7, m.DocumentID)
	assert.Equal(t, "first week checklist", m.Text)
}

// TestNormalizeMissingFields 缺失字段得到零值：text为空串，document_id为0
func TestNormalizeMissingFields(t *testing.T) {
	r := SearchResult{ID: "point-3", Score: 0.1, Payload: map[string]interface{}{}}

	m := NormalizeSearchResult(r)

	assert.Empty(t, m.Title)
	assert.Empty(t, m.Text)
	assert.Zero(t, m.DocumentID)
}

// TestNormalizeNilPayload payload为nil也不崩溃
func TestNormalizeNilPayload(t *testing.T) {
	m := NormalizeSearchResult(SearchResult{ID: "point-4", Score: 0.2})
	assert.Equal(t, "point-4", m.ID)
	assert.Zero(t, m.DocumentID)
}

// TestNormalizeBatchKeepsOrder 批量规范化保持顺序
func TestNormalizeBatchKeepsOrder(t *testing.T) {
	results := []SearchResult{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.8},
	}

	matches := NormalizeSearchResults(results)

	assert.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "b", matches[1].ID)
}

// TestDocumentPointID 同一文档ID总是映射到同一个点ID
func TestDocumentPointID(t *testing.T) {
	assert.Equal(t, DocumentPointID(42), DocumentPointID(42))
	assert.NotEqual(t, DocumentPointID(42), DocumentPointID(43))
}
