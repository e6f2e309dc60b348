package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-agent-go/internal/splitter"
	"hr-agent-go/internal/types"
)

func newTestAssembler() *ContextAssembler {
	return NewContextAssembler(splitter.NewSectionSplitter())
}

// TestAssembleEmptyMatches 没有检索结果时返回空上下文
func TestAssembleEmptyMatches(t *testing.T) {
	context, sources := newTestAssembler().Assemble("query", nil, 1000)
	assert.Empty(t, context)
	assert.Empty(t, sources)
}

// TestAssembleSkipsUnusableMatches 空文本或缺文档ID的结果不贡献上下文
func TestAssembleSkipsUnusableMatches(t *testing.T) {
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Empty Doc", DocumentID: 1, Text: ""},
		{ID: "b", Title: "No ID Doc", DocumentID: 0, Text: "some text"},
	}

	context, sources := newTestAssembler().Assemble("query", matches, 1000)
	assert.Empty(t, context)
	assert.Empty(t, sources)
}

// TestAssembleBasic 正常组装：带前导说明和来源标注
func TestAssembleBasic(t *testing.T) {
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Onboarding Guide", DocumentID: 1, Text: "New hires need a golang laptop setup."},
	}

	context, sources := newTestAssembler().Assemble("golang", matches, 1000)

	assert.True(t, strings.HasPrefix(context, "Relevant information from our knowledge base:\n\n"))
	assert.Contains(t, context, "--- Onboarding Guide (")
	assert.Contains(t, context, "golang laptop setup")
	assert.Equal(t, []string{"Onboarding Guide"}, sources)
}

// TestAssembleRanksByRelevance 相关性高的章节排在前面
func TestAssembleRanksByRelevance(t *testing.T) {
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Cooking Notes", DocumentID: 1, Text: "A recipe for bread and soup with nothing else."},
		{ID: "b", Title: "Hiring Policy", DocumentID: 2, Text: "Our golang hiring process values golang experience."},
	}

	context, sources := newTestAssembler().Assemble("golang", matches, 1000)

	hiringIdx := strings.Index(context, "Hiring Policy")
	cookingIdx := strings.Index(context, "Cooking Notes")
	require.GreaterOrEqual(t, hiringIdx, 0)
	require.GreaterOrEqual(t, cookingIdx, 0)
	assert.Less(t, hiringIdx, cookingIdx)
	assert.Equal(t, []string{"Hiring Policy", "Cooking Notes"}, sources)
}

// TestAssembleDeduplicatesByDocumentID 同一文档的多个命中只取首个
func TestAssembleDeduplicatesByDocumentID(t *testing.T) {
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Guide", DocumentID: 7, Text: "golang guide first copy"},
		{ID: "b", Title: "Guide", DocumentID: 7, Text: "golang guide second copy"},
	}

	context, sources := newTestAssembler().Assemble("golang", matches, 1000)

	assert.Contains(t, context, "first copy")
	assert.NotContains(t, context, "second copy")
	assert.Equal(t, []string{"Guide"}, sources)
}

// TestAssembleTruncatesFirstOversizedSection 首个章节独自超出预算时
// 截断内容并追加省略号，来源仍被记录
func TestAssembleTruncatesFirstOversizedSection(t *testing.T) {
	longText := "golang " + strings.Repeat("details ", 100)
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Big Doc", DocumentID: 1, Text: longText},
	}

	// 10个token → 40字符预算，远小于内容
	context, sources := newTestAssembler().Assemble("golang", matches, 10)

	assert.Contains(t, context, "...")
	assert.Equal(t, []string{"Big Doc"}, sources)
	// 预算 = maxTokens*4 + 前导长度，加上标注行的有限开销
	preamble := "Relevant information from our knowledge base:\n\n"
	budget := 10*4 + len(preamble)
	labelOverhead := len("--- Big Doc (Section 1) ---\n") + len("...\n\n")
	assert.LessOrEqual(t, len(context), budget+labelOverhead)
}

// TestAssembleRespectsBudget 超出预算的后续章节被丢弃，
// 其来源不出现在sources里
func TestAssembleRespectsBudget(t *testing.T) {
	matches := []types.DocumentMatch{
		{ID: "a", Title: "Doc A", DocumentID: 1, Text: "golang golang golang short and relevant"},
		{ID: "b", Title: "Doc B", DocumentID: 2, Text: "golang mentioned once here " + strings.Repeat("padding ", 40)},
	}

	// 预算刚好够放下第一个章节
	context, sources := newTestAssembler().Assemble("golang", matches, 25)

	assert.Contains(t, context, "Doc A")
	assert.NotContains(t, context, "Doc B")
	assert.Equal(t, []string{"Doc A"}, sources)
}
