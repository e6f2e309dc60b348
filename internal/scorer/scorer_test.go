package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRelevanceNoMatch 没有任何词项命中时得分为0
func TestRelevanceNoMatch(t *testing.T) {
	assert.Zero(t, Relevance("golang kubernetes", "a text about gardening and cooking"))
}

// TestRelevanceStopwordsOnlyQuery 查询只剩停用词时得分为0
func TestRelevanceStopwordsOnlyQuery(t *testing.T) {
	assert.Zero(t, Relevance("the of in", "the text contains the words of in"))
	assert.Zero(t, Relevance("", "anything"))
}

// TestRelevanceTermOccurrences 词项按出现次数加分。
// 单词查询命中时同时拿到整串奖励，基线是210
func TestRelevanceTermOccurrences(t *testing.T) {
	one := Relevance("golang", "golang is nice")
	two := Relevance("golang", "golang golang is nice")

	assert.Equal(t, 210.0, one)
	assert.Equal(t, 220.0, two)
}

// TestRelevanceTermScoreCap 单个词项加分封顶100
func TestRelevanceTermScoreCap(t *testing.T) {
	text := strings.Repeat("golang ", 30) // 30次命中，10*30超过单项上限
	assert.Equal(t, 300.0, Relevance("golang", text))
}

// TestRelevanceExactPhraseBonus 完整查询串逐字出现加固定奖励
func TestRelevanceExactPhraseBonus(t *testing.T) {
	scattered := Relevance("golang developer", "a developer who writes golang daily")
	phrase := Relevance("golang developer", "a golang developer who writes daily")

	assert.Equal(t, 20.0, scattered)
	assert.Equal(t, 220.0, phrase)
}

// TestRelevanceLengthPenalty 长文本分数被长度系数压低，系数封顶3
func TestRelevanceLengthPenalty(t *testing.T) {
	short := "golang " + strings.Repeat("x", 100)
	long := "golang " + strings.Repeat("x", 993) // 总长1000 → 系数2
	veryLong := "golang " + strings.Repeat("x", 4993)

	assert.Equal(t, 210.0, Relevance("golang", short))
	assert.Equal(t, 105.0, Relevance("golang", long))
	// len=5000 → 系数本应为10，封顶为3
	assert.InDelta(t, 70.0, Relevance("golang", veryLong), 1e-9)
}

// TestRelevanceCaseInsensitive 匹配不区分大小写
func TestRelevanceCaseInsensitive(t *testing.T) {
	assert.Equal(t, Relevance("GoLang", "writes GOLANG code"), Relevance("golang", "writes golang code"))
}

// TestMatchEmptySkills 空技能集合直接返回0
func TestMatchEmptySkills(t *testing.T) {
	assert.Zero(t, Match(nil, "requires golang"))
	assert.Zero(t, Match([]string{}, "requires golang"))
}

// TestMatchPercentageRounded 百分比四舍五入
func TestMatchPercentageRounded(t *testing.T) {
	// 3个技能命中2个 → 66.67% → 67
	score := Match([]string{"golang", "redis", "cobol"}, "we need golang and redis experience")
	assert.Equal(t, 67, score)
}

// TestMatchFullAndZero 全命中100分，零命中0分
func TestMatchFullAndZero(t *testing.T) {
	assert.Equal(t, 100, Match([]string{"go"}, "go shop"))
	assert.Equal(t, 0, Match([]string{"fortran"}, "we need golang"))
}

// TestMatchCaseInsensitiveSubstring 大小写不敏感的子串匹配
func TestMatchCaseInsensitiveSubstring(t *testing.T) {
	assert.Equal(t, 100, Match([]string{"GoLang"}, "Requires GOLANG developers"))
}

// TestMatchScoreWithinRange 分数总在[0,100]区间
func TestMatchScoreWithinRange(t *testing.T) {
	skills := []string{"go", "python", "sql", "aws", "docker"}
	score := Match(skills, "go python sql aws docker and more")
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
