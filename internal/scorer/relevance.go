package scorer

import "strings"

// stopwords 相关性打分时从查询中剔除的常见虚词
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "with": {}, "by": {}, "about": {},
	"like": {}, "through": {}, "over": {}, "of": {},
}

// 打分常量。这些是未归一化的启发式参数，不保证跨查询可比，
// 调整任何一项都会改变既有排序结果，保持原值。
const (
	termOccurrencePoints = 10  // 每次词项命中的加分
	termScoreCap         = 100 // 单个词项的加分上限
	exactPhraseBonus     = 200 // 完整查询串逐字出现时的额外加分
	lengthNormBase       = 500 // 长度惩罚基准：len(text)/500
	lengthFactorMax      = 3   // 长度惩罚系数上限
)

// Relevance 计算文本片段与查询的相关性分数，越高越相关。
// 这是一个启发式排序信号，不是校准过的概率：
// 查询按空白分词、转小写、去停用词后，每个词项按出现次数加分
// （单项封顶），完整查询串逐字出现再加固定奖励，最后除以
// clamp(len(text)/500, 1, 3) 的长度系数惩罚过长片段。
// 没有任何非停用词出现在文本中时得分为0。
func Relevance(query, text string) float64 {
	queryLower := strings.ToLower(query)
	textLower := strings.ToLower(text)

	terms := make(map[string]struct{})
	for _, t := range strings.Fields(queryLower) {
		if _, stop := stopwords[t]; !stop {
			terms[t] = struct{}{}
		}
	}
	if len(terms) == 0 {
		return 0
	}

	score := 0.0
	for term := range terms {
		if n := strings.Count(textLower, term); n > 0 {
			score += min(float64(n*termOccurrencePoints), termScoreCap)
		}
	}
	if score == 0 {
		return 0
	}

	if strings.Contains(textLower, queryLower) {
		score += exactPhraseBonus
	}

	lengthFactor := float64(len(text)) / lengthNormBase
	if lengthFactor < 1 {
		lengthFactor = 1
	} else if lengthFactor > lengthFactorMax {
		lengthFactor = lengthFactorMax
	}

	return score / lengthFactor
}
