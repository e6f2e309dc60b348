package scorer

import (
	"math"
	"strings"

	"hr-agent-go/internal/logger"
)

// matchFallbackScore 内部异常时返回的中间值，避免把错误暴露给调用方
const matchFallbackScore = 50

// Match 计算技能列表与岗位要求文本的匹配分数 (0-100)。
// 统计有多少技能（大小写不敏感）以子串形式出现在要求文本中，
// 按命中比例取整。空技能列表返回0。
func Match(skills []string, requirementsText string) (score int) {
	// 契约要求内部失败时降级为固定中间分而不是向上传播
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("匹配分数计算异常，返回降级默认分")
			score = matchFallbackScore
		}
	}()

	if len(skills) == 0 {
		return 0
	}

	reqLower := strings.ToLower(requirementsText)
	matched := 0
	for _, skill := range skills {
		if skill == "" {
			continue
		}
		if strings.Contains(reqLower, strings.ToLower(skill)) {
			matched++
		}
	}

	score = int(math.Round(float64(matched) / float64(len(skills)) * 100))
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return score
}
