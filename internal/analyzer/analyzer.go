package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hr-agent-go/internal/config"
	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/llm"
	"hr-agent-go/internal/logger"
	"hr-agent-go/internal/scorer"
	"hr-agent-go/internal/splitter"
	"hr-agent-go/internal/types"
)

// condensedSectionKeywords 压缩全文时保留完整内容的章节关键词
var condensedSectionKeywords = []string{"skill", "experience", "education", "summary", "profile"}

// 合并摘要的长度阈值与二次压缩时送入模型的最大字符数
const (
	summaryCondenseThreshold = 500
	summaryCondenseInputMax  = 2000
	condensedPreviewLines    = 3
)

// CascadingAnalyzer 简历结构化分析器。
// 文档较小时一次直接抽取；超过token阈值后进入级联流程：
// 先压缩全文重试，再退化为逐章节抽取后合并。
// 任何一次模型调用失败都只损失该步的贡献，分析本身永不报错，
// 调用方总能拿到一个尽力而为的结构化结果。
type CascadingAnalyzer struct {
	client           *llm.CompletionClient
	splitter         *splitter.SectionSplitter
	directTokenLimit int
	temperature      float32
}

// NewCascadingAnalyzer 创建分析器。cfg为nil时使用默认阈值与温度
func NewCascadingAnalyzer(client *llm.CompletionClient, sp *splitter.SectionSplitter, cfg *config.AnalyzerConfig) *CascadingAnalyzer {
	a := &CascadingAnalyzer{
		client:           client,
		splitter:         sp,
		directTokenLimit: constants.DirectAnalysisTokenLimit,
		temperature:      0.3,
	}
	if cfg != nil {
		if cfg.DirectTokenLimit > 0 {
			a.directTokenLimit = cfg.DirectTokenLimit
		}
		if cfg.Temperature > 0 {
			a.temperature = cfg.Temperature
		}
	}
	if a.splitter == nil {
		a.splitter = splitter.NewSectionSplitter()
	}
	return a
}

// Analyze 分析一份文档，抽取技能、经验年限、教育背景和摘要。
// positionDescription非空时结果额外携带0-100的匹配分
func (a *CascadingAnalyzer) Analyze(ctx context.Context, documentText, positionDescription string) types.AnalysisResult {
	if !a.client.Available() {
		return types.AnalysisResult{
			Skills:          []string{"AI service unavailable"},
			ExperienceYears: 0,
			Education:       "AI service unavailable",
			Summary:         constants.MsgServiceUnavailable,
		}
	}

	// 粗略估算token数，英文约4字符/token
	estimatedTokens := len(documentText) / constants.CharsPerToken
	if estimatedTokens > a.directTokenLimit {
		logger.Info().Int("estimated_tokens", estimatedTokens).Msg("文档过大，进入级联分析")
		return a.analyzeCascade(ctx, documentText, positionDescription)
	}

	return a.analyzeDirect(ctx, documentText, positionDescription)
}

// analyzeDirect 一次请求抽取全部字段
func (a *CascadingAnalyzer) analyzeDirect(ctx context.Context, documentText, positionDescription string) types.AnalysisResult {
	prompt := directAnalysisPrompt(documentText, positionDescription)

	response, err := a.client.Complete(ctx, systemResumeAnalyst, prompt, directMaxTokens, a.temperature)
	if err != nil {
		logger.Warn().Err(err).Msg("直接分析调用失败")
		return types.AnalysisResult{
			Skills:          []string{"error"},
			ExperienceYears: 0,
			Education:       "Error occurred",
			Summary:         fmt.Sprintf("Error analyzing resume: %v", err),
		}
	}

	raw, ok := parseAnalysisJSON(response)
	if !ok {
		result := types.AnalysisResult{
			Skills:          []string{"parsing error"},
			ExperienceYears: 0,
			Education:       constants.MsgParseEducationError,
			Summary:         constants.MsgParseSummaryError,
		}
		if positionDescription != "" {
			zero := 0
			result.MatchScore = &zero
		}
		return result
	}

	return a.repairSchema(raw, positionDescription)
}

// repairSchema 对模型输出做schema修复：补齐缺失字段、强制字段类型，
// 并在给定岗位描述但模型遗漏match_score时用启发式匹配分补齐
func (a *CascadingAnalyzer) repairSchema(raw map[string]interface{}, positionDescription string) types.AnalysisResult {
	result := types.AnalysisResult{
		Skills:          coerceSkills(raw["skills"]),
		ExperienceYears: coerceFloat(raw["experience_years"]),
		Education:       coerceString(raw["education"]),
		Summary:         coerceString(raw["summary"]),
	}

	if positionDescription != "" {
		if v, present := raw["match_score"]; present {
			score := clampScore(int(math.Round(coerceFloat(v))))
			result.MatchScore = &score
		} else {
			score := scorer.Match(result.Skills, positionDescription)
			result.MatchScore = &score
		}
	}

	return result
}

// analyzeCascade 级联分析：压缩全文→逐章节→合并
func (a *CascadingAnalyzer) analyzeCascade(ctx context.Context, documentText, positionDescription string) types.AnalysisResult {
	sections := a.splitter.Split(documentText)

	// 第一级：压缩全文后尝试一次整体抽取
	if result, ok := a.analyzeCondensed(ctx, sections, positionDescription); ok {
		return result
	}

	// 第二级：逐章节抽取后合并
	logger.Info().Int("sections", len(sections)).Msg("压缩分析失败，转入逐章节分析")
	return a.analyzeBySections(ctx, sections, positionDescription)
}

// buildCondensedText 构造压缩版文档：关键章节保留全文，
// 其余章节仅保留标题和前几行预览
func buildCondensedText(sections []types.Section) string {
	var b strings.Builder
	for _, sec := range sections {
		if isKeywordSection(sec.Title) {
			fmt.Fprintf(&b, "\n\n%s:\n%s", sec.Title, sec.Content)
			continue
		}
		lines := strings.Split(sec.Content, "\n")
		preview := sec.Content
		if len(lines) > condensedPreviewLines {
			preview = strings.Join(lines[:condensedPreviewLines], "\n") + "..."
		}
		fmt.Fprintf(&b, "\n\n%s:\n%s", sec.Title, preview)
	}
	return b.String()
}

func isKeywordSection(title string) bool {
	lower := strings.ToLower(title)
	for _, key := range condensedSectionKeywords {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}

// analyzeCondensed 对压缩版文档做一次整体抽取。
// 仅当响应解析成功且四个必需字段齐全、skills为数组时才接受
func (a *CascadingAnalyzer) analyzeCondensed(ctx context.Context, sections []types.Section, positionDescription string) (types.AnalysisResult, bool) {
	condensed := buildCondensedText(sections)

	response, err := a.client.Complete(ctx, systemResumeAnalystJSON, condensedAnalysisPrompt(condensed), condensedMaxTokens, a.temperature)
	if err != nil {
		logger.Warn().Err(err).Msg("压缩分析调用失败")
		return types.AnalysisResult{}, false
	}

	raw, ok := parseAnalysisJSON(response)
	if !ok {
		return types.AnalysisResult{}, false
	}

	skills, skillsIsList := raw["skills"].([]interface{})
	_, hasExp := raw["experience_years"]
	_, hasEdu := raw["education"]
	_, hasSummary := raw["summary"]
	if !skillsIsList || !hasExp || !hasEdu || !hasSummary {
		return types.AnalysisResult{}, false
	}

	result := types.AnalysisResult{
		Skills:          dedupeSkills(coerceSkills(skills)),
		ExperienceYears: coerceFloat(raw["experience_years"]),
		Education:       coerceString(raw["education"]),
		Summary:         coerceString(raw["summary"]),
	}
	if positionDescription != "" {
		score := scorer.Match(result.Skills, positionDescription)
		result.MatchScore = &score
	}
	return result, true
}

// analyzeBySections 逐章节顺序抽取。单章节失败只记日志并跳过其贡献
func (a *CascadingAnalyzer) analyzeBySections(ctx context.Context, sections []types.Section, positionDescription string) types.AnalysisResult {
	var allSkills []string
	var maxExperience float64
	var educationParts []string
	var summaryParts []string

	for _, sec := range sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}

		prompt := sectionPrompt(sec.Title, sec.Content)
		response, err := a.client.Complete(ctx, systemSectionExtractor, prompt, sectionMaxTokens, a.temperature)
		if err != nil {
			logger.Warn().Err(err).Str("section", sec.Title).Msg("章节分析调用失败")
			continue
		}

		raw, ok := parseAnalysisJSON(stripCodeFence(response))
		if !ok {
			logger.Warn().Str("section", sec.Title).Msg("章节分析响应解析失败")
			continue
		}

		if skills, isList := raw["skills"].([]interface{}); isList {
			allSkills = append(allSkills, coerceSkills(skills)...)
		}
		if v, present := raw["experience_years"]; present {
			if years := coerceFloat(v); years > maxExperience {
				maxExperience = years
			}
		}
		if edu := coerceString(raw["education"]); edu != "" {
			educationParts = append(educationParts, edu)
		}
		if sum := coerceString(raw["summary"]); sum != "" {
			summaryParts = append(summaryParts, sum)
		}
	}

	result := types.AnalysisResult{
		Skills:          dedupeSkills(allSkills),
		ExperienceYears: maxExperience,
		Education:       joinOrDefault(educationParts, "\n", constants.MsgNoEducationFound),
		Summary:         a.combineSummaries(ctx, summaryParts),
	}
	if positionDescription != "" {
		score := scorer.Match(result.Skills, positionDescription)
		result.MatchScore = &score
	}
	return result
}

// sectionPrompt 按章节标题选择针对性提示词，未识别的标题用通用抽取
func sectionPrompt(title, content string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "skill"):
		return skillsSectionPrompt(content)
	case strings.Contains(lower, "experience") || strings.Contains(lower, "work") || strings.Contains(lower, "employment"):
		return experienceSectionPrompt(content)
	case strings.Contains(lower, "education"):
		return educationSectionPrompt(content)
	case strings.Contains(lower, "summary") || strings.Contains(lower, "profile") ||
		strings.Contains(lower, "objective") || title == splitter.HeaderSectionTitle:
		return summarySectionPrompt(content)
	default:
		return genericSectionPrompt(content)
	}
}

// combineSummaries 合并各章节摘要；过长时再发一次压缩请求，
// 压缩失败则硬截断
func (a *CascadingAnalyzer) combineSummaries(ctx context.Context, parts []string) string {
	if len(parts) == 0 {
		return constants.MsgNoSummaryAvailable
	}

	combined := strings.Join(parts, " ")
	if len(combined) <= summaryCondenseThreshold {
		return combined
	}

	input := combined
	if len(input) > summaryCondenseInputMax {
		input = input[:summaryCondenseInputMax]
	}
	condensed, err := a.client.Complete(ctx, systemSummaryWriter, condenseSummaryPrompt(input), condenseMaxTokens, a.temperature)
	if err != nil {
		logger.Warn().Err(err).Msg("摘要压缩调用失败，使用截断摘要")
		return combined[:summaryCondenseThreshold] + "..."
	}
	return strings.TrimSpace(condensed)
}

// parseAnalysisJSON 从自由文本响应中定位并解析第一个完整的JSON对象
func parseAnalysisJSON(text string) (map[string]interface{}, bool) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, false
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, false
	}
	return raw, true
}

// extractJSON 按大括号配对提取文本中的第一个JSON对象
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// stripCodeFence 去掉响应外层的Markdown代码围栏
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// coerceSkills 将任意形态的skills值强制为字符串列表
func coerceSkills(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []interface{}:
		skills := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				skills = append(skills, s)
			}
		}
		return skills
	case []string:
		return val
	default:
		if s := coerceString(val); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

// coerceFloat 将任意形态的数值强制为float64，失败返回0
func coerceFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		if val < 0 {
			return 0
		}
		return val
	case int:
		if val < 0 {
			return 0
		}
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil || f < 0 {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || f < 0 {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}

// dedupeSkills 大小写不敏感去重，保留首次出现的写法和顺序
func dedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	unique := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, skill)
	}
	return unique
}

func joinOrDefault(parts []string, sep, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, sep)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
