package assembler

import (
	"fmt"
	"sort"
	"strings"

	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/logger"
	"hr-agent-go/internal/scorer"
	"hr-agent-go/internal/splitter"
	"hr-agent-go/internal/types"
)

// contextPreamble 组装结果的固定前导说明
const contextPreamble = "Relevant information from our knowledge base:\n\n"

// ContextAssembler 把检索到的多篇文档组装成一段token受限的上下文：
// 逐文档按限长章节切分，用相关性分数排序，再贪心装入字符预算。
type ContextAssembler struct {
	splitter        *splitter.SectionSplitter
	maxSectionChars int
}

// Option ContextAssembler的配置选项
type Option func(*ContextAssembler)

// WithMaxSectionChars 设置单个章节的字符上限
func WithMaxSectionChars(n int) Option {
	return func(a *ContextAssembler) {
		if n > 0 {
			a.maxSectionChars = n
		}
	}
}

// NewContextAssembler 创建上下文组装器
func NewContextAssembler(s *splitter.SectionSplitter, opts ...Option) *ContextAssembler {
	a := &ContextAssembler{
		splitter:        s,
		maxSectionChars: constants.DefaultMaxSectionChars,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble 从检索结果构建上下文文本，返回上下文和实际贡献了内容的文档标题。
// 预算按 maxTokens×4 个字符估算（前导说明不占预算）；
// 第一个候选章节就超出预算时截断其内容并追加省略号。
func (a *ContextAssembler) Assemble(query string, matches []types.DocumentMatch, maxTokens int) (string, []string) {
	if len(matches) == 0 {
		return "", nil
	}
	if maxTokens <= 0 {
		maxTokens = constants.DefaultMaxContextTokens
	}

	scored := a.collectSections(query, matches)
	if len(scored) == 0 {
		return "", nil
	}

	var (
		sb          strings.Builder
		sources     []string
		seenSources = make(map[string]struct{})
		maxChars    = maxTokens*constants.CharsPerToken + len(contextPreamble)
		used        = len(contextPreamble)
	)
	sb.WriteString(contextPreamble)

	addSource := func(title string) {
		if title == "" {
			return
		}
		if _, ok := seenSources[title]; !ok {
			seenSources[title] = struct{}{}
			sources = append(sources, title)
		}
	}

	for i, sec := range scored {
		block := formatBlock(sec.SourceTitle, sec.Title, sec.Content)

		if used+len(block) > maxChars {
			// 连排名最高的章节都放不下：截断内容凑满剩余预算后结束
			if i == 0 {
				available := maxChars - used
				content := sec.Content
				if available < len(content) {
					content = content[:available]
				}
				sb.WriteString(formatBlock(sec.SourceTitle, sec.Title, content+"..."))
				addSource(sec.SourceTitle)
			}
			break
		}

		sb.WriteString(block)
		used += len(block)
		addSource(sec.SourceTitle)
	}

	logger.Debug().
		Int("sections", len(scored)).
		Int("used_chars", used).
		Int("max_chars", maxChars).
		Strs("sources", sources).
		Msg("上下文组装完成")

	return sb.String(), sources
}

// collectSections 去重并切分每篇文档，给所有章节打相关性分数后降序排列。
// 分数相同的章节保持短者优先，让有限预算尽量覆盖更多来源。
func (a *ContextAssembler) collectSections(query string, matches []types.DocumentMatch) []types.ScoredSection {
	var (
		scored  []types.ScoredSection
		seenDoc = make(map[int]struct{})
	)

	for _, m := range matches {
		// 空文本或缺失文档ID的结果无法贡献上下文，跳过；同一文档只取首个命中
		if m.Text == "" || m.DocumentID == 0 {
			continue
		}
		if _, dup := seenDoc[m.DocumentID]; dup {
			continue
		}
		seenDoc[m.DocumentID] = struct{}{}

		for _, sec := range a.splitter.SplitWithMaxLength(m.Text, a.maxSectionChars) {
			scored = append(scored, types.ScoredSection{
				Section:     sec,
				Relevance:   scorer.Relevance(query, sec.Content),
				SourceTitle: m.Title,
				SourceID:    m.DocumentID,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return len(scored[i].Content) < len(scored[j].Content)
	})
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Relevance > scored[j].Relevance
	})

	return scored
}

// formatBlock 单个章节在上下文中的标注格式
func formatBlock(sourceTitle, sectionTitle, content string) string {
	return fmt.Sprintf("--- %s (%s) ---\n%s\n\n", sourceTitle, sectionTitle, content)
}
