package splitter

import (
	"fmt"
	"strings"
	"unicode"

	"hr-agent-go/internal/types"
)

// knownSectionHeaders 常见的英文简历章节标题目录。
// 短行即使不是全大写、也没有冒号结尾，只要命中目录也会被识别为章节标题。
var knownSectionHeaders = []string{
	"Summary", "Profile", "Objective", "Experience", "Work Experience",
	"Employment History", "Skills", "Technical Skills", "Education",
	"Certifications", "Projects", "Publications", "Languages",
	"Interests", "References", "Personal Information",
}

const (
	// 行扫描时判定候选标题的最大长度
	maxHeaderLineLen = 30
	// SplitWithMaxLength 段落模式下判定标题的最大长度
	maxHeaderParaLen = 50

	// HeaderSectionTitle 首个标题之前的前导内容归入的章节名
	HeaderSectionTitle = "Header"
	// FallbackSectionTitle 完全无法切分时整篇文本使用的章节名
	FallbackSectionTitle = "Content"
	// FullTextSectionTitle 限长切分模式下的整篇兜底章节名
	FullTextSectionTitle = "Full Text"
)

// SectionSplitter 基于标题启发式把纯文本切分为有序的逻辑章节。
// 切分过程只做结构恢复，不丢弃内容：所有章节内容拼接后（忽略注入的标题、
// 按空白归一化）应能还原输入。
type SectionSplitter struct {
	catalog map[string]struct{} // 小写、去冒号后的标题目录
}

// Option SectionSplitter的配置选项
type Option func(*SectionSplitter)

// WithExtraHeaders 向标题目录追加自定义章节名
func WithExtraHeaders(headers ...string) Option {
	return func(s *SectionSplitter) {
		for _, h := range headers {
			s.catalog[normalizeHeader(h)] = struct{}{}
		}
	}
}

// NewSectionSplitter 创建章节切分器
func NewSectionSplitter(opts ...Option) *SectionSplitter {
	s := &SectionSplitter{
		catalog: make(map[string]struct{}, len(knownSectionHeaders)),
	}
	for _, h := range knownSectionHeaders {
		s.catalog[normalizeHeader(h)] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split 把文本切分为有序章节序列。
// 行扫描识别标题失败（结果不超过1个章节）时退化为按空行分段识别，
// 仍然失败则整篇文本作为单个"Content"章节返回，从不报错。
func (s *SectionSplitter) Split(text string) []types.Section {
	if strings.TrimSpace(text) == "" {
		return []types.Section{{Title: FallbackSectionTitle, Content: ""}}
	}

	text = strings.ReplaceAll(text, "\r", "\n")

	sections := s.splitByLines(text)

	// 行扫描几乎没有识别出结构时，尝试按空行分段的备用策略
	if len(sections) <= 1 {
		if alt := s.splitByParagraphs(text); len(alt) > 1 {
			sections = alt
		}
	}

	if len(sections) <= 1 {
		return []types.Section{{Title: FallbackSectionTitle, Content: strings.TrimSpace(text)}}
	}

	return mergeLeadingHeader(sections)
}

// splitByLines 逐行扫描，把候选标题行作为章节边界
func (s *SectionSplitter) splitByLines(text string) []types.Section {
	var (
		ordered      []types.Section
		indexByTitle = make(map[string]int)
		current      = HeaderSectionTitle
		content      []string
	)

	commit := func() {
		if len(content) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(content, "\n"))
		// 同名章节后出现的内容覆盖先出现的，位置保持首次出现处
		if idx, ok := indexByTitle[current]; ok {
			ordered[idx].Content = body
		} else {
			indexByTitle[current] = len(ordered)
			ordered = append(ordered, types.Section{Title: current, Content: body})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			content = append(content, line)
			continue
		}

		if s.isHeaderLine(trimmed) {
			commit()
			current = strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))
			content = nil
			continue
		}

		content = append(content, line)
	}
	commit()

	return ordered
}

// splitByParagraphs 按空行分段，把每段的首个候选标题行当作该段的章节标题
func (s *SectionSplitter) splitByParagraphs(text string) []types.Section {
	parts := strings.Split(text, "\n\n")
	if len(parts) <= 1 {
		return nil
	}

	var (
		ordered      []types.Section
		indexByTitle = make(map[string]int)
	)
	add := func(title, body string) {
		if idx, ok := indexByTitle[title]; ok {
			ordered[idx].Content = body
		} else {
			indexByTitle[title] = len(ordered)
			ordered = append(ordered, types.Section{Title: title, Content: body})
		}
	}

	seq := 0
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		seq++

		lines := strings.Split(part, "\n")
		first := strings.TrimSpace(lines[0])

		if len(first) < maxHeaderLineLen && (isAllUpper(first) || strings.HasSuffix(first, ":")) {
			title := strings.TrimSpace(strings.TrimSuffix(first, ":"))
			add(title, strings.TrimSpace(strings.Join(lines[1:], "\n")))
		} else {
			add(fmt.Sprintf("Section_%d", seq), strings.TrimSpace(part))
		}
	}

	return ordered
}

// isHeaderLine 判断一个非空行是否是章节标题：
// 必须足够短，且全大写、以冒号结尾、或命中已知标题目录三者满足其一
func (s *SectionSplitter) isHeaderLine(trimmed string) bool {
	if len(trimmed) >= maxHeaderLineLen {
		return false
	}
	if isAllUpper(trimmed) || strings.HasSuffix(trimmed, ":") {
		return true
	}
	_, ok := s.catalog[normalizeHeader(trimmed)]
	return ok
}

// mergeLeadingHeader 后处理：前导"Header"章节若只有一两行（通常只是姓名/头衔），
// 合并进第一个Summary/Profile/Objective章节，否则保持独立
func mergeLeadingHeader(sections []types.Section) []types.Section {
	idx := -1
	for i, sec := range sections {
		if sec.Title == HeaderSectionTitle {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sections
	}

	header := sections[idx]
	if len(strings.Split(strings.TrimSpace(header.Content), "\n")) > 2 {
		return sections
	}

	for i := range sections {
		switch strings.ToLower(sections[i].Title) {
		case "summary", "profile", "objective":
			sections[i].Content = header.Content + "\n\n" + sections[i].Content
			return append(sections[:idx], sections[idx+1:]...)
		}
	}
	return sections
}

// SplitWithMaxLength 面向上下文组装的限长切分变体：按段落分组，
// 候选标题段开启新章节，超过maxSectionChars的连续内容切成顺序的"Section N"。
// 无法切分时整篇文本作为"Full Text"章节返回。
func (s *SectionSplitter) SplitWithMaxLength(text string, maxSectionChars int) []types.Section {
	if maxSectionChars <= 0 {
		maxSectionChars = 2000
	}

	paragraphs := strings.Split(text, "\n\n")
	// 段落太少时回退到按单个换行切分
	if len(paragraphs) <= 3 {
		paragraphs = strings.Split(text, "\n")
	}

	var (
		ordered      []types.Section
		indexByTitle = make(map[string]int)
		buf          []string
		bufLen       int
		counter      = 1
		title        = "Section 1"
	)

	commit := func() {
		if len(buf) == 0 {
			return
		}
		body := strings.Join(buf, "\n\n")
		if idx, ok := indexByTitle[title]; ok {
			ordered[idx].Content = body
		} else {
			indexByTitle[title] = len(ordered)
			ordered = append(ordered, types.Section{Title: title, Content: body})
		}
	}

	for _, para := range paragraphs {
		p := strings.TrimSpace(para)
		if p == "" {
			continue
		}

		if isParagraphHeader(p) {
			commit()
			title = p
			buf = nil
			bufLen = 0
			continue
		}

		if bufLen+len(p) > maxSectionChars && len(buf) > 0 {
			commit()
			counter++
			title = fmt.Sprintf("Section %d", counter)
			buf = []string{p}
			bufLen = len(p)
			continue
		}

		buf = append(buf, p)
		bufLen += len(p)
	}
	commit()

	if len(ordered) == 0 {
		return []types.Section{{Title: FullTextSectionTitle, Content: text}}
	}
	return ordered
}

// isParagraphHeader 限长切分模式下的标题判定：
// 短段落且 冒号结尾 / 全大写 / 前10个字符没有小写字母
func isParagraphHeader(p string) bool {
	if len(p) >= maxHeaderParaLen {
		return false
	}
	if strings.HasSuffix(p, ":") || isAllUpper(p) {
		return true
	}
	head := p
	if len(head) > 10 {
		head = head[:10]
	}
	for _, r := range head {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isAllUpper 报告字符串是否至少含一个字母且所有字母都是大写
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}

// normalizeHeader 目录键归一化：小写并去掉尾部冒号
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), ":")))
}
