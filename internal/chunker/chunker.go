package chunker

import (
	"regexp"
	"strings"

	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/types"
)

// sentenceBoundary 句子边界：.!?后跟空白
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// Config 分块配置
type Config struct {
	// ChunkSize 目标块大小（字符数），≤0时使用默认值
	ChunkSize int
	// Overlap 相邻块之间的重叠字符数，必须小于ChunkSize
	Overlap int
}

// DefaultConfig 返回默认分块配置
func DefaultConfig() Config {
	return Config{
		ChunkSize: constants.DefaultChunkSize,
		Overlap:   constants.DefaultChunkOverlap,
	}
}

// normalize 对非法参数做防御性修正，保证 0 ≤ overlap < chunkSize
func (c Config) normalize() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = constants.DefaultChunkSize
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		c.Overlap = min(constants.DefaultChunkOverlap, c.ChunkSize/5)
	}
	return c
}

// Chunk 按句子边界把文本切分为带重叠的文本块，供向量索引使用。
// 贪心累积句子直到超出块大小，收尾后用上一块末尾若干句（总长不超过overlap）
// 作为下一块的开头。单句超过块大小（典型场景：完全没有句子标点的文本）时
// 退化为定长字符窗口滑动，窗口步长为 chunkSize-overlap，保证覆盖全部输入。
// 产出的每个块长度不超过 chunkSize+overlap。无副作用，可重复调用。
func Chunk(text string, cfg Config) []types.Chunk {
	if text == "" {
		return nil
	}
	cfg = cfg.normalize()

	var (
		chunks  []types.Chunk
		current []string
		size    int
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, types.Chunk{Text: strings.Join(current, " ")})
		}
	}

	for _, sentence := range splitSentences(text) {
		// 单句就超限，句子边界已经无能为力，对这一句滑动字符窗口
		if len(sentence) > cfg.ChunkSize {
			flush()
			current, size = nil, 0
			chunks = append(chunks, windowChunks(sentence, cfg)...)
			continue
		}

		// 追加本句会超限且当前块非空时，先收尾当前块
		if size+len(sentence) > cfg.ChunkSize && len(current) > 0 {
			flush()

			// 从当前块末尾向前收集句子作为下一块的重叠种子
			var overlapSentences []string
			overlapSize := 0
			for i := len(current) - 1; i >= 0; i-- {
				if overlapSize+len(current[i]) > cfg.Overlap {
					break
				}
				overlapSentences = append([]string{current[i]}, overlapSentences...)
				overlapSize += len(current[i])
			}

			current = overlapSentences
			size = overlapSize
		}

		current = append(current, sentence)
		size += len(sentence)
	}
	flush()

	return chunks
}

// windowChunks 定长字符窗口兜底：覆盖text的每一个字符，无间隙
func windowChunks(text string, cfg Config) []types.Chunk {
	var chunks []types.Chunk
	stride := cfg.ChunkSize - cfg.Overlap
	for i := 0; i < len(text); i += stride {
		end := min(i+cfg.ChunkSize, len(text))
		chunks = append(chunks, types.Chunk{Text: text[i:end]})
		if end == len(text) {
			break
		}
	}
	return chunks
}

// splitSentences 以标点+空白为边界切句，标点保留在前一句末尾
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := parts[:0]
	for _, p := range parts {
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
