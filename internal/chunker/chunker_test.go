package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChunkShortText 不超过块大小的文本原样返回单块
func TestChunkShortText(t *testing.T) {
	chunks := Chunk("A short sentence. Another one.", Config{ChunkSize: 100, Overlap: 20})

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short sentence. Another one.", chunks[0].Text)
}

// TestChunkEmptyText 空输入不产生任何块
func TestChunkEmptyText(t *testing.T) {
	assert.Empty(t, Chunk("", DefaultConfig()))
}

// TestChunkSentenceOverlap 相邻块之间带句子级重叠
func TestChunkSentenceOverlap(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here. Fourth sentence here."
	chunks := Chunk(text, Config{ChunkSize: 50, Overlap: 25})

	require.Greater(t, len(chunks), 1)

	// 后一块应以前一块末尾的句子开头
	for i := 1; i < len(chunks); i++ {
		firstSentence := strings.SplitAfter(chunks[i].Text, ".")[0]
		assert.Contains(t, chunks[i-1].Text, firstSentence,
			"第%d块的开头应是第%d块末尾的重叠句", i, i-1)
	}
}

// TestChunkWindowFallbackCoversAllInput 无标点长文本退化为字符窗口，
// 每个字符都被覆盖且块长不超过 chunkSize
func TestChunkWindowFallbackCoversAllInput(t *testing.T) {
	text := strings.Repeat("x", 2500)
	cfg := Config{ChunkSize: 1000, Overlap: 200}
	chunks := Chunk(text, cfg)

	require.NotEmpty(t, chunks)

	covered := 0
	stride := cfg.ChunkSize - cfg.Overlap
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), cfg.ChunkSize)
		if i < len(chunks)-1 {
			assert.Equal(t, cfg.ChunkSize, len(c.Text))
		}
		covered += stride
		_ = covered
	}

	// 窗口按 stride 滑动，总覆盖必须到达文本末尾
	lastStart := stride * (len(chunks) - 1)
	assert.Equal(t, text[lastStart:], chunks[len(chunks)-1].Text)
}

// TestChunkMixedLongSentence 正常句子与超长句混排时两种策略衔接
func TestChunkMixedLongSentence(t *testing.T) {
	long := strings.Repeat("y", 300)
	text := "Short intro sentence. " + long + " Trailing sentence."
	chunks := Chunk(text, Config{ChunkSize: 100, Overlap: 20})

	require.Greater(t, len(chunks), 2)

	var all strings.Builder
	for _, c := range chunks {
		all.WriteString(c.Text)
	}
	assert.Contains(t, all.String(), "Short intro sentence.")
	assert.Contains(t, all.String(), "Trailing sentence.")
	assert.Contains(t, all.String(), "yyyy")
}

// TestConfigNormalize 非法参数防御性修正
func TestConfigNormalize(t *testing.T) {
	cfg := Config{ChunkSize: 0, Overlap: -1}.normalize()
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.Overlap)

	// overlap不小于chunkSize时压回安全值
	cfg = Config{ChunkSize: 100, Overlap: 100}.normalize()
	assert.Equal(t, 100, cfg.ChunkSize)
	assert.Equal(t, 20, cfg.Overlap)
	assert.Less(t, cfg.Overlap, cfg.ChunkSize)
}

// TestSplitSentencesKeepsPunctuation 切句保留句尾标点
func TestSplitSentencesKeepsPunctuation(t *testing.T) {
	sentences := splitSentences("One. Two! Three? Four")

	require.Len(t, sentences, 4)
	assert.Equal(t, "One.", sentences[0])
	assert.Equal(t, "Two!", sentences[1])
	assert.Equal(t, "Three?", sentences[2])
	assert.Equal(t, "Four", sentences[3])
}
