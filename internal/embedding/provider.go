package embedding

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/logger"
)

// Provider 是可选的嵌入能力：未配置或调用失败时返回同维度的全零向量，
// 绝不向调用方抛错，让检索/索引流程按"无结果"降级而不是中断。
type Provider struct {
	embedder   embedding.Embedder
	dimensions int
}

// NewProvider 创建嵌入能力封装。embedder为nil表示该能力未配置。
func NewProvider(embedder embedding.Embedder, dimensions int) *Provider {
	if dimensions <= 0 {
		dimensions = constants.EmbeddingDimensions
	}
	return &Provider{embedder: embedder, dimensions: dimensions}
}

// Available 报告嵌入能力是否已配置
func (p *Provider) Available() bool {
	return p != nil && p.embedder != nil
}

// Dimensions 返回向量维度
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// Embed 生成单条文本的向量。任何失败都降级为全零向量。
func (p *Provider) Embed(ctx context.Context, text string) []float64 {
	if !p.Available() {
		logger.Debug().Msg("嵌入模型未配置，返回零向量")
		return make([]float64, p.dimensions)
	}

	vectors, err := p.embedder.EmbedStrings(ctx, []string{text})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		logger.Warn().Err(err).Msg("生成嵌入向量失败，返回零向量")
		return make([]float64, p.dimensions)
	}
	return vectors[0]
}
