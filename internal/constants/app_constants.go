package constants

import "time"

const (
	// 分块默认参数
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	// 上下文组装参数
	DefaultMaxContextTokens = 8000
	DefaultMaxSectionChars  = 2000
	// CharsPerToken 按字符数估算token数的粗略换算比 (英文文本约4字符/token)
	CharsPerToken = 4

	// DirectAnalysisTokenLimit 单次直接分析可接受的最大估算token数，
	// 超过则进入"压缩全文→逐章节"的级联分析流程
	DirectAnalysisTokenLimit = 12000

	// EmbeddingDimensions 本部署使用的向量维度
	EmbeddingDimensions = 768

	// Redis文档内容缓存 (用于回填向量检索结果缺失的text字段)
	DocumentContentPrefix = "document:content:"
	DocumentContentTTL    = 7 * 24 * time.Hour
)

// 各类降级场景下返回的占位文本
const (
	MsgServiceUnavailable  = "AI service is not available at the moment. Please try again later."
	MsgNoEducationFound    = "No education information found"
	MsgNoSummaryAvailable  = "No summary information available"
	MsgParseEducationError = "Could not parse education"
	MsgParseSummaryError   = "Error parsing resume analysis result"
)
