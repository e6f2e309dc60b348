package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hr-agent-go/internal/analyzer"
	"hr-agent-go/internal/assembler"
	"hr-agent-go/internal/chunker"
	"hr-agent-go/internal/config"
	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/embedding"
	"hr-agent-go/internal/llm"
	"hr-agent-go/internal/logger"
	"hr-agent-go/internal/scorer"
	"hr-agent-go/internal/splitter"
	"hr-agent-go/internal/storage"
	"hr-agent-go/internal/types"
)

// Service 文本处理与AI分析的统一门面。
// 向量库、缓存、补全模型、嵌入模型都是可选能力：
// 未配置时相应操作返回文档化的占位结果而不是报错
type Service struct {
	cfg       *config.Config
	storage   *storage.Storage
	embedder  *embedding.Provider
	completer *llm.CompletionClient
	splitter  *splitter.SectionSplitter
	assembler *assembler.ContextAssembler
	analyzer  *analyzer.CascadingAnalyzer
}

// New 创建服务门面
func New(cfg *config.Config, store *storage.Storage, embedder *embedding.Provider, completer *llm.CompletionClient) *Service {
	sp := splitter.NewSectionSplitter()
	maxSectionChars := constants.DefaultMaxSectionChars
	if cfg != nil && cfg.Assembler.MaxSectionChars > 0 {
		maxSectionChars = cfg.Assembler.MaxSectionChars
	}

	var analyzerCfg *config.AnalyzerConfig
	if cfg != nil {
		analyzerCfg = &cfg.Analyzer
	}

	return &Service{
		cfg:       cfg,
		storage:   store,
		embedder:  embedder,
		completer: completer,
		splitter:  sp,
		assembler: assembler.NewContextAssembler(sp, assembler.WithMaxSectionChars(maxSectionChars)),
		analyzer:  analyzer.NewCascadingAnalyzer(completer, sp, analyzerCfg),
	}
}

// ChunkText 将文本切成带重叠的定长块，供索引层使用
func (s *Service) ChunkText(text string) []types.Chunk {
	cfg := chunker.DefaultConfig()
	if s.cfg != nil {
		if s.cfg.Chunker.ChunkSize > 0 {
			cfg.ChunkSize = s.cfg.Chunker.ChunkSize
		}
		if s.cfg.Chunker.Overlap >= 0 {
			cfg.Overlap = s.cfg.Chunker.Overlap
		}
	}
	return chunker.Chunk(text, cfg)
}

// SplitIntoSections 按结构将文档切分为章节
func (s *Service) SplitIntoSections(text string) []types.Section {
	return s.splitter.Split(text)
}

// AssembleContext 从检索结果组装受token预算约束的上下文
func (s *Service) AssembleContext(query string, matches []types.DocumentMatch) (string, []string) {
	maxTokens := constants.DefaultMaxContextTokens
	if s.cfg != nil && s.cfg.Assembler.MaxContextTokens > 0 {
		maxTokens = s.cfg.Assembler.MaxContextTokens
	}
	return s.assembler.Assemble(query, matches, maxTokens)
}

// AnalyzeDocument 对文档做结构化分析
func (s *Service) AnalyzeDocument(ctx context.Context, documentText, positionDescription string) types.AnalysisResult {
	return s.analyzer.Analyze(ctx, documentText, positionDescription)
}

// MatchScore 计算技能集合与需求文本的匹配分
func (s *Service) MatchScore(skills []string, requirementsText string) int {
	return scorer.Match(skills, requirementsText)
}

// IndexDocument 将文档写入向量库并缓存原文。
// 返回对外的向量ID；向量库未配置返回"doc_<id>_not_stored"，
// 写入失败返回"doc_<id>_error"，两者都不报错
func (s *Service) IndexDocument(ctx context.Context, documentID int, text string, metadata map[string]interface{}) string {
	if s.storage == nil || s.storage.Qdrant == nil {
		logger.Info().Int("document_id", documentID).Msg("向量库未配置，跳过索引")
		return fmt.Sprintf("doc_%d_not_stored", documentID)
	}

	vector := s.embedder.Embed(ctx, text)

	vectorID := fmt.Sprintf("doc_%d_%s", documentID, strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

	payload := make(map[string]interface{}, len(metadata)+2)
	for k, v := range metadata {
		payload[k] = v
	}
	payload["vector_id"] = vectorID
	if _, ok := payload["text"]; !ok {
		payload["text"] = text
	}

	if _, err := s.storage.Qdrant.UpsertDocument(ctx, documentID, vector, payload); err != nil {
		logger.Warn().Err(err).Int("document_id", documentID).Msg("写入向量库失败")
		return fmt.Sprintf("doc_%d_error", documentID)
	}

	// 缓存原文，供检索结果回填text字段
	if s.storage.Redis != nil {
		if err := s.storage.Redis.SetDocumentContent(ctx, documentID, text); err != nil {
			logger.Warn().Err(err).Int("document_id", documentID).Msg("缓存文档内容失败")
		}
	}

	return vectorID
}

// SearchDocuments 语义检索相似文档。向量库未配置或检索失败时返回空列表
func (s *Service) SearchDocuments(ctx context.Context, query string, limit int) []types.DocumentMatch {
	if s.storage == nil || s.storage.Qdrant == nil {
		logger.Info().Msg("向量库未配置，返回空检索结果")
		return []types.DocumentMatch{}
	}

	if limit <= 0 {
		limit = 3
		if s.cfg != nil && s.cfg.Qdrant.DefaultSearchLimit > 0 {
			limit = s.cfg.Qdrant.DefaultSearchLimit
		}
	}

	queryVector := s.embedder.Embed(ctx, query)

	results, err := s.storage.Qdrant.SearchSimilarDocuments(ctx, queryVector, limit)
	if err != nil {
		logger.Warn().Err(err).Msg("向量检索失败")
		return []types.DocumentMatch{}
	}

	matches := storage.NormalizeSearchResults(results)

	// 载荷里缺text的结果，用缓存的原文回填
	if s.storage.Redis != nil {
		for i := range matches {
			if matches[i].Text != "" || matches[i].DocumentID == 0 {
				continue
			}
			content, err := s.storage.Redis.GetDocumentContent(ctx, matches[i].DocumentID)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					logger.Warn().Err(err).Int("document_id", matches[i].DocumentID).Msg("回填文档内容失败")
				}
				continue
			}
			matches[i].Text = content
		}
	}

	return matches
}

// RemoveDocument 从向量库和缓存中删除一篇文档
func (s *Service) RemoveDocument(ctx context.Context, documentID int) error {
	if s.storage == nil || s.storage.Qdrant == nil {
		return nil
	}
	if err := s.storage.Qdrant.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("删除向量失败 (document_id=%d): %w", documentID, err)
	}
	if s.storage.Redis != nil {
		if err := s.storage.Redis.DeleteDocumentContent(ctx, documentID); err != nil {
			logger.Warn().Err(err).Int("document_id", documentID).Msg("删除缓存文档内容失败")
		}
	}
	return nil
}
