package storage

import (
	"context"
	"fmt"
	"strings"

	"hr-agent-go/internal/config"
	"hr-agent-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖。
// 各组件按配置可选初始化：未配置或初始化失败的组件保持nil，
// 上层通过nil判断降级（跳过缓存回填、返回空检索结果等）
type Storage struct {
	// 向量数据库
	Qdrant *Qdrant

	// 键值存储（文档内容缓存）
	Redis *Redis
}

// NewStorage 创建存储管理器
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error
	var initErrors []string

	// 初始化Qdrant（如果配置了）
	if cfg.Qdrant.Endpoint != "" {
		logger.Info().Str("endpoint", cfg.Qdrant.Endpoint).Msg("初始化Qdrant...")
		storage.Qdrant, err = NewQdrant(&cfg.Qdrant)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Qdrant失败")
			initErrors = append(initErrors, fmt.Sprintf("Qdrant: %v", err))
		}
	} else {
		logger.Info().Msg("Qdrant未配置, 跳过初始化.")
	}

	// 初始化Redis（如果配置了）
	if cfg.Redis.Address != "" {
		logger.Info().Str("address", cfg.Redis.Address).Msg("初始化Redis...")
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		logger.Info().Msg("Redis未配置, 跳过初始化.")
	}

	// 所有组件都未配置也允许启动：纯文本分析路径不依赖任何存储
	if len(initErrors) > 0 {
		logger.Warn().Str("errors", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}

	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s == nil {
		return
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
	// Qdrant基于HTTP客户端，无需显式关闭
}
