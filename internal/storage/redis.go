package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"hr-agent-go/internal/config"
	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/logger"
	"hr-agent-go/internal/tracing"
)

// ErrNotFound 键不存在时返回，包装底层的redis.Nil以隔离依赖
var ErrNotFound = redis.Nil

// Redis 文档内容存储：按文档ID缓存原始文本，
// 用于回填向量检索结果payload中缺失的text字段
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并验证连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子，记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// documentContentKey 文档内容缓存键
func documentContentKey(documentID int) string {
	return constants.DocumentContentPrefix + strconv.Itoa(documentID)
}

// SetDocumentContent 缓存一篇文档的原始文本
func (r *Redis) SetDocumentContent(ctx context.Context, documentID int, content string) error {
	key := documentContentKey(documentID)
	if err := r.Client.Set(ctx, key, content, constants.DocumentContentTTL).Err(); err != nil {
		return fmt.Errorf("缓存文档内容失败 (key=%s): %w", tracing.SafeRedisKey(key), err)
	}
	logger.Debug().
		Str("key", tracing.SafeRedisKey(key)).
		Str("content", tracing.SafeDocumentContent(content)).
		Msg("文档内容已缓存")
	return nil
}

// GetDocumentContent 读取一篇文档的原始文本；不存在时返回ErrNotFound
func (r *Redis) GetDocumentContent(ctx context.Context, documentID int) (string, error) {
	content, err := r.Client.Get(ctx, documentContentKey(documentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("读取文档内容失败 (document_id=%d): %w", documentID, err)
	}
	return content, nil
}

// DeleteDocumentContent 删除一篇文档的缓存文本
func (r *Redis) DeleteDocumentContent(ctx context.Context, documentID int) error {
	return r.Client.Del(ctx, documentContentKey(documentID)).Err()
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	if err := r.Client.Close(); err != nil {
		logger.Warn().Err(err).Msg("关闭Redis连接失败")
		return err
	}
	return nil
}
