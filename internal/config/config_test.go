package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-agent-go/internal/constants"
)

// TestLoadConfigFromFile 验证YAML配置文件能被正确加载，缺省字段得到默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "test-key"
  model: "qwen-plus"
  embedding:
    model: "text-embedding-v3"
    dimensions: 1024

qdrant:
  endpoint: "http://localhost:6333"
  collection: "hr_documents"

redis:
  address: "localhost:6379"
  pool_size: 20

chunker:
  chunk_size: 800
  overlap: 150

logger:
  level: "debug"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config)

	// 显式配置的字段
	assert.Equal(t, "test-key", config.Aliyun.APIKey)
	assert.Equal(t, "qwen-plus", config.Aliyun.Model)
	assert.Equal(t, 1024, config.Aliyun.Embedding.Dimensions)
	assert.Equal(t, "http://localhost:6333", config.Qdrant.Endpoint)
	assert.Equal(t, "localhost:6379", config.Redis.Address)
	assert.Equal(t, 800, config.Chunker.ChunkSize)
	assert.Equal(t, 150, config.Chunker.Overlap)
	assert.Equal(t, "debug", config.Logger.Level)

	// 缺省字段的默认值
	assert.Equal(t, 1024, config.Qdrant.Dimension, "Qdrant维度默认跟随嵌入维度")
	assert.Equal(t, 3, config.Qdrant.DefaultSearchLimit)
	assert.Equal(t, constants.DefaultMaxContextTokens, config.Assembler.MaxContextTokens)
	assert.Equal(t, constants.DirectAnalysisTokenLimit, config.Analyzer.DirectTokenLimit)
	assert.InDelta(t, 0.3, config.Analyzer.Temperature, 1e-6)
}

// TestLoadConfigMissingFileInTests 测试环境下配置文件缺失时回退到默认配置
func TestLoadConfigMissingFileInTests(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err, "测试环境下缺失配置文件应回退默认配置")
	require.NotNil(t, config)
	assert.Equal(t, constants.EmbeddingDimensions, config.Aliyun.Embedding.Dimensions)
	assert.Equal(t, constants.DefaultChunkSize, config.Chunker.ChunkSize)
	assert.Equal(t, "info", config.Logger.Level)
}

// TestLoadConfigEnvOverrides 环境变量覆盖文件配置
func TestLoadConfigEnvOverrides(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "file-key"
qdrant:
  endpoint: "http://file-endpoint:6333"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	t.Setenv("ALIYUN_API_KEY", "env-key")
	t.Setenv("QDRANT_ENDPOINT", "http://env-endpoint:6333")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-key", config.Aliyun.APIKey, "环境变量应覆盖文件中的API密钥")
	assert.Equal(t, "http://env-endpoint:6333", config.Qdrant.Endpoint)
}

// TestLoadConfigInvalidYAML 非法YAML返回错误
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("aliyun: [not a map"), 0644))

	_, err := LoadConfig(configPath)
	assert.Error(t, err, "非法YAML应返回解析错误")
}
