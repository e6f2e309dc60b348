package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hr-agent-go/internal/constants"
)

// Config 应用程序配置
type Config struct {
	Aliyun struct {
		APIKey    string          `yaml:"api_key"`
		APIURL    string          `yaml:"api_url"`
		Model     string          `yaml:"model"`
		Embedding EmbeddingConfig `yaml:"embedding"`
	} `yaml:"aliyun"`

	Qdrant QdrantConfig `yaml:"qdrant"`

	Redis RedisConfig `yaml:"redis"`

	// 文档分块参数
	Chunker ChunkerConfig `yaml:"chunker"`

	// 上下文组装参数
	Assembler AssemblerConfig `yaml:"assembler"`

	// 简历分析器参数
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	Logger LoggerConfig `yaml:"logger"`
}

// EmbeddingConfig 嵌入服务配置
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
}

// QdrantConfig Qdrant向量数据库配置
type QdrantConfig struct {
	Endpoint           string `yaml:"endpoint"`
	Collection         string `yaml:"collection"`
	Dimension          int    `yaml:"dimension"`
	APIKey             string `yaml:"api_key,omitempty"`
	DefaultSearchLimit int    `yaml:"default_search_limit"`
}

// RedisConfig Redis配置（文档内容缓存，用于回填检索结果缺失的文本）
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置(秒)
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// ChunkerConfig 分块配置
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// AssemblerConfig 上下文组装配置
type AssemblerConfig struct {
	MaxContextTokens int `yaml:"max_context_tokens"`
	MaxSectionChars  int `yaml:"max_section_chars"`
}

// AnalyzerConfig 简历分析配置
type AnalyzerConfig struct {
	// DirectTokenLimit 直接分析的估算token上限，超过进入级联流程
	DirectTokenLimit int `yaml:"direct_token_limit"`
	// Temperature 结构化抽取使用的采样温度
	Temperature float32 `yaml:"temperature"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	TimeFormat   string `yaml:"time_format"`
	ReportCaller bool   `yaml:"report_caller"`
}

// LoadConfig 加载配置文件。路径为空时在常见位置查找；
// 测试环境下找不到文件时返回默认配置而不是报错。
func LoadConfig(configPath string) (*Config, error) {
	// .env存在时先加载，方便本地开发注入密钥
	_ = godotenv.Load()

	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".hr-agent", "config.yaml"),
		}
		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"))
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		// 未找到配置文件：使用内置默认配置，纯文本操作不依赖外部服务
		if configPath == "" {
			cfg := createDefaultConfig()
			applyEnvOverrides(cfg)
			applyDefaults(cfg)
			return cfg, nil
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	return &config, nil
}

// applyEnvOverrides 环境变量覆盖文件配置
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("ALIYUN_API_KEY"); envKey != "" {
		config.Aliyun.APIKey = envKey
	}
	if envURL := os.Getenv("ALIYUN_API_URL"); envURL != "" {
		config.Aliyun.APIURL = envURL
	}
	if envModel := os.Getenv("ALIYUN_MODEL"); envModel != "" {
		config.Aliyun.Model = envModel
	}
	if envEndpoint := os.Getenv("QDRANT_ENDPOINT"); envEndpoint != "" {
		config.Qdrant.Endpoint = envEndpoint
	}
	if envAddr := os.Getenv("REDIS_ADDRESS"); envAddr != "" {
		config.Redis.Address = envAddr
	}
}

// applyDefaults 为缺省字段填入默认值
func applyDefaults(config *Config) {
	if config.Aliyun.Embedding.Dimensions <= 0 {
		config.Aliyun.Embedding.Dimensions = constants.EmbeddingDimensions
	}
	if config.Qdrant.Dimension <= 0 {
		config.Qdrant.Dimension = config.Aliyun.Embedding.Dimensions
	}
	if config.Qdrant.DefaultSearchLimit <= 0 {
		config.Qdrant.DefaultSearchLimit = 3
	}
	if config.Chunker.ChunkSize <= 0 {
		config.Chunker.ChunkSize = constants.DefaultChunkSize
	}
	if config.Chunker.Overlap <= 0 {
		config.Chunker.Overlap = constants.DefaultChunkOverlap
	}
	if config.Assembler.MaxContextTokens <= 0 {
		config.Assembler.MaxContextTokens = constants.DefaultMaxContextTokens
	}
	if config.Assembler.MaxSectionChars <= 0 {
		config.Assembler.MaxSectionChars = constants.DefaultMaxSectionChars
	}
	if config.Analyzer.DirectTokenLimit <= 0 {
		config.Analyzer.DirectTokenLimit = constants.DirectAnalysisTokenLimit
	}
	if config.Analyzer.Temperature <= 0 {
		config.Analyzer.Temperature = 0.3
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
}

// createDefaultConfig 返回无外部依赖的默认配置（测试环境使用）
func createDefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// inTestEnvironment 粗略判断是否运行在go test之下
func inTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}
