package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"hr-agent-go/internal/logger"
)

const (
	// DashScope的OpenAI兼容endpoint
	defaultChatAPIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultChatModel  = "qwen-plus"
)

// AliyunQwenChatModel 通过OpenAI兼容接口访问通义千问，
// 实现 cloudwego/eino 的 model.BaseChatModel 接口。
// 本服务只做单轮补全，不支持工具调用和流式输出。
type AliyunQwenChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	httpClient *http.Client
}

// QwenOption AliyunQwenChatModel的配置选项
type QwenOption func(*AliyunQwenChatModel)

// WithHTTPClient 替换HTTP客户端（测试时注入带mock Transport的客户端）
func WithHTTPClient(c *http.Client) QwenOption {
	return func(m *AliyunQwenChatModel) {
		m.httpClient = c
	}
}

// NewAliyunQwenChatModel 创建通义千问聊天模型客户端
func NewAliyunQwenChatModel(apiKey, modelName, apiURL string, opts ...QwenOption) (*AliyunQwenChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultChatModel
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultChatAPIURL
	}

	m := &AliyunQwenChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}

	logger.Info().Str("api_url", m.apiURL).Str("model", m.modelName).Msg("通义千问LLM客户端已初始化")
	return m, nil
}

// --- OpenAI兼容请求/响应结构 ---

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []*schema.Message `json:"messages"` // eino的schema.Message与OpenAI的role/content兼容
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Temperature *float32          `json:"temperature,omitempty"`
}

type chatCompletionChoice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate 实现 model.BaseChatModel 接口。
// 通过eino通用选项传入的max_tokens和temperature会透传给API。
func (m *AliyunQwenChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)

	reqBody := chatCompletionRequest{
		Model:       m.modelName,
		Messages:    messages,
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
	}
	if options.Model != nil && *options.Model != "" {
		reqBody.Model = *options.Model
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用LLM API失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取LLM响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LLM API返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("解析LLM响应失败: %w", err)
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("LLM API错误 (%s): %s", completion.Error.Code, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("LLM没有返回任何choices")
	}

	return &schema.Message{
		Role:    schema.Assistant,
		Content: completion.Choices[0].Message.Content,
	}, nil
}

// Stream 实现 model.BaseChatModel 接口。本服务不需要流式输出。
func (m *AliyunQwenChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("流式输出未实现")
}
