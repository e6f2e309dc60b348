package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// CompletionClient 在eino聊天模型之上提供"系统提示+用户提示→文本"的单轮补全。
// 响应是不可信的自由文本，可能不是合法JSON，调用方必须防御性解析。
type CompletionClient struct {
	chatModel model.BaseChatModel
}

// NewCompletionClient 创建补全客户端；chatModel为nil时客户端不可用，
// Available()返回false，调用方应走降级路径而不是调用Complete。
func NewCompletionClient(chatModel model.BaseChatModel) *CompletionClient {
	return &CompletionClient{chatModel: chatModel}
}

// Available 报告底层模型是否已配置
func (c *CompletionClient) Available() bool {
	return c != nil && c.chatModel != nil
}

// Complete 发起一次补全请求。maxTokens必须有界，temperature控制采样随机性。
func (c *CompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("补全模型未配置")
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}

	resp, err := c.chatModel.Generate(ctx, messages,
		model.WithMaxTokens(maxTokens),
		model.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("LLM调用失败: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("LLM返回了空响应")
	}

	// 去掉偶发的BOM前缀
	return strings.TrimPrefix(resp.Content, "\uFEFF"), nil
}

// IsContextLengthError 判断错误是否由上下文超长引起，
// 聊天应答路径据此触发一次截断上下文的重试
func IsContextLengthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "input length")
}
