package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-agent-go/internal/config"
	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/embedding"
	"hr-agent-go/internal/llm"
	"hr-agent-go/internal/types"
)

// scriptedModel 测试用模型：每次调用依序弹出一个脚本项
type scriptedModel struct {
	script []scriptStep
	calls  int
}

type scriptStep struct {
	response string
	err      error
}

func (m *scriptedModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	step := m.script[m.calls]
	m.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &schema.Message{Role: schema.Assistant, Content: step.response}, nil
}

func (m *scriptedModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("测试中不支持流式输出")
}

func newDegradedService() *Service {
	return New(testConfig(), nil, embedding.NewProvider(nil, constants.EmbeddingDimensions), llm.NewCompletionClient(nil))
}

func newServiceWithModel(m model.BaseChatModel) *Service {
	return New(testConfig(), nil, embedding.NewProvider(nil, constants.EmbeddingDimensions), llm.NewCompletionClient(m))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Chunker.ChunkSize = constants.DefaultChunkSize
	cfg.Chunker.Overlap = constants.DefaultChunkOverlap
	cfg.Assembler.MaxContextTokens = constants.DefaultMaxContextTokens
	cfg.Assembler.MaxSectionChars = constants.DefaultMaxSectionChars
	return cfg
}

// TestChunkTextUsesConfig 分块遵循配置的块大小
func TestChunkTextUsesConfig(t *testing.T) {
	svc := newDegradedService()

	chunks := svc.ChunkText("One sentence. Two sentence. Three sentence.")
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Three sentence.")
}

// TestIndexDocumentWithoutVectorStore 向量库未配置时返回not_stored哨兵
func TestIndexDocumentWithoutVectorStore(t *testing.T) {
	svc := newDegradedService()

	vectorID := svc.IndexDocument(context.Background(), 42, "document body", nil)
	assert.Equal(t, "doc_42_not_stored", vectorID)
}

// TestSearchDocumentsWithoutVectorStore 向量库未配置时返回空列表
func TestSearchDocumentsWithoutVectorStore(t *testing.T) {
	svc := newDegradedService()

	matches := svc.SearchDocuments(context.Background(), "query", 3)
	assert.Empty(t, matches)
}

// TestGenerateResponseUnavailable 模型未配置时返回占位文本
func TestGenerateResponseUnavailable(t *testing.T) {
	svc := newDegradedService()

	answer := svc.GenerateResponse(context.Background(), "What is the leave policy?", "")
	assert.Equal(t, constants.MsgServiceUnavailable, answer)
}

// TestGenerateResponseWithContext 带上下文的正常问答
func TestGenerateResponseWithContext(t *testing.T) {
	m := &scriptedModel{script: []scriptStep{
		{response: "Fifteen days per year."},
	}}
	svc := newServiceWithModel(m)

	answer := svc.GenerateResponse(context.Background(), "How many vacation days?", "Policy: 15 days of paid leave.")
	assert.Equal(t, "Fifteen days per year.", answer)
	assert.Equal(t, 1, m.calls)
}

// TestGenerateResponseTruncationRetry 上下文超长错误触发一次截断重试，
// 重试结果带截断说明后缀
func TestGenerateResponseTruncationRetry(t *testing.T) {
	m := &scriptedModel{script: []scriptStep{
		{err: fmt.Errorf("this model's maximum context length is exceeded")},
		{response: "Partial answer."},
	}}
	svc := newServiceWithModel(m)

	longContext := strings.Repeat("background information ", 100)
	answer := svc.GenerateResponse(context.Background(), "question", longContext)

	assert.Equal(t, 2, m.calls)
	assert.True(t, strings.HasPrefix(answer, "Partial answer."))
	assert.Contains(t, answer, "truncated context")
}

// TestGenerateResponseRetryAlsoFails 重试仍失败时返回固定的道歉文案
func TestGenerateResponseRetryAlsoFails(t *testing.T) {
	m := &scriptedModel{script: []scriptStep{
		{err: fmt.Errorf("maximum context length exceeded")},
		{err: fmt.Errorf("maximum context length exceeded")},
	}}
	svc := newServiceWithModel(m)

	answer := svc.GenerateResponse(context.Background(), "question", "context")
	assert.Contains(t, answer, "couldn't process your request")
}

// TestGenerateResponseNonContextError 非上下文超长错误不重试
func TestGenerateResponseNonContextError(t *testing.T) {
	m := &scriptedModel{script: []scriptStep{
		{err: fmt.Errorf("rate limit exceeded")},
	}}
	svc := newServiceWithModel(m)

	answer := svc.GenerateResponse(context.Background(), "question", "")
	assert.Equal(t, 1, m.calls)
	assert.Contains(t, answer, "Sorry, I encountered an error")
}

// TestGenerateInterviewQuestions 问题按行切分并限量
func TestGenerateInterviewQuestions(t *testing.T) {
	m := &scriptedModel{script: []scriptStep{
		{response: "What is a goroutine?\nExplain channels.\nDescribe the scheduler.\nExtra question."},
	}}
	svc := newServiceWithModel(m)

	questions := svc.GenerateInterviewQuestions(context.Background(), "Go developer role", "medium", 3, []string{"technical"})

	require.Len(t, questions, 3)
	assert.Equal(t, "What is a goroutine?", questions[0])
}

// TestGenerateInterviewQuestionsUnavailable 模型未配置时返回占位列表
func TestGenerateInterviewQuestionsUnavailable(t *testing.T) {
	svc := newDegradedService()

	questions := svc.GenerateInterviewQuestions(context.Background(), "role", "easy", 2, nil)
	assert.Equal(t, []string{constants.MsgServiceUnavailable}, questions)
}

// TestAssembleContextDelegates 门面组装上下文并返回来源
func TestAssembleContextDelegates(t *testing.T) {
	svc := newDegradedService()

	matches := []types.DocumentMatch{
		{ID: "a", Title: "Handbook", DocumentID: 1, Text: "Vacation policy grants fifteen days."},
	}
	contextText, sources := svc.AssembleContext("vacation", matches)

	assert.Contains(t, contextText, "Handbook")
	assert.Equal(t, []string{"Handbook"}, sources)
}

// TestMatchScoreDelegates 门面透传启发式匹配分
func TestMatchScoreDelegates(t *testing.T) {
	svc := newDegradedService()
	assert.Equal(t, 100, svc.MatchScore([]string{"go"}, "go experience required"))
}
