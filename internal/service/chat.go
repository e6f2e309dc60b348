package service

import (
	"context"
	"fmt"
	"strings"

	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/llm"
	"hr-agent-go/internal/logger"
)

const (
	systemHRAssistant       = "You are an HR assistant with expertise in HR processes, recruitment, and employee management."
	systemHRAssistantShort  = "You are an HR assistant. Provide concise answers based on the given information."
	systemQuestionGenerator = "You are an expert HR professional who specializes in creating interview questions."

	responseMaxTokens      = 500
	retryMaxTokens         = 300
	questionsMaxTokens     = 1000
	responseTemperature    = 0.7
	retryTemperature       = 0.5
	truncatedContextSuffix = "\n\n[Note: The response was generated with truncated context due to length limitations.]"
)

// GenerateResponse 基于可选上下文生成HR问答回复。
// 上下文超长触发的失败会以截半的上下文重试一次，
// 并在回复末尾附加截断说明。模型未配置或彻底失败时返回占位文本
func (s *Service) GenerateResponse(ctx context.Context, prompt, contextText string) string {
	if !s.completer.Available() {
		return constants.MsgServiceUnavailable
	}

	fullPrompt := prompt
	if contextText != "" {
		fullPrompt = fmt.Sprintf(`I need information to answer a question. Here is relevant information from our database:

%s

Based on the information above, please answer this question:
%s

If the answer isn't contained in the provided information, please say so and provide general knowledge about the topic.`, contextText, prompt)
	}

	response, err := s.completer.Complete(ctx, systemHRAssistant, fullPrompt, responseMaxTokens, responseTemperature)
	if err == nil {
		return response
	}

	logger.Warn().Err(err).Msg("生成回复失败")

	if !llm.IsContextLengthError(err) {
		return fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}

	// 上下文超长：截半重试一次
	truncatedContext := ""
	if contextText != "" {
		truncatedContext = contextText[:len(contextText)/2] + "...[additional information omitted]..."
	}
	concisePrompt := fmt.Sprintf(`I need to answer this question: %s

Here is some partial information (truncated due to length):
%s

Please answer the question based on the available information. If the information seems incomplete, please mention that.`, prompt, truncatedContext)

	retryResponse, retryErr := s.completer.Complete(ctx, systemHRAssistantShort, concisePrompt, retryMaxTokens, retryTemperature)
	if retryErr != nil {
		logger.Warn().Err(retryErr).Msg("截断上下文重试仍然失败")
		return "I'm sorry, but I couldn't process your request due to the large amount of context information. Could you please ask a more specific question or break it down into smaller parts?"
	}

	return retryResponse + truncatedContextSuffix
}

// GenerateInterviewQuestions 针对岗位描述生成面试问题列表
func (s *Service) GenerateInterviewQuestions(ctx context.Context, positionDescription, difficulty string, count int, categories []string) []string {
	if !s.completer.Available() {
		return []string{constants.MsgServiceUnavailable}
	}

	categoriesStr := "general"
	if len(categories) > 0 {
		categoriesStr = strings.Join(categories, ", ")
	}

	prompt := fmt.Sprintf(`Generate %d %s difficulty interview questions for the following position:

Position Description: %s

Categories: %s

Output only the questions without numbering or additional text.`, count, difficulty, positionDescription, categoriesStr)

	response, err := s.completer.Complete(ctx, systemQuestionGenerator, prompt, questionsMaxTokens, responseTemperature)
	if err != nil {
		logger.Warn().Err(err).Msg("生成面试问题失败")
		return []string{fmt.Sprintf("Sorry, I encountered an error: %v", err)}
	}

	var questions []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		if q := strings.TrimSpace(line); q != "" {
			questions = append(questions, q)
		}
	}
	if count > 0 && len(questions) > count {
		questions = questions[:count]
	}
	return questions
}
