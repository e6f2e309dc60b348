package analyzer

import "fmt"

// 各阶段的系统提示词。输出语言跟随模型默认，提示词保持英文以获得
// 更稳定的JSON输出格式
const (
	systemResumeAnalyst     = "You are an expert HR professional who specializes in resume analysis."
	systemResumeAnalystJSON = "You are an expert HR professional who specializes in resume analysis. Output valid JSON only."
	systemSectionExtractor  = "You are an expert HR professional who extracts resume information. Output valid JSON only."
	systemSummaryWriter     = "You create concise professional summaries."
)

// 各阶段的补全token上限。必须有界，防止失控消耗
const (
	directMaxTokens    = 1000
	condensedMaxTokens = 800
	sectionMaxTokens   = 400
	condenseMaxTokens  = 150
)

// directAnalysisPrompt 直接分析整份简历的提示词；
// 给出岗位描述时追加技能匹配要求
func directAnalysisPrompt(documentText, positionDescription string) string {
	prompt := fmt.Sprintf(`Analyze the following resume and extract:
1. Key skills
2. Years of experience
3. Education
4. A brief summary of qualifications

Resume:
%s

Format your response as JSON with the following keys:
"skills" (array), "experience_years" (number), "education" (string), "summary" (string)`, documentText)

	if positionDescription != "" {
		prompt += fmt.Sprintf(`

Also compare the candidate's skills with the following position requirements and provide a match score from 0 to 100:

Position Requirements:
%s

Add a "match_score" key to your JSON response.`, positionDescription)
	}

	return prompt
}

// condensedAnalysisPrompt 压缩版简历的分析提示词
func condensedAnalysisPrompt(condensedText string) string {
	return fmt.Sprintf(`Analyze the following condensed resume and extract:
1. Key skills (as a list)
2. Years of experience (as a number)
3. Education details
4. A brief professional summary

Resume:
%s

Format your response as clean JSON without comments with these keys:
"skills" (array of strings),
"experience_years" (number),
"education" (string),
"summary" (string)`, condensedText)
}

func skillsSectionPrompt(sectionText string) string {
	return fmt.Sprintf(`Extract skills from this resume section:
%s

Format your response as clean JSON with one key:
"skills": [list of skills]`, sectionText)
}

func experienceSectionPrompt(sectionText string) string {
	return fmt.Sprintf(`Analyze this work experience section:
%s

Format your response as clean JSON with these keys:
"experience_years": (estimated total years of experience as a number)
"summary": (brief summary of the experience)`, sectionText)
}

func educationSectionPrompt(sectionText string) string {
	return fmt.Sprintf(`Extract education details from this section:
%s

Format your response as clean JSON with one key:
"education": (education details as text)`, sectionText)
}

func summarySectionPrompt(sectionText string) string {
	return fmt.Sprintf(`Create a professional summary from this section:
%s

Format your response as clean JSON with one key:
"summary": (professional summary as text)`, sectionText)
}

func genericSectionPrompt(sectionText string) string {
	return fmt.Sprintf(`Analyze this resume section and extract any relevant information:
%s

Format your response as clean JSON with these keys:
"skills": [any skills mentioned],
"experience_years": (any years mentioned or 0),
"education": (any education details or empty string),
"summary": (brief summary of this section)`, sectionText)
}

// condenseSummaryPrompt 对过长的合并摘要做一次二次压缩
func condenseSummaryPrompt(combinedSummary string) string {
	return fmt.Sprintf(`Summarize this resume information in a concise paragraph:
%s`, combinedSummary)
}
