package types

// Section 表示文档中一个逻辑章节（如"Education"、"Skills"）
type Section struct {
	Title   string // 章节标题
	Content string // 章节内容
}

// Chunk 表示用于向量索引的重叠文本块
type Chunk struct {
	Text string
}

// DocumentMatch 是向量库检索结果的规范化视图。
// 无论底层返回的是结构体字段式还是map式的payload，都在存储层边界统一成此类型。
type DocumentMatch struct {
	ID         string  // 向量点ID
	Score      float64 // 相似度分数
	Title      string  // 文档标题
	DocumentID int     // 原始文档ID，0表示缺失
	Text       string  // 文档文本内容
}

// ScoredSection 是打分后的章节，仅在一次上下文组装内部使用
type ScoredSection struct {
	Section
	Relevance   float64 // 与查询的相关性分数
	SourceTitle string  // 来源文档标题
	SourceID    int     // 来源文档ID
}

// AnalysisResult 简历结构化分析结果
type AnalysisResult struct {
	Skills          []string `json:"skills"`                // 技能列表，大小写不敏感去重，保留首次出现顺序
	ExperienceYears float64  `json:"experience_years"`      // 工作年限，多章节分析时取最大值而非求和
	Education       string   `json:"education"`             // 教育背景
	Summary         string   `json:"summary"`               // 职业摘要
	MatchScore      *int     `json:"match_score,omitempty"` // 与岗位的匹配分数 (0-100)，未提供岗位描述时为nil
}
