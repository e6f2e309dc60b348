package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"hr-agent-go/internal/config"
	"hr-agent-go/internal/constants"
	"hr-agent-go/internal/embedding"
	"hr-agent-go/internal/llm"
	"hr-agent-go/internal/logger"
	"hr-agent-go/internal/service"
	"hr-agent-go/internal/storage"
)

const usageText = `用法: hr-agent [flags] <command>

命令:
  chunk      将输入文本切分为带重叠的索引块
  sections   将输入文本按结构切分为章节
  analyze    对输入文档做结构化分析 (配合 --position 输出匹配分)
  index      将输入文档写入向量库 (需要 --id)
  search     语义检索相似文档 (需要 --query)
  ask        基于知识库回答问题 (需要 --query)
  questions  根据岗位描述生成面试问题

输入默认从stdin读取，或用 --file 指定文件。`

func main() {
	var (
		configPath string
		filePath   string
		position   string
		query      string
		title      string
		difficulty string
		docID      int
		count      int
		limit      int
	)

	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认按常见位置搜索config.yaml)")
	pflag.StringVarP(&filePath, "file", "f", "", "输入文本文件路径 (默认读stdin)")
	pflag.StringVarP(&position, "position", "p", "", "岗位描述，analyze时用于计算匹配分")
	pflag.StringVarP(&query, "query", "q", "", "检索/提问的查询文本")
	pflag.StringVarP(&title, "title", "t", "", "index时写入的文档标题")
	pflag.StringVar(&difficulty, "difficulty", "medium", "面试问题难度")
	pflag.IntVar(&docID, "id", 0, "文档ID")
	pflag.IntVar(&count, "count", 5, "生成的面试问题数量")
	pflag.IntVar(&limit, "limit", 0, "检索返回的最大结果数 (0表示使用配置默认值)")
	pflag.Parse()

	command := pflag.Arg(0)
	if command == "" {
		fmt.Fprintln(os.Stderr, usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	ctx := context.Background()

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer store.Close()

	svc := service.New(cfg, store, buildEmbedder(cfg), buildCompleter(cfg))

	if err := run(ctx, svc, command, runArgs{
		filePath:   filePath,
		position:   position,
		query:      query,
		title:      title,
		difficulty: difficulty,
		docID:      docID,
		count:      count,
		limit:      limit,
	}); err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("命令执行失败")
	}
}

type runArgs struct {
	filePath   string
	position   string
	query      string
	title      string
	difficulty string
	docID      int
	count      int
	limit      int
}

func run(ctx context.Context, svc *service.Service, command string, args runArgs) error {
	switch command {
	case "chunk":
		text, err := readInput(args.filePath)
		if err != nil {
			return err
		}
		return printJSON(svc.ChunkText(text))

	case "sections":
		text, err := readInput(args.filePath)
		if err != nil {
			return err
		}
		return printJSON(svc.SplitIntoSections(text))

	case "analyze":
		text, err := readInput(args.filePath)
		if err != nil {
			return err
		}
		return printJSON(svc.AnalyzeDocument(ctx, text, args.position))

	case "index":
		if args.docID <= 0 {
			return fmt.Errorf("index命令需要 --id 指定正整数文档ID")
		}
		text, err := readInput(args.filePath)
		if err != nil {
			return err
		}
		metadata := map[string]interface{}{
			"document_id": args.docID,
			"title":       args.title,
		}
		vectorID := svc.IndexDocument(ctx, args.docID, text, metadata)
		return printJSON(map[string]string{"vector_id": vectorID})

	case "search":
		if strings.TrimSpace(args.query) == "" {
			return fmt.Errorf("search命令需要 --query")
		}
		return printJSON(svc.SearchDocuments(ctx, args.query, args.limit))

	case "ask":
		if strings.TrimSpace(args.query) == "" {
			return fmt.Errorf("ask命令需要 --query")
		}
		matches := svc.SearchDocuments(ctx, args.query, args.limit)
		contextText, sources := svc.AssembleContext(args.query, matches)
		answer := svc.GenerateResponse(ctx, args.query, contextText)
		return printJSON(map[string]interface{}{
			"answer":  answer,
			"sources": sources,
		})

	case "questions":
		text, err := readInput(args.filePath)
		if err != nil {
			return err
		}
		questions := svc.GenerateInterviewQuestions(ctx, text, args.difficulty, args.count, nil)
		return printJSON(questions)

	default:
		fmt.Fprintln(os.Stderr, usageText)
		return fmt.Errorf("未知命令: %s", command)
	}
}

// buildEmbedder 在配置了API密钥时创建嵌入服务，否则返回
// 降级到零向量的空Provider
func buildEmbedder(cfg *config.Config) *embedding.Provider {
	dimensions := cfg.Aliyun.Embedding.Dimensions
	if dimensions <= 0 {
		dimensions = constants.EmbeddingDimensions
	}

	if cfg.Aliyun.APIKey == "" {
		logger.Warn().Msg("未配置阿里云API密钥，嵌入服务降级为零向量")
		return embedding.NewProvider(nil, dimensions)
	}

	embedder, err := embedding.NewAliyunEmbedder(embedding.Config{
		APIKey:     cfg.Aliyun.APIKey,
		Model:      cfg.Aliyun.Embedding.Model,
		Dimensions: dimensions,
		BaseURL:    cfg.Aliyun.Embedding.BaseURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("初始化嵌入服务失败，降级为零向量")
		return embedding.NewProvider(nil, dimensions)
	}
	logger.Info().Str("model", cfg.Aliyun.Embedding.Model).Msg("阿里云Embedder初始化成功")
	return embedding.NewProvider(embedder, dimensions)
}

// buildCompleter 在配置了API密钥时创建补全客户端，否则返回
// 不可用的客户端，分析和问答走占位结果
func buildCompleter(cfg *config.Config) *llm.CompletionClient {
	if cfg.Aliyun.APIKey == "" {
		logger.Warn().Msg("未配置阿里云API密钥，补全服务不可用")
		return llm.NewCompletionClient(nil)
	}

	chatModel, err := llm.NewAliyunQwenChatModel(cfg.Aliyun.APIKey, cfg.Aliyun.Model, cfg.Aliyun.APIURL)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化聊天模型失败，补全服务不可用")
		return llm.NewCompletionClient(nil)
	}
	logger.Info().Str("model", cfg.Aliyun.Model).Msg("阿里云Qwen聊天模型初始化成功")
	return llm.NewCompletionClient(chatModel)
}

func readInput(filePath string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("读取输入文件失败: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("读取stdin失败: %w", err)
	}
	return string(data), nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
