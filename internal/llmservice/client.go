package llmservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"product-docs-rag/internal/config"
	"product-docs-rag/internal/models"
)

const (
	SearchToolName = "search_documents"

	defaultMaxRounds = 4

	systemPrompt = `You are a contact center assistant for a bank's business customers.
Answer questions about banking products using only the information returned by the ` + SearchToolName + ` tool.
Always call the tool before answering a product question. Pass the product name the customer mentions (or an empty string if none) and a short description of what they want to know.
If the tool finds nothing, say so and ask the customer to rephrase. Answer in the customer's language.`
)

// NewChatModel builds the chat client selected by cfg.Provider.
func NewChatModel(cfg *config.LLMConfig) (llms.Model, error) {
	log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Str("base_url", cfg.BaseURL).Msg("Creating chat model")

	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer "))}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return llm, nil
	case config.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("init ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("%w: unknown chat provider %q", models.ErrConfiguration, cfg.Provider)
	}
}

// DocumentSearcher is the retrieval side of the assistant.
type DocumentSearcher interface {
	Retrieve(ctx context.Context, productHint, query string) string
}

// SearchTool describes search_documents to the model.
func SearchTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        SearchToolName,
			Description: "Search the bank's product manuals for information relevant to a customer question.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"product": map[string]any{
						"type":        "string",
						"description": "Banking product the question is about, e.g. DAP or Tarjetas de Crédito. Empty if unknown.",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "What the customer wants to know.",
					},
				},
				"required": []string{"product", "query"},
			},
		},
	}
}

type searchArgs struct {
	Product string `json:"product"`
	Query   string `json:"query"`
}

// Assistant answers one question at a time, letting the model call
// search_documents as often as it needs within MaxRounds.
type Assistant struct {
	llm       llms.Model
	searcher  DocumentSearcher
	MaxRounds int
}

func NewAssistant(llm llms.Model, searcher DocumentSearcher) *Assistant {
	return &Assistant{llm: llm, searcher: searcher, MaxRounds: defaultMaxRounds}
}

func (a *Assistant) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", models.ErrEmptyQuery
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}
	tools := []llms.Tool{SearchTool()}

	for round := 0; round < a.MaxRounds; round++ {
		resp, err := a.llm.GenerateContent(ctx, messages, llms.WithTools(tools))
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("model returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		messages = append(messages, toolCallMessage(choice.ToolCalls))
		for _, call := range choice.ToolCalls {
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{a.runTool(ctx, call)},
			})
		}
	}
	return "", fmt.Errorf("no final answer after %d rounds", a.MaxRounds)
}

func toolCallMessage(calls []llms.ToolCall) llms.MessageContent {
	parts := make([]llms.ContentPart, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, call)
	}
	return llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts}
}

func (a *Assistant) runTool(ctx context.Context, call llms.ToolCall) llms.ToolCallResponse {
	resp := llms.ToolCallResponse{ToolCallID: call.ID}
	if call.FunctionCall == nil {
		resp.Content = fmt.Sprintf("tool call %s has no function", call.ID)
		return resp
	}
	resp.Name = call.FunctionCall.Name

	if call.FunctionCall.Name != SearchToolName {
		log.Warn().Str("tool", call.FunctionCall.Name).Msg("Model called an unknown tool")
		resp.Content = fmt.Sprintf("unknown tool %q", call.FunctionCall.Name)
		return resp
	}

	var args searchArgs
	if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
		log.Warn().Err(err).Str("arguments", call.FunctionCall.Arguments).Msg("Invalid tool arguments")
		resp.Content = models.FailureMessage
		return resp
	}

	log.Info().Str("product", args.Product).Str("query", args.Query).Msg("Searching documents")
	resp.Content = a.searcher.Retrieve(ctx, args.Product, args.Query)
	return resp
}
