// Package aiclient wraps the hosted AI gateway (an OpenAI-compatible
// chat-completions API) behind the three operations this service
// delegates to it: advisory analysis, assistant chat, and translation.
// OCR and language understanding are never performed locally.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/formvault/formvault/internal/apperr"
	"github.com/formvault/formvault/internal/models"
)

const assistantSystemPrompt = `You are a helpful AI assistant for the FormVault filling system. Your role is to:

1. Help users understand their extracted document data
2. Assist with form filling by suggesting values from their verified data
3. Answer questions about document types and required fields
4. Provide guidance on data verification
5. Help identify potential errors or inconsistencies in data
6. Suggest corrections for common mistakes

Be concise, helpful, and friendly. If you're suggesting data to fill in a form, be clear about which field it's for.`

// Client calls the hosted AI gateway.
type Client struct {
	api            *openai.Client
	chatModel      string
	extractModel   string
	translateModel string
}

// Config holds gateway connection settings.
type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	ExtractModel   string
	TranslateModel string
	Timeout        time.Duration
}

// New creates a gateway client.
func New(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		api:            openai.NewClientWithConfig(oc),
		chatModel:      cfg.ChatModel,
		extractModel:   cfg.ExtractModel,
		translateModel: cfg.TranslateModel,
	}
}

// Chat sends an assistant message with optional context and the user's
// vault data appended to the system prompt, and returns the reply.
func (c *Client) Chat(ctx context.Context, message, contextNote string, vault []models.VaultItem) (string, error) {
	system := assistantSystemPrompt + vaultContext(vault)
	if contextNote == "" {
		contextNote = "General assistance"
	}
	system += "\n\nCurrent context: " + contextNote

	return c.complete(ctx, c.chatModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
}

// Advise requests advisory warnings for a form. The caller treats any
// error as "advisory skipped"; nothing here is fatal.
func (c *Client) Advise(ctx context.Context, message, contextNote string) (string, error) {
	return c.Chat(ctx, message, contextNote, nil)
}

// Translate translates text to the target language.
func (c *Client) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, error) {
	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}
	_ = sourceLanguage // the gateway model detects the source itself

	system := fmt.Sprintf(`You are a professional translator. Translate the given text accurately to %s.

Rules:
- Preserve the meaning and context
- Keep proper nouns, names, and technical terms as-is when appropriate
- Maintain formatting and structure
- Only return the translated text, no explanations`, targetLanguage)

	out, err := c.complete(ctx, c.translateModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Translate this to %s:\n\n%s", targetLanguage, text)},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", mapGatewayErr(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("aiclient: empty response from gateway")
	}
	return resp.Choices[0].Message.Content, nil
}

// mapGatewayErr converts gateway HTTP failures into the app error
// taxonomy so handlers can pick status codes without importing openai.
func mapGatewayErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("aiclient: %w", apperr.ErrRateLimited)
		case http.StatusPaymentRequired:
			return fmt.Errorf("aiclient: %w", apperr.ErrCreditsExhausted)
		}
	}
	return fmt.Errorf("aiclient: gateway call failed: %w", err)
}

// vaultContext renders the user's vault grouped by category for the
// assistant system prompt. Empty vault yields an empty string.
func vaultContext(vault []models.VaultItem) string {
	if len(vault) == 0 {
		return ""
	}
	grouped := make(map[string][]string)
	for _, item := range vault {
		grouped[item.Category] = append(grouped[item.Category], fmt.Sprintf("- %s: %s", item.FieldName, item.FieldValue))
	}
	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("\n\nUser's verified data from their vault:\n")
	for _, c := range categories {
		b.WriteString("\n" + strings.ToUpper(c) + ":\n" + strings.Join(grouped[c], "\n"))
	}
	return b.String()
}
