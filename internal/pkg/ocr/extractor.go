package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ReceiptData is the structured result of reading a receipt image.
type ReceiptData struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Extractor reads structured expense data off an uploaded receipt.
type Extractor interface {
	Extract(ctx context.Context, file io.Reader, filename string) (ReceiptData, error)
}

// ============= OpenAI implementation =============

type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, model string) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const extractionPrompt = `Read the attached receipt and return a JSON object with exactly these fields:
{
  "amount": <total amount as a number>,
  "description": "<short description of the purchase>",
  "category": "<one of: Meals, Travel, Lodging, Office Supplies, Other>"
}
Return only the JSON object.`

func (e *OpenAIExtractor) Extract(ctx context.Context, file io.Reader, filename string) (ReceiptData, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return ReceiptData{}, fmt.Errorf("failed to read receipt file: %w", err)
	}

	imageURL := fmt.Sprintf("data:%s;base64,%s", contentTypeFor(filename), base64.StdEncoding.EncodeToString(raw))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert at reading purchase receipts. Extract structured data from receipt images.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Error("Failed to call OpenAI API", "error", err)
		return ReceiptData{}, fmt.Errorf("failed to extract receipt data: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ReceiptData{}, fmt.Errorf("no response from OpenAI")
	}

	var data ReceiptData
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		slog.Error("Failed to parse extraction result", "error", err, "content", content)
		return ReceiptData{}, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	slog.Info("Receipt data extracted", "amount", data.Amount, "category", data.Category)
	return data, nil
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(filename), ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// ============= Mock implementation =============

// MockExtractor returns fixed receipt data. Used in development and tests
// where no OpenAI credentials are available.
type MockExtractor struct{}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

func (e *MockExtractor) Extract(ctx context.Context, file io.Reader, filename string) (ReceiptData, error) {
	// Drain the reader so callers can treat both implementations alike
	if _, err := io.Copy(io.Discard, file); err != nil {
		return ReceiptData{}, fmt.Errorf("failed to read receipt file: %w", err)
	}

	return ReceiptData{
		Amount:      125.50,
		Description: "Mocked from receipt",
		Category:    "Meals",
	}, nil
}
