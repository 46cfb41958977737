// Package extraction implements receipt parsing through the Gemini model.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/velinov/fintrack/internal/domain"
)

const receiptPrompt = `You are a receipt parser for Bulgarian retail receipts.

Task:
- Parse the attached receipt image.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).

The JSON object must have these fields:
- "status": "success" or "failed"
- "data": object or null, with:
  - "merchant": string
  - "date": string in ISO format "YYYY-MM-DDT00:00:00Z" or null
  - "totalBgnCents": integer, the receipt total in BGN stotinki
  - "totalEurCents": integer, the total converted at 1 EUR = 1.95583 BGN
  - "category": string, one of: groceries, dining, transport, housing, utilities, health, entertainment, clothing, other
  - "items": array of {"name": string, "category": string, "bgnCents": integer, "eurCents": integer}

Rules:
- Amounts are integers in cents; never output fractional numbers.
- If the receipt is unreadable, set "status" to "failed" and "data" to null.
- Return ONLY valid raw JSON.
- Do NOT wrap the response in code fences.
- Do NOT use Markdown.
`

// GeminiExtractor implements usecase.ReceiptExtractor over the Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates an extractor bound to one model.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract sends the receipt image to the model and decodes its response.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*domain.ExtractionResult, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &result); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w", err)
	}

	return &result, nil
}

// cleanModelJSON strips Markdown fences the model sometimes emits despite
// instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
