package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mmynk/outlate/internal/models"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const receiptPrompt = "You are a receipt parser for restaurant and bar receipts.\n\n" +
	"Task:\n" +
	"- Read every line item on the attached receipt photo.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"vendorName\": string (the business name, or \"\" if unreadable)\n" +
	"- \"items\": array of {\"name\": string, \"price\": number, \"quantity\": integer}\n" +
	"- \"subtotal\": number\n" +
	"- \"tax\": number\n" +
	"- \"tip\": number (0 if there is no tip line)\n" +
	"- \"total\": number\n\n" +
	"Rules:\n" +
	"- \"price\" is the UNIT price. A line \"2 x Beer 16.00\" is price 8.00, quantity 2.\n" +
	"- Amounts are plain decimal numbers in the receipt currency, without symbols.\n" +
	"- Fold service charges into \"tip\" and every tax line into \"tax\".\n" +
	"- Use 0 for any amount that is not printed.\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// generator is the part of genai.Models the extractor uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor extracts receipts with a Gemini model.
type GeminiExtractor struct {
	models generator
	model  string
}

// NewGeminiExtractor creates a client for the Gemini API. An empty apiKey
// falls back to the GEMINI_API_KEY / GOOGLE_API_KEY environment variables.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiExtractor(client.Models, model), nil
}

func newGeminiExtractor(g generator, model string) *GeminiExtractor {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiExtractor{models: g, model: model}
}

// Extract sends the image to the model and parses its JSON answer.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*models.OCRResponse, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			},
		},
	}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := e.models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("extract receipt: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("extract receipt: empty response from model")
	}

	var out models.OCRResponse
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("extract receipt: unmarshal JSON: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNoItems
	}
	return &out, nil
}

// cleanModelJSON strips Markdown fences and any chatter around the object
// when the model ignores the instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
