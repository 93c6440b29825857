/*
Package ai provides optional Gemini-generated commentary on a freshly
published price circular. It is gated on an API key and is never fatal to a
run.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

type PriceObservation struct {
	Category string `json:"category"`
	Details  string `json:"details"`
}

type Commentary struct {
	Summary           []string           `json:"summary"`
	PriceObservations []PriceObservation `json:"price_observations"`
}

var systemInstruction = `
You are a commodities analyst covering the primary aluminium market in India.

You will be given the text of a newly published NALCO price circular for
product IE07 (Aluminium Ingot), together with the recent daily basic-price
series derived from earlier circulars.

Summarize what changed and place it in context. Every observation must be
tied to a number or a date from the provided data: the new basic price, the
absolute and percentage change from the previous level, how long the
previous level held, and any streak or reversal visible in the series.
Do not speculate beyond the provided data.

Use these categories for observations: "Price Change", "Trend", "Duration",
"Level".
`

// GenerateCommentary asks Gemini to summarize a circular against the recent
// daily series tail.
func GenerateCommentary(circularText string, recentSeries []string, apiKey string, modelName string) (*Commentary, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := fmt.Sprintf("New circular text:\n\n---\n%s\n---\n\nRecent daily basic prices (most recent last):\n%s",
		circularText, formatSeries(recentSeries))

	systemContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: systemInstruction},
		},
		Role: "system",
	}
	userContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
		},
		Role: "user",
	}

	contents := []*genai.Content{systemContent, userContent}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   getResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	respText := resp.Text()

	var commentary Commentary
	if err := json.Unmarshal([]byte(respText), &commentary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}

	return &commentary, nil
}

func formatSeries(lines []string) string {
	if len(lines) == 0 {
		return "(no prior data)"
	}
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func getResponseSchema() *genai.Schema {
	observationSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": {Type: genai.TypeString, Description: "One of: Price Change, Trend, Duration, Level."},
			"details":  {Type: genai.TypeString, Description: "A specific observation tied to a number or date."},
		},
		Required: []string{"category", "details"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "2-4 concise bullet points summarizing the circular.",
			},
			"price_observations": {
				Type:        genai.TypeArray,
				Items:       observationSchema,
				Description: "Quantified observations about the price move.",
			},
		},
		Required: []string{"summary", "price_observations"},
	}
}
