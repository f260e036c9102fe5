package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const systemPrompt = `You are a voice-screening assistant for a Parkinsonian vocal biomarker analysis system.
You help users with:
- Understanding acoustic biomarkers (jitter, shimmer, HNR, pitch period entropy)
- Interpreting screening results and risk scores
- Recording technique and audio quality
- General questions about voice-based neurological screening

You are not a doctor and this system is a screening aid, not a diagnostic tool. Always remind users
that results must be confirmed by a clinician before any medical decision.
Provide helpful, accurate, and concise responses. Be technical when needed but explain complex concepts clearly.
Keep responses conversational and under 200 words unless more detail is specifically requested.`

type GeminiClient struct {
	client *genai.Client
	ctx    context.Context
}

func NewGeminiClient() (*GeminiClient, error) {
	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{
		client: client,
		ctx:    ctx,
	}, nil
}

func (g *GeminiClient) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleModel),
		Temperature:       genai.Ptr(float32(0.7)),
		TopP:              genai.Ptr(float32(0.8)),
		TopK:              genai.Ptr(float32(40)),
		MaxOutputTokens:   int32(300),
	}
}

func (g *GeminiClient) GenerateResponse(message string) (string, error) {
	userContent := genai.NewContentFromText(message, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(
		g.ctx,
		"gemini-2.5-flash",
		[]*genai.Content{userContent},
		g.generationConfig(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %v", err)
	}

	text := resp.Text()
	if text == "" {
		return "I'm sorry, I couldn't generate a response. Please try rephrasing your question.", nil
	}

	return strings.ReplaceAll(text, "*", ""), nil
}

// ExplainAssessment asks the model for a plain-language walkthrough of one
// screening result.
func (g *GeminiClient) ExplainAssessment(riskLabel string, riskScore float64, stage string, findings []string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Explain this voice screening result to the patient in plain language.\n")
	fmt.Fprintf(&sb, "Risk label: %s. Risk score: %.1f/100. Estimated stage: %s.\n", riskLabel, riskScore, stage)
	if len(findings) > 0 {
		sb.WriteString("Abnormal biomarkers: " + strings.Join(findings, "; ") + ".\n")
	} else {
		sb.WriteString("All screened biomarkers were within normal ranges.\n")
	}
	sb.WriteString("Explain what these measurements mean and what the patient should do next.")

	return g.GenerateResponse(sb.String())
}

// GenerateResponseStream generates a streaming response.
func (g *GeminiClient) GenerateResponseStream(message string, onChunk func(string) error) error {
	userContent := genai.NewContentFromText(message, genai.RoleUser)

	stream := g.client.Models.GenerateContentStream(
		g.ctx,
		"gemini-2.5-flash",
		[]*genai.Content{userContent},
		g.generationConfig(),
	)

	for resp, err := range stream {
		if err != nil {
			return fmt.Errorf("stream error: %v", err)
		}

		text := resp.Text()
		if text != "" {
			if err := onChunk(strings.ReplaceAll(text, "*", "")); err != nil {
				return fmt.Errorf("chunk callback error: %v", err)
			}
		}
	}

	return nil
}

func (g *GeminiClient) Close() error {
	// The client manages its own resources.
	return nil
}
