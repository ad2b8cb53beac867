package advisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lkane/hearthwatch/internal/models"
)

// Narrator turns the rule-based recommendation into a friendlier paragraph
// using OpenAI. It is an optional cosmetic layer: the rule engine stays
// authoritative and the dashboard works without it.
type Narrator struct {
	client openai.Client
	model  string
}

// NewNarrator creates a narrator, reading OPENAI_API_KEY for authentication.
func NewNarrator() (*Narrator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Narrator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Narrate expands a recommendation into two or three sentences of household
// advice grounded in the actual reading.
func (n *Narrator) Narrate(ctx context.Context, predictedCO2 float64, recommendation string, r models.Reading) (string, error) {
	var active []string
	for _, a := range models.ApplianceOrder {
		if w := r.AppliancePower[a]; w > 0 {
			active = append(active, fmt.Sprintf("%s %.0fW", a, w))
		}
	}

	prompt := fmt.Sprintf(
		"Predicted CO2 for the next 15 minutes: %.4f kg.\nActive appliances: %s.\nWeather: %.1fC, %.0f%% humidity, %.1fmm rain.\nRule-based advisory: %q.\n\nRewrite the advisory as two short, friendly sentences for a household dashboard. Keep any appliance it names. No emoji.",
		predictedCO2, strings.Join(active, ", "), r.TempC, r.HumidityPct, r.RainMM, recommendation)

	resp, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: n.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are the advisory voice of a home energy dashboard."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no narrative returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
