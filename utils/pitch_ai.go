package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"startupops/config"
	"startupops/models"
)

// Pitch material kinds the generator knows how to prompt for.
const (
	PitchElevator    = "elevator"
	PitchDeckOutline = "deck_outline"
	PitchOneLiner    = "one_liner"
)

// Delay table for rate-limited upstream calls. Its length is the attempt
// budget: only rate-limit-class errors are retried, everything else
// propagates immediately.
var pitchRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// NewAIClient builds a Gemini client from configuration.
func NewAIClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
}

// ValidPitchKind reports whether kind names a supported pitch material.
func ValidPitchKind(kind string) bool {
	switch kind {
	case PitchElevator, PitchDeckOutline, PitchOneLiner:
		return true
	}
	return false
}

// BuildPitchPrompt assembles the generation prompt from the startup profile.
func BuildPitchPrompt(startup *models.Startup, kind string) string {
	var b strings.Builder
	switch kind {
	case PitchDeckOutline:
		b.WriteString("Write a slide-by-slide pitch deck outline for the following startup.\n")
	case PitchOneLiner:
		b.WriteString("Write a single memorable one-liner describing the following startup.\n")
	default:
		b.WriteString("Write a 60-second elevator pitch for the following startup.\n")
	}
	fmt.Fprintf(&b, "Name: %s\n", startup.Name)
	fmt.Fprintf(&b, "Stage: %s\n", startup.Stage)
	fmt.Fprintf(&b, "Problem: %s\n", startup.Problem)
	fmt.Fprintf(&b, "Solution: %s\n", startup.Solution)
	fmt.Fprintf(&b, "Market: %s\n", startup.Market)
	return b.String()
}

// GeneratePitch runs one generation against the configured model, retrying
// rate-limited calls with exponential backoff.
func GeneratePitch(ctx context.Context, client *genai.Client, prompt string) (string, error) {
	gen := func(ctx context.Context, prompt string) (string, error) {
		return generateText(ctx, client, config.AppConfig.GeminiModel, prompt)
	}
	return generateWithRetry(ctx, gen, prompt)
}

func generateText(ctx context.Context, client *genai.Client, model, prompt string) (string, error) {
	m := client.GenerativeModel(model)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if resp != nil {
		for _, c := range resp.Candidates {
			if c == nil || c.Content == nil {
				continue
			}
			for _, p := range c.Content.Parts {
				if t, ok := p.(genai.Text); ok {
					b.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func generateWithRetry(ctx context.Context, gen generateFunc, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < len(pitchRetryDelays); attempt++ {
		out, err := gen(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err

		if attempt == len(pitchRetryDelays)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pitchRetryDelays[attempt]):
		}
	}
	return "", fmt.Errorf("pitch generation failed after %d attempts: %w", len(pitchRetryDelays), lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota")
}
