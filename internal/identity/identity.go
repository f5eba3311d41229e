/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package identity generates team names and icebreakers with Gemini.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/eventbox/internal/teams"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-flash-preview"

var (
	ErrUnavailable = errors.New("text generation is not configured")
	ErrMalformed   = errors.New("malformed text generation response")
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for team identities using a JSON response schema.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// Offline is used when no API key is configured.
type Offline struct{}

func (Offline) GenerateTeamIdentities(context.Context, int) ([]teams.Identity, error) {
	return nil, ErrUnavailable
}

// New returns a Gemini generator when apiKey is set, and Offline otherwise.
// A zero timeout leaves the request bounded only by ctx.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (teams.IdentityGenerator, error) {
	if apiKey == "" {
		return Offline{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return newGemini(client.Models, model, timeout), nil
}

func newGemini(models contentGenerator, model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = DefaultModel
	}

	return &Gemini{
		models:  models,
		model:   model,
		timeout: timeout,
	}
}

func prompt(count int) string {
	return fmt.Sprintf("Generate %d creative, professional, and fun team names for a corporate event. "+
		"Also provide a unique icebreaker question for each team.", count)
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":       {Type: genai.TypeString},
				"icebreaker": {Type: genai.TypeString},
			},
			Required: []string{"name", "icebreaker"},
		},
	}
}

func (g *Gemini) GenerateTeamIdentities(ctx context.Context, count int) ([]teams.Identity, error) {
	if count <= 0 {
		return nil, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt(count)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generating team identities: %w", err)
	}

	return decode(resp.Text())
}

func decode(text string) ([]teams.Identity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	var identities []teams.Identity
	if err := json.Unmarshal([]byte(text), &identities); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return identities, nil
}
