/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/eventbox/internal/teams"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	text     string
	err      error
	model    string
	prompt   string
	config   *genai.GenerateContentConfig
	deadline bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	_, f.deadline = ctx.Deadline()
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}

	if f.err != nil {
		return nil, f.err
	}

	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: f.text}},
			},
		}},
	}, nil
}

func TestGemini_GenerateTeamIdentities(t *testing.T) {
	req := require.New(t)
	fake := &fakeModels{text: `[{"name":"Falcons","icebreaker":"Best trip?"},{"name":"Otters","icebreaker":"First job?"}]`}
	g := newGemini(fake, "", 5*time.Second)

	got, err := g.GenerateTeamIdentities(context.Background(), 2)
	req.NoError(err)
	req.Equal([]teams.Identity{
		{Name: "Falcons", Icebreaker: "Best trip?"},
		{Name: "Otters", Icebreaker: "First job?"},
	}, got)

	req.Equal(DefaultModel, fake.model)
	req.True(strings.HasPrefix(fake.prompt, "Generate 2 creative"))
	req.Equal("application/json", fake.config.ResponseMIMEType)
	req.Equal(genai.TypeArray, fake.config.ResponseSchema.Type)
	req.ElementsMatch([]string{"name", "icebreaker"}, fake.config.ResponseSchema.Items.Required)
	req.True(fake.deadline)
}

func TestGemini_NoTimeoutLeavesContextAlone(t *testing.T) {
	fake := &fakeModels{text: `[]`}
	g := newGemini(fake, "custom-model", 0)

	_, err := g.GenerateTeamIdentities(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, fake.deadline)
	require.Equal(t, "custom-model", fake.model)
}

func TestGemini_Errors(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		boom := errors.New("connection reset")
		g := newGemini(&fakeModels{err: boom}, "", 0)

		_, err := g.GenerateTeamIdentities(context.Background(), 3)
		require.ErrorIs(t, err, boom)
	})

	t.Run("malformed", func(t *testing.T) {
		g := newGemini(&fakeModels{text: `{"name": "not a list"`}, "", 0)

		_, err := g.GenerateTeamIdentities(context.Background(), 3)
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty", func(t *testing.T) {
		g := newGemini(&fakeModels{text: "  "}, "", 0)

		_, err := g.GenerateTeamIdentities(context.Background(), 3)
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestGemini_ZeroCountSkipsCall(t *testing.T) {
	fake := &fakeModels{err: errors.New("should not be called")}
	g := newGemini(fake, "", 0)

	got, err := g.GenerateTeamIdentities(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Empty(t, fake.model)
}

func TestNew_WithoutKeyIsOffline(t *testing.T) {
	gen, err := New(context.Background(), "", "", 0)
	require.NoError(t, err)
	require.IsType(t, Offline{}, gen)

	_, err = gen.GenerateTeamIdentities(context.Background(), 2)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOffline_FallsBackThroughEnhance(t *testing.T) {
	ts := []teams.Team{{ID: "a", Name: "Group 1"}, {ID: "b", Name: "Group 2"}}

	out := teams.Enhance(context.Background(), ts, Offline{})

	require.Equal(t, "Team 1", out[0].Name)
	require.Equal(t, teams.FallbackIcebreaker, out[1].Icebreaker)
}
