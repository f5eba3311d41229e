/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package teams_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Seednode/eventbox/internal/mocks"
	"github.com/Seednode/eventbox/internal/roster"
	"github.com/Seednode/eventbox/internal/teams"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func people(n int) []roster.Participant {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Person %d", i+1)
	}

	r := roster.New()
	r.AddNames(names)

	return r.Participants()
}

func sizes(ts []teams.Team) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = len(t.Members)
	}

	return out
}

func TestClampGroupSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		size  int
		count int
		want  int
	}{
		{"within_range", 3, 10, 3},
		{"above_count", 12, 5, 5},
		{"below_minimum", 1, 10, 2},
		{"zero", 0, 10, 2},
		{"negative", -4, 10, 2},
		{"single_participant", 3, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, teams.ClampGroupSize(tt.size, tt.count))
		})
	}
}

func TestGenerate_SevenByThree(t *testing.T) {
	req := require.New(t)

	ts := teams.Generate(people(7), 3, rand.New(rand.NewPCG(7, 3)))

	req.Equal([]int{3, 3, 1}, sizes(ts))
	for i, team := range ts {
		req.Equal(fmt.Sprintf("Group %d", i+1), team.Name)
		req.Empty(team.Icebreaker)
		req.NotEmpty(team.ID)
	}
}

func TestGenerate_PartitionProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))

	for n := 1; n <= 25; n++ {
		for g := 2; g <= 8; g++ {
			input := people(n)
			ts := teams.Generate(input, g, rng)

			effective := teams.ClampGroupSize(g, n)
			want := (n + effective - 1) / effective
			require.Len(t, ts, want, "n=%d g=%d", n, g)

			seen := make(map[string]int)
			for i, team := range ts {
				require.GreaterOrEqual(t, len(team.Members), 1)
				require.LessOrEqual(t, len(team.Members), effective)
				if i < len(ts)-1 {
					require.Len(t, team.Members, effective)
				}
				for _, m := range team.Members {
					seen[m.ID]++
				}
			}

			require.Len(t, seen, n)
			for _, p := range input {
				require.Equal(t, 1, seen[p.ID], "n=%d g=%d", n, g)
			}
		}
	}
}

func TestGenerate_EmptyInput(t *testing.T) {
	require.Nil(t, teams.Generate(nil, 3, nil))
}

func TestGenerate_DoesNotReorderInput(t *testing.T) {
	input := people(10)
	before := append([]roster.Participant(nil), input...)

	teams.Generate(input, 3, nil)

	require.Equal(t, before, input)
}

func TestGenerate_ShuffleIsUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	input := people(3)

	// Count which participant lands first across many runs; a comparator
	// based shuffle skews this heavily.
	const runs = 30000
	first := make(map[string]int)
	for range runs {
		ts := teams.Generate(input, 3, rng)
		first[ts[0].Members[0].ID]++
	}

	for _, p := range input {
		require.InDelta(t, runs/3, first[p.ID], runs/30)
	}
}

func TestEnhance_UsesGeneratedIdentities(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockIdentityGenerator(ctrl)

	input := teams.Generate(people(6), 2, nil)

	gen.EXPECT().
		GenerateTeamIdentities(gomock.Any(), 3).
		Return([]teams.Identity{
			{Name: "Falcons", Icebreaker: "Best trip?"},
			{Name: "Otters", Icebreaker: "First job?"},
			{Name: "Comets", Icebreaker: "Favorite snack?"},
		}, nil).
		Times(1)

	out := teams.Enhance(context.Background(), input, gen)

	req.Len(out, 3)
	req.Equal("Falcons", out[0].Name)
	req.Equal("First job?", out[1].Icebreaker)
	req.Equal("Comets", out[2].Name)
	for i := range out {
		req.Equal(input[i].ID, out[i].ID)
		req.Equal(input[i].Members, out[i].Members)
	}

	// Input is untouched.
	req.Equal("Group 1", input[0].Name)
	req.Empty(input[0].Icebreaker)
}

func TestEnhance_FallsBackOnFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockIdentityGenerator(ctrl)

	input := teams.Generate(people(7), 3, nil)

	gen.EXPECT().
		GenerateTeamIdentities(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("network unreachable"))

	out := teams.Enhance(context.Background(), input, gen)

	req.Len(out, 3)
	for i, team := range out {
		req.Equal(fmt.Sprintf("Team %d", i+1), team.Name)
		req.Equal(teams.FallbackIcebreaker, team.Icebreaker)
	}
}

func TestEnhance_FillsShortOrBlankResponses(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockIdentityGenerator(ctrl)

	input := teams.Generate(people(8), 2, nil)

	gen.EXPECT().
		GenerateTeamIdentities(gomock.Any(), 4).
		Return([]teams.Identity{
			{Name: "Falcons", Icebreaker: "Best trip?"},
			{Name: "  ", Icebreaker: "First job?"},
		}, nil)

	out := teams.Enhance(context.Background(), input, gen)

	req.Equal("Falcons", out[0].Name)
	req.Equal("Team 2", out[1].Name)
	req.Equal("First job?", out[1].Icebreaker)
	req.Equal("Team 3", out[2].Name)
	req.Equal(teams.FallbackIcebreaker, out[3].Icebreaker)
	for _, team := range out {
		req.NotEmpty(team.Name)
		req.NotEmpty(team.Icebreaker)
	}
}

func TestEnhance_NilGeneratorAndEmptyInput(t *testing.T) {
	out := teams.Enhance(context.Background(), teams.Generate(people(4), 2, nil), nil)
	require.Equal(t, "Team 2", out[1].Name)

	require.Nil(t, teams.Enhance(context.Background(), nil, nil))
}
