/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package teams partitions participants into fixed-size teams and decorates
// them with names and icebreakers from a text generator.
package teams

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/Seednode/eventbox/internal/roster"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	MinGroupSize       = 2
	DefaultGroupSize   = 3
	FallbackIcebreaker = "What's your favorite hobby?"
)

type Team struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Members    []roster.Participant `json:"members"`
	Icebreaker string               `json:"icebreaker,omitempty"`
}

// Identity is a generated name and icebreaker for one team.
type Identity struct {
	Name       string `json:"name"`
	Icebreaker string `json:"icebreaker"`
}

//go:generate mockgen -destination=../mocks/identity_generator.go -package=mocks github.com/Seednode/eventbox/internal/teams IdentityGenerator

// IdentityGenerator produces count team identities, in order.
type IdentityGenerator interface {
	GenerateTeamIdentities(ctx context.Context, count int) ([]Identity, error)
}

// ClampGroupSize bounds size to the participant count, but never below MinGroupSize.
func ClampGroupSize(size, count int) int {
	if size > count {
		size = count
	}
	if size < MinGroupSize {
		size = MinGroupSize
	}

	return size
}

// Generate shuffles participants uniformly and slices them into consecutive
// teams of groupSize; the last team holds the remainder.
func Generate(participants []roster.Participant, groupSize int, rng *rand.Rand) []Team {
	if len(participants) == 0 {
		return nil
	}

	groupSize = ClampGroupSize(groupSize, len(participants))

	shuffled := make([]roster.Participant, len(participants))
	copy(shuffled, participants)

	if rng == nil {
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	} else {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}

	return lo.Map(lo.Chunk(shuffled, groupSize), func(members []roster.Participant, i int) Team {
		return Team{
			ID:      uuid.NewString(),
			Name:    fmt.Sprintf("Group %d", i+1),
			Members: members,
		}
	})
}

// Enhance returns a copy of teams with names and icebreakers taken from gen,
// matched by position. Missing or blank entries, and any generator failure,
// fall back to "Team N" and FallbackIcebreaker.
func Enhance(ctx context.Context, teams []Team, gen IdentityGenerator) []Team {
	if len(teams) == 0 {
		return nil
	}

	var identities []Identity

	if gen != nil {
		var err error

		identities, err = gen.GenerateTeamIdentities(ctx, len(teams))
		if err != nil {
			slog.Warn("team identity generation failed, using fallback names",
				"teams", len(teams),
				"error", err,
			)
			identities = nil
		}
	}

	out := make([]Team, len(teams))
	for i, team := range teams {
		team.Name = fmt.Sprintf("Team %d", i+1)
		team.Icebreaker = FallbackIcebreaker

		if i < len(identities) {
			if name := strings.TrimSpace(identities[i].Name); name != "" {
				team.Name = name
			}
			if icebreaker := strings.TrimSpace(identities[i].Icebreaker); icebreaker != "" {
				team.Icebreaker = icebreaker
			}
		}

		out[i] = team
	}

	return out
}
