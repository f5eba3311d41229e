/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package roster holds the working list of event participants.
package roster

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Participant is a single named entrant. It is never mutated after creation.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SampleNames is the demo list offered to first-time users.
var SampleNames = []string{
	"Alice Thompson", "Bob Richards", "Charlie Davis", "Diana Prince",
	"Edward Norton", "Fiona Gallagher", "George Miller", "Hannah Abbott",
	"Ian Wright", "Julia Roberts", "Kevin Heart", "Laura Croft",
}

// Normalize returns the key used for duplicate detection.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Tokenize splits raw text on newlines and commas, trimming each token and
// dropping the empty ones.
func Tokenize(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tokens = append(tokens, t)
		}
	}

	return tokens
}

// Roster is an insertion-ordered participant set. It is not safe for
// concurrent use; the owning session serializes access.
type Roster struct {
	participants []Participant
}

func New() *Roster {
	return &Roster{}
}

// Add tokenizes raw and appends one participant per token.
func (r *Roster) Add(raw string) []Participant {
	return r.AddNames(Tokenize(raw))
}

// AddNames appends one participant per non-blank name.
func (r *Roster) AddNames(names []string) []Participant {
	var added []Participant

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		added = append(added, Participant{
			ID:   uuid.NewString(),
			Name: name,
		})
	}

	r.participants = append(r.participants, added...)

	return added
}

// Remove deletes the participant with the given id, reporting whether it was present.
func (r *Roster) Remove(id string) bool {
	for i, p := range r.participants {
		if p.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)

			return true
		}
	}

	return false
}

func (r *Roster) Clear() {
	r.participants = nil
}

// Dedup keeps the first participant seen for each normalized name and
// returns how many were removed.
func (r *Roster) Dedup() int {
	before := len(r.participants)

	r.participants = lo.UniqBy(r.participants, func(p Participant) string {
		return Normalize(p.Name)
	})

	return before - len(r.participants)
}

// DuplicateNames lists, in sorted order, the normalized names that occur
// more than once. The roster is left untouched.
func (r *Roster) DuplicateNames() []string {
	counts := lo.CountValuesBy(r.participants, func(p Participant) string {
		return Normalize(p.Name)
	})

	dups := make([]string, 0)
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)

	return dups
}

// Participants returns a copy of the current set in insertion order.
func (r *Roster) Participants() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)

	return out
}

func (r *Roster) Len() int {
	return len(r.participants)
}

// Names returns the participant names in insertion order.
func Names(participants []Participant) []string {
	return lo.Map(participants, func(p Participant, _ int) string {
		return p.Name
	})
}
