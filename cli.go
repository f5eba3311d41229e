/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Seednode/eventbox/internal/draw"
	"github.com/Seednode/eventbox/internal/roster"
	"github.com/Seednode/eventbox/internal/teams"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// readParticipants builds a roster from the named file, or stdin when no file is given.
func readParticipants(cmd *cobra.Command, cfg *Config, args []string, dedup bool) (*roster.Roster, error) {
	var in io.Reader = cmd.InOrStdin()

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()

		in = f
	}

	raw, err := readNameList(in, cfg.maxUpload)
	if err != nil {
		return nil, fmt.Errorf("reading names: %w", err)
	}

	r := roster.New()
	r.Add(raw)

	if dups := r.DuplicateNames(); len(dups) > 0 {
		if dedup {
			r.Dedup()
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: duplicate names: %v\n", dups)
		}
	}

	return r, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	return table
}

func newTeamsCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var (
		asCSV   bool
		dedup   bool
		enhance bool
		size    int
	)

	cmd := &cobra.Command{
		Use:   "teams [file]",
		Short: "Split a list of names into random teams.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readParticipants(cmd, cfg, args, dedup)
			if err != nil {
				return err
			}

			ts := teams.Generate(r.Participants(), size, nil)

			if enhance && len(ts) > 0 {
				gen, err := newIdentityGenerator(cmd.Context(), cfg)
				if err != nil {
					return err
				}

				ts = teams.Enhance(cmd.Context(), ts, gen)
			}

			if asCSV {
				return teams.WriteCSV(cmd.OutOrStdout(), ts)
			}

			table := newTable(cmd.OutOrStdout(), "Team", "Member", "Icebreaker")
			table.SetAutoMergeCells(true)
			for _, team := range ts {
				for _, member := range team.Members {
					table.Append([]string{team.Name, member.Name, team.Icebreaker})
				}
			}
			table.Render()

			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&asCSV, "csv", false, "print teams as CSV (env: EVENTBOX_CSV)")
	fs.BoolVar(&dedup, "dedup", false, "drop repeated names before grouping (env: EVENTBOX_DEDUP)")
	fs.BoolVar(&enhance, "enhance", false, "generate team names and icebreakers (env: EVENTBOX_ENHANCE)")
	fs.IntVarP(&size, "size", "s", teams.DefaultGroupSize, "members per team (env: EVENTBOX_SIZE)")

	bindEnv(v, fs)

	return cmd
}

func newDrawCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	var (
		allowDuplicates bool
		count           int
		dedup           bool
	)

	cmd := &cobra.Command{
		Use:   "draw [file]",
		Short: "Draw random winners from a list of names.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readParticipants(cmd, cfg, args, dedup)
			if err != nil {
				return err
			}

			engine := draw.New(nil)
			engine.Reset(r.Participants())
			engine.SetAllowDuplicates(allowDuplicates)

			var drawn []roster.Participant
			for range count {
				winner, ok := engine.DrawNow()
				if !ok {
					break
				}
				drawn = append(drawn, winner)
			}

			if len(drawn) < count {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: only %d of %d winners could be drawn\n", len(drawn), count)
			}

			table := newTable(cmd.OutOrStdout(), "#", "Winner")
			for i, winner := range drawn {
				table.Append([]string{strconv.Itoa(i + 1), winner.Name})
			}
			table.Render()

			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&allowDuplicates, "allow-duplicates", false, "let the same person win more than once (env: EVENTBOX_ALLOW_DUPLICATES)")
	fs.IntVarP(&count, "count", "n", 1, "number of winners to draw (env: EVENTBOX_COUNT)")
	fs.BoolVar(&dedup, "dedup", false, "drop repeated names before drawing (env: EVENTBOX_DEDUP)")

	bindEnv(v, fs)

	return cmd
}
