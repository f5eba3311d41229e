/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package teams

import (
	"bytes"
	"testing"
	"time"

	"github.com/Seednode/eventbox/internal/roster"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	req := require.New(t)

	ts := []Team{
		{
			Name: "Falcons",
			Members: []roster.Participant{
				{ID: "1", Name: "Ann"},
				{ID: "2", Name: `Bob "B" Ray`},
			},
			Icebreaker: "Best trip, ever?",
		},
		{
			Name:    "Group 2",
			Members: []roster.Participant{{ID: "3", Name: "Cara"}},
		},
	}

	var buf bytes.Buffer
	req.NoError(WriteCSV(&buf, ts))

	req.Equal(
		"Team Name,Member Name,Icebreaker\n"+
			`"Falcons","Ann","Best trip, ever?"`+"\n"+
			`"Falcons","Bob ""B"" Ray","Best trip, ever?"`+"\n"+
			`"Group 2","Cara","N/A"`+"\n",
		buf.String(),
	)
}

func TestWriteCSV_NoTeams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, "Team Name,Member Name,Icebreaker\n", buf.String())
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)

	require.Equal(t, "grouping_result_2026-03-07.csv", ExportFilename(at))
}
