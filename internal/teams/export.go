/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package teams

import (
	"bufio"
	"io"
	"strings"
	"time"
)

const missingIcebreaker = "N/A"

// ExportFilename names a CSV export taken at t.
func ExportFilename(t time.Time) string {
	return "grouping_result_" + t.Format(time.DateOnly) + ".csv"
}

// WriteCSV writes one row per team member. Every field is quoted.
func WriteCSV(w io.Writer, teams []Team) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("Team Name,Member Name,Icebreaker\n"); err != nil {
		return err
	}

	for _, team := range teams {
		icebreaker := team.Icebreaker
		if icebreaker == "" {
			icebreaker = missingIcebreaker
		}

		for _, member := range team.Members {
			row := quote(team.Name) + "," + quote(member.Name) + "," + quote(icebreaker) + "\n"

			if _, err := bw.WriteString(row); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
