// package formatter renders catalog track lists for CLI output (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/desertthunder/streamtunes/internal/models"
)

// TracksToCSV converts a track list to CSV with columns: ID, Title, Artist, Genre, Duration, Plays
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "Duration", "Plays"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.User.Name,
			track.Genre,
			formatDuration(track.Duration),
			strconv.Itoa(track.PlayCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown converts a track list to a Markdown table under the given title.
func TracksToMarkdown(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "%d tracks\n\n", len(tracks))
	buf.WriteString("| # | Title | Artist | Genre | Duration | Plays |\n")
	buf.WriteString("|---|-------|--------|-------|----------|-------|\n")

	for i, track := range tracks {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %d |\n",
			i+1,
			track.Title,
			track.User.Name,
			track.Genre,
			formatDuration(track.Duration),
			track.PlayCount,
		)
	}

	return buf.Bytes()
}

// TracksToTable converts a track list to an aligned plain-text table.
func TracksToTable(tracks []models.Track) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "#\tTITLE\tARTIST\tGENRE\tDURATION\tPLAYS")
	for i, track := range tracks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			i+1,
			track.Title,
			track.User.Name,
			track.Genre,
			formatDuration(track.Duration),
			track.PlayCount,
		)
	}
	w.Flush()

	return buf.Bytes()
}

// formatDuration renders a duration in seconds as m:ss.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
