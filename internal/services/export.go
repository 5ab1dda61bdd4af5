package services

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"eventinvites/internal/domain"
)

var guestCSVHeader = []string{"Guest Name", "Is Test", "IP Address", "User Agent", "Created At"}

// writeGuestsCSV writes RFC 4180 CSV with every field quoted and embedded quotes doubled.
func writeGuestsCSV(w io.Writer, guests []*domain.Guest) error {
	bw := bufio.NewWriter(w)
	writeRow := func(fields ...string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteString("\r\n")
	}

	writeRow(guestCSVHeader...)
	for _, g := range guests {
		writeRow(
			g.Name,
			strconv.FormatBool(g.IsTest),
			g.IPAddress,
			g.UserAgent,
			g.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return bw.Flush()
}
