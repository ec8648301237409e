package mailbox

import (
	"fmt"
	"strings"
	"time"
)

// FallbackName is the name of attachments in an unknown naming scheme.
const FallbackName = "attachment_confirmationNote.pdf"

// AttachmentName renames a statement attachment to
// "YYYY-MM-DD_<id>_confirmationNote.pdf".
//
// Two schemes are known. Until 2024-09 the fifth "_" separated part starts
// with the DDMMYYYY date followed by the id. Since 2024-10 there are four
// parts and the last one holds a YYYYMMDD date at offset 6.
func AttachmentName(filename string) string {
	parts := strings.Split(filename, "_")
	switch {
	case len(parts) > 4 && len(parts[4]) >= 8:
		p, id := parts[4], ""
		if len(p) > 12 {
			id = p[8 : len(p)-4]
		}
		return confirmationNote("02012006", p[:8], id)
	case len(parts) == 4 && len(parts[3]) >= 17:
		p := parts[3]
		return confirmationNote("20060102", p[6:len(p)-10], p[13:len(p)-4])
	}
	return FallbackName
}

func confirmationNote(layout, date, id string) string {
	on, err := time.Parse(layout, date)
	if err != nil {
		return FallbackName
	}
	return fmt.Sprintf("%s_%s_confirmationNote.pdf", on.Format("2006-01-02"), id)
}
