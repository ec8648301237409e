package statement

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/etnz/tradelog"
	"github.com/ledongthuc/pdf"
)

// PDF extracts the text of password protected PDF statements.
type PDF struct{}

// ExtractText decrypts doc and returns the text of each page, one line per text row.
func (PDF) ExtractText(doc []byte, password string) ([]string, error) {
	tried := false
	r, err := pdf.NewReaderEncrypted(bytes.NewReader(doc), int64(len(doc)), func() string {
		if tried {
			return "" // give up after the first password
		}
		tried = true
		return password
	})
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return nil, tradelog.ErrBadPassword
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("cannot extract text of page %d: %w", i, err)
		}
		var sb strings.Builder
		for _, row := range rows {
			sb.WriteString(joinRow(row.Content))
			sb.WriteByte('\n')
		}
		pages = append(pages, sb.String())
	}
	return pages, nil
}

// joinRow concatenates the text runs of a row, separating runs that are not adjacent.
func joinRow(texts pdf.TextHorizontal) string {
	var sb strings.Builder
	end := math.Inf(-1)
	for _, t := range texts {
		if sb.Len() > 0 && t.X-end > t.FontSize/4 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		end = t.X + t.W
	}
	return strings.TrimSpace(sb.String())
}
