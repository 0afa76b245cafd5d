package extraction

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// The two passes are indirected so tests can drive the fallback order
// without crafting pathological PDF fixtures.
var (
	pdfRowPass   = pdfTextByRows
	pdfPlainPass = pdfPlainText
)

// extractPDF pulls text from a PDF payload using two methods in order:
// row-grouped extraction first (better for multi-column layouts), then the
// plain text stream. A method that errors or yields only whitespace is
// skipped in favor of the next; only total exhaustion is reported.
func extractPDF(payload []byte) (string, error) {
	if text := pdfRowPass(payload); strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text), nil
	}
	if text := pdfPlainPass(payload); strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text), nil
	}
	return "", &EmptyExtractionError{Format: "PDF"}
}

// pdfTextByRows walks each page's rows top to bottom. The pdf package can
// panic on malformed files, so failures of any kind collapse to "".
func pdfTextByRows(payload []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if strings.TrimSpace(line.String()) != "" {
				sb.WriteString(line.String())
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// pdfPlainText is the simpler fallback: one text stream for the whole file.
func pdfPlainText(payload []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ""
	}
	stream, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return ""
	}
	return buf.String()
}
