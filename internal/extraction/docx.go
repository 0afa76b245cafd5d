package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Word documents are zip archives; the text lives in word/document.xml.
// Only local element names are matched, so the WordprocessingML namespace
// prefix is irrelevant to the decoder.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Runs []string `xml:"r>t"`
}

type wordTable struct {
	Rows []wordTableRow `xml:"tr"`
}

type wordTableRow struct {
	Cells []wordTableCell `xml:"tc"`
}

type wordTableCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

func (p wordParagraph) text() string {
	return strings.TrimSpace(strings.Join(p.Runs, ""))
}

// extractWord pulls text from a .docx payload: body paragraphs in document
// order, then every table cell row-major. Non-empty trimmed chunks are
// joined with newlines.
func extractWord(payload []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", &ExtractError{Message: "failed to open Word archive", Cause: err}
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", &ExtractError{Message: "failed to open word/document.xml", Cause: err}
			}
			docXML, err = io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return "", &ExtractError{Message: "failed to read word/document.xml", Cause: err}
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", &ExtractError{Message: "no word/document.xml found in archive"}
	}

	var doc wordDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", &ExtractError{Message: "failed to parse word/document.xml", Cause: err}
	}

	var chunks []string
	for _, p := range doc.Body.Paragraphs {
		if t := p.text(); t != "" {
			chunks = append(chunks, t)
		}
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				var parts []string
				for _, p := range cell.Paragraphs {
					if t := p.text(); t != "" {
						parts = append(parts, t)
					}
				}
				if cellText := strings.TrimSpace(strings.Join(parts, " ")); cellText != "" {
					chunks = append(chunks, cellText)
				}
			}
		}
	}

	text := strings.Join(chunks, "\n")
	if strings.TrimSpace(text) == "" {
		return "", &EmptyExtractionError{Format: "Word document"}
	}
	return text, nil
}
