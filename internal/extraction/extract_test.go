package extraction

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload_Accepts(t *testing.T) {
	assert.NoError(t, ValidateUpload("cv.pdf", MIMEPDF, 1024))
	assert.NoError(t, ValidateUpload("cv.docx", MIMEDocx, 1024))
	assert.NoError(t, ValidateUpload("cv.doc", MIMEDoc, 1024))
}

func TestValidateUpload_EmptyFile(t *testing.T) {
	err := ValidateUpload("cv.pdf", MIMEPDF, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "empty")
}

func TestValidateUpload_TooLarge(t *testing.T) {
	err := ValidateUpload("cv.pdf", MIMEPDF, MaxUploadBytes+1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "too large")
}

func TestValidateUpload_NameTooLong(t *testing.T) {
	err := ValidateUpload(strings.Repeat("a", 256), MIMEPDF, 10)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "name too long")
}

func TestValidateUpload_UnsupportedType(t *testing.T) {
	err := ValidateUpload("cv.txt", "text/plain", 10)
	var terr *UnsupportedTypeError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Error(), "text/plain")
}

func TestExtract_UnsupportedTypeNoSniffing(t *testing.T) {
	// A valid-looking PDF payload with a wrong declared type must be
	// rejected without being opened.
	payload := []byte("%PDF-1.4 not actually parsed")
	_, err := Extract("cv.png", "image/png", payload)
	var terr *UnsupportedTypeError
	assert.ErrorAs(t, err, &terr)
}

func TestExtract_PDFFallsBackToPlainText(t *testing.T) {
	// Row-grouped extraction yields only whitespace; the plain text
	// stream still has the content.
	origRow, origPlain := pdfRowPass, pdfPlainPass
	defer func() { pdfRowPass, pdfPlainPass = origRow, origPlain }()
	pdfRowPass = func([]byte) string { return "  \n\t " }
	pdfPlainPass = func([]byte) string { return "Jane Doe\nSenior Go engineer\n" }

	text, err := Extract("cv.pdf", MIMEPDF, []byte("%PDF-1.4 stub"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Go engineer", text)
}

func TestExtract_CorruptPDFExhaustsBothMethods(t *testing.T) {
	_, err := Extract("cv.pdf", MIMEPDF, []byte("not a pdf at all"))
	var eerr *EmptyExtractionError
	require.ErrorAs(t, err, &eerr)
	assert.Contains(t, err.Error(), "image-based or corrupted")
}

// buildDocx assembles a minimal .docx archive around the given document.xml body.
func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	doc := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestExtract_WordParagraphsThenTables(t *testing.T) {
	body := para("Jane Doe") +
		para("Software Engineer") +
		`<w:tbl>` +
		`<w:tr><w:tc>` + para("Go") + `</w:tc><w:tc>` + para("Python") + `</w:tc></w:tr>` +
		`<w:tr><w:tc>` + para("Postgres") + `</w:tc><w:tc>` + para("") + `</w:tc></w:tr>` +
		`</w:tbl>`

	text, err := Extract("cv.docx", MIMEDocx, buildDocx(t, body))
	require.NoError(t, err)

	// Paragraphs first, then table cells row-major; empty cells skipped.
	assert.Equal(t, "Jane Doe\nSoftware Engineer\nGo\nPython\nPostgres", text)
}

func TestExtract_WordSkipsBlankParagraphs(t *testing.T) {
	body := para("  Jane Doe  ") + para("   ") + para("Engineer")
	text, err := Extract("cv.docx", MIMEDocx, buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEngineer", text)
}

func TestExtract_WordEmptyDocumentIsFailure(t *testing.T) {
	_, err := Extract("cv.docx", MIMEDocx, buildDocx(t, para(" ")))
	var eerr *EmptyExtractionError
	assert.ErrorAs(t, err, &eerr)
}

func TestExtract_WordNotAZip(t *testing.T) {
	_, err := Extract("cv.docx", MIMEDocx, []byte("plain text pretending"))
	var xerr *ExtractError
	require.ErrorAs(t, err, &xerr)
	assert.True(t, errors.Unwrap(xerr) != nil)
}

func TestExtract_WordMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract("cv.docx", MIMEDocx, buf.Bytes())
	var xerr *ExtractError
	require.ErrorAs(t, err, &xerr)
	assert.Contains(t, xerr.Error(), "document.xml")
}
