package extraction

// Extract converts an uploaded CV payload into plain text based on its
// declared MIME type. PDF extraction tries a layout-aware pass before the
// simple text stream; Word documents are read paragraph-first, then tables.
// Empty extracted text is a failure for both families.
func Extract(name, declaredType string, payload []byte) (string, error) {
	if err := ValidateUpload(name, declaredType, int64(len(payload))); err != nil {
		return "", err
	}

	switch declaredType {
	case MIMEPDF:
		return extractPDF(payload)
	case MIMEDocx, MIMEDoc:
		return extractWord(payload)
	default:
		return "", &UnsupportedTypeError{DeclaredType: declaredType}
	}
}
