package extraction

import "fmt"

// MIME types accepted for CV uploads.
const (
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDoc  = "application/msword"
)

const (
	// MaxUploadBytes caps uploaded CV files at 10 MiB.
	MaxUploadBytes = 10 * 1024 * 1024
	// MaxFilenameLength caps the uploaded file name.
	MaxFilenameLength = 255
)

// ValidateUpload checks an upload's declared type, size, and name before
// extraction. It does not inspect the payload.
func ValidateUpload(name, declaredType string, size int64) error {
	if size == 0 {
		return &ValidationError{Message: "file appears to be empty"}
	}
	if size > MaxUploadBytes {
		return &ValidationError{
			Message: fmt.Sprintf("file too large: maximum size is 10MB, got %.1fMB", float64(size)/(1024*1024)),
		}
	}
	if len(name) > MaxFilenameLength {
		return &ValidationError{Message: "file name too long"}
	}
	switch declaredType {
	case MIMEPDF, MIMEDocx, MIMEDoc:
		return nil
	default:
		return &UnsupportedTypeError{DeclaredType: declaredType}
	}
}
