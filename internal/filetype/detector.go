package filetype

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// ErrNotPDF is returned when an input does not sniff as a PDF.
var ErrNotPDF = errors.New("input is not a PDF")

const pdfMIME = "application/pdf"

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType    string
	Extension   string
	IsPDF       bool
	Description string
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect detects the actual file type using magic bytes, not filename
func (d *Detector) Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &FileTypeInfo{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is(pdfMIME),
	}
	if info.IsPDF {
		info.Description = "PDF document"
	} else {
		info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}

	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")
	return info, nil
}

// EnsurePDF fails with ErrNotPDF unless filePath sniffs as a PDF.
func (d *Detector) EnsurePDF(filePath string) error {
	info, err := d.Detect(filePath)
	if err != nil {
		return err
	}
	if !info.IsPDF {
		return fmt.Errorf("%w: %s is %s", ErrNotPDF, filePath, info.MIMEType)
	}
	return nil
}
