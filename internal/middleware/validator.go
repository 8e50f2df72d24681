package middleware

import (
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/rumera-ai/rumera/internal/domain/analysis"
)

// Upload filter: media type -> modality it may be submitted as.
var allowedMIME = map[string]analysis.Modality{
	"image/jpeg":      analysis.ModalityImage,
	"image/png":       analysis.ModalityImage,
	"image/webp":      analysis.ModalityImage,
	"image/gif":       analysis.ModalityImage,
	"audio/mpeg":      analysis.ModalityAudio,
	"audio/wav":       analysis.ModalityAudio,
	"audio/ogg":       analysis.ModalityAudio,
	"video/mp4":       analysis.ModalityVideo,
	"video/mpeg":      analysis.ModalityVideo,
	"video/quicktime": analysis.ModalityVideo,
	"video/webm":      analysis.ModalityVideo,
}

// NormalizeMIME drops parameters and lowercases the media type.
func NormalizeMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// ValidateUpload checks the declared content type against the upload filter.
func ValidateUpload(want analysis.Modality, contentType string) error {
	mt := NormalizeMIME(contentType)
	if got, ok := allowedMIME[mt]; !ok || got != want {
		return fmt.Errorf("invalid file type: %s", contentType)
	}
	return nil
}

// ValidateFrame accepts any image type from the upload filter.
func ValidateFrame(contentType string) error {
	return ValidateUpload(analysis.ModalityImage, contentType)
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateEntryID validates history entry ids (uuid).
func ValidateEntryID(id string) error {
	if id == "" {
		return fmt.Errorf("history id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid history id format")
	}
	return nil
}

// MaxPage bounds the page query so the row offset cannot overflow.
const MaxPage = 10000

// ValidatePage clamps pagination query values.
func ValidatePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
