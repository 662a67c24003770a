package messaging

import (
	"strings"
	"unicode/utf8"

	"github.com/civiport/report-management/internal"
)

type SendMessageDTO struct {
	Body string `json:"body"`
}

func (dto *SendMessageDTO) Validate() error {
	dto.Body = strings.TrimSpace(dto.Body)
	if dto.Body == "" {
		return internal.NewValidationError("Message cannot be empty", internal.ErrCodeMessageEmpty)
	}
	// The cap counts characters, not bytes.
	if utf8.RuneCountInString(dto.Body) > MaxMessageLength {
		return internal.NewValidationError("Message exceeds the maximum length",
			internal.ErrCodeMessageTooLong)
	}
	return nil
}

type AddInternalCommentDTO struct {
	Body string `json:"body"`
}

func (dto *AddInternalCommentDTO) Validate() error {
	dto.Body = strings.TrimSpace(dto.Body)
	if dto.Body == "" {
		return internal.NewValidationError("Comment cannot be empty", internal.ErrCodeMessageEmpty)
	}
	if utf8.RuneCountInString(dto.Body) > MaxMessageLength {
		return internal.NewValidationError("Comment exceeds the maximum length",
			internal.ErrCodeMessageTooLong)
	}
	return nil
}

type MarkNotificationReadDTO struct {
	IsRead bool `json:"is_read"`
}
