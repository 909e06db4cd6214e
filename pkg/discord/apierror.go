package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Kind groups platform failures by what the caller can do about them.
type Kind int

const (
	KindUnknown Kind = iota
	KindPermissionDenied
	KindNotFound
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotFound:
		return "NotFound"
	case KindRateLimited:
		return "RateLimited"
	default:
		return "Unknown"
	}
}

// APIError is a classified Discord REST failure.
type APIError struct {
	Kind Kind
	// Code is the Discord JSON error code, or 0 when the body had none.
	Code int
	Err  error
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

var notFoundCodes = map[int]bool{
	discordgo.ErrCodeUnknownChannel: true,
	discordgo.ErrCodeUnknownGuild:   true,
	discordgo.ErrCodeUnknownMember:  true,
	discordgo.ErrCodeUnknownMessage: true,
	discordgo.ErrCodeUnknownRole:    true,
	discordgo.ErrCodeUnknownUser:    true,
	discordgo.ErrCodeUnknownBan:     true,
}

// Classify turns an error returned by discordgo into an APIError. It returns
// nil for a nil error.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{Kind: KindRateLimited, Err: err}
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return &APIError{Kind: KindUnknown, Err: err}
	}

	code := 0
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	status := 0
	if restErr.Response != nil {
		status = restErr.Response.StatusCode
	}

	switch {
	case code == discordgo.ErrCodeMissingPermissions || status == http.StatusForbidden:
		return &APIError{Kind: KindPermissionDenied, Code: code, Err: err}
	case notFoundCodes[code] || status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Code: code, Err: err}
	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Code: code, Err: err}
	default:
		return &APIError{Kind: KindUnknown, Code: code, Err: err}
	}
}

// UserMessage formats the inline reply for a failed action such as "kick".
func (e *APIError) UserMessage(action string) string {
	switch e.Kind {
	case KindPermissionDenied:
		return fmt.Sprintf("❌ I don't have permission to %s that member.", action)
	case KindNotFound:
		return fmt.Sprintf("❌ Could not %s: not found.", action)
	case KindRateLimited:
		return "❌ Rate limited, try again in a moment."
	default:
		if e.Code != 0 {
			return fmt.Sprintf("❌ Failed to %s (code %d).", action, e.Code)
		}
		return fmt.Sprintf("❌ Failed to %s.", action)
	}
}

// IsNotFound reports whether err is a Discord "unknown ..." failure.
func IsNotFound(err error) bool {
	e := Classify(err)
	return e != nil && e.Kind == KindNotFound
}
