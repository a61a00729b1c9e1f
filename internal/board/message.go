package board

import "stonkboard/internal/provider"

const (
	RateLimitMessage  = "Too many requests to the quote provider. Please try again in a minute."
	UnexpectedMessage = "An unexpected error occurred. Please try again later."
)

// UserMessage is the text shown to a user for err. Only rate limiting gets
// its own wording; every other failure reads the same.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if provider.IsRateLimit(err) {
		return RateLimitMessage
	}
	return UnexpectedMessage
}
