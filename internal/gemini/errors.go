package gemini

import "errors"

var (
	// ErrMissingCredential is returned before any network call when no API key
	// is configured.
	ErrMissingCredential = errors.New("gemini: api key is missing")

	// ErrEmptyResult indicates the provider answered successfully but carried
	// no media payload.
	ErrEmptyResult = errors.New("gemini: no media data received")

	// ErrAuthExpired marks authorization/key problems so callers can prompt
	// for re-authorization instead of treating it as a content failure.
	ErrAuthExpired = errors.New("gemini: credential rejected or expired")

	// ErrTimedOut is returned when the video operation does not complete
	// within the configured polling budget.
	ErrTimedOut = errors.New("gemini: operation did not complete in time")

	// ErrDownloadFailed indicates the completed video's media fetch failed.
	ErrDownloadFailed = errors.New("gemini: failed to download video content")
)
