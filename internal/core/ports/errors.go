package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConfidentMatch indicates search results did not meet the confidence threshold.
	ErrNoConfidentMatch = errors.New("no confident match")
	// ErrModelLoading indicates the text model is still warming up (HTTP 503).
	ErrModelLoading = errors.New("model is loading")
	// ErrEmptyGeneration indicates a generator answered without usable text.
	ErrEmptyGeneration = errors.New("empty generation")
	// ErrLocationNotFound indicates the weather service does not know the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrInvalidCredentials indicates an upstream rejected the configured key.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials indicates a required key is not configured.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrUpstreamTimeout indicates an upstream did not answer in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrStorageDisabled indicates no mood repository is configured.
	ErrStorageDisabled = errors.New("storage disabled")
)

// NoConfidentMatchError provides context for a failed track match.
type NoConfidentMatchError struct {
	Title  string
	Artist string
}

func (e NoConfidentMatchError) Error() string {
	if e.Title == "" && e.Artist == "" {
		return ErrNoConfidentMatch.Error()
	}
	return fmt.Sprintf("no confident match found for title %q artist %q", e.Title, e.Artist)
}

func (e NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}

// UpstreamError carries a non-success answer from an external service.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
}

// MissingCredentialsError names the setting that must be configured.
type MissingCredentialsError struct {
	Setting string
}

func (e MissingCredentialsError) Error() string {
	return fmt.Sprintf("%s environment variable is required", e.Setting)
}

func (e MissingCredentialsError) Is(target error) bool {
	return target == ErrMissingCredentials
}
