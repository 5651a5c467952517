package apperrors

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnavailable   = errors.New("service unavailable")
	ErrCourseEmpty   = errors.New("course has no videos")
	ErrNotReady      = errors.New("playback session is not ready")
	ErrVideoNotFound = errors.New("video not found in course")
	ErrNoSession     = errors.New("no playback session")
	ErrNoLocation    = errors.New("no saved location")
)
