package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmptyInput       = errors.New("input is empty")
	ErrInputTooLong     = errors.New("input exceeds maximum allowed length")
	ErrAudioTooLarge    = errors.New("audio exceeds maximum allowed size")
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	ErrUnknownBackend   = errors.New("unknown extraction backend")
	ErrRateLimited      = errors.New("too many requests")
)
