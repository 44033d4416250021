package service

import "errors"

var (
	ErrUnsupportedAlg = errors.New("unsupported_alg")
	ErrMalformedKey   = errors.New("malformed_key")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
	ErrSessionClosed  = errors.New("session_closed")
)
