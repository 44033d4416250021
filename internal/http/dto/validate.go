package dto

import (
	"errors"
	"strings"
)

var (
	ErrSubjectRequired    = errors.New("subject_key required")
	ErrRepoRequired       = errors.New("owner and repo required")
	ErrCredentialRequired = errors.New("credential required")
	ErrThresholdInvalid   = errors.New("threshold must be positive")
	ErrValueInvalid       = errors.New("value must be positive")
)

// Validate checks the EnrollTargetRequest invariants
func (r EnrollTargetRequest) Validate() error {
	if strings.TrimSpace(r.SubjectKey) == "" {
		return ErrSubjectRequired
	}
	if strings.TrimSpace(r.Owner) == "" || strings.TrimSpace(r.Repo) == "" {
		return ErrRepoRequired
	}
	if strings.TrimSpace(r.Credential) == "" {
		return ErrCredentialRequired
	}
	return nil
}

// Validate checks the StartSessionRequest invariants
func (r StartSessionRequest) Validate() error {
	if strings.TrimSpace(r.SubjectKey) == "" {
		return ErrSubjectRequired
	}
	if r.Threshold <= 0 {
		return ErrThresholdInvalid
	}
	return nil
}

// Validate checks the IngestReadingRequest invariants
func (r IngestReadingRequest) Validate() error {
	if r.Value <= 0 {
		return ErrValueInvalid
	}
	return nil
}
