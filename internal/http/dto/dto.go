package dto

import "time"

type EnrollTargetRequest struct {
	SubjectKey string `json:"subject_key"`
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	Credential string `json:"credential"`
}

type TargetResponse struct {
	ID         string `json:"id"`
	SubjectKey string `json:"subject_key"`
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	RefName    string `json:"ref_name"`
	Status     string `json:"status"`
}

type StartSessionRequest struct {
	SubjectKey string  `json:"subject_key"`
	Threshold  float64 `json:"threshold"`
}

type SessionResponse struct {
	ID           string     `json:"id"`
	SubjectKey   string     `json:"subject_key"`
	Threshold    float64    `json:"threshold"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	LastDecision bool       `json:"last_decision"`
	Indicator    string     `json:"indicator"`
}

type IngestReadingRequest struct {
	Value      float64    `json:"value"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

type IngestReadingResponse struct {
	Decision  bool   `json:"decision"`
	Indicator string `json:"indicator"`
}

type IndicatorResponse struct {
	State string `json:"state"`
}

type SignerKey struct {
	KeyID     string `json:"key_id"`
	Alg       string `json:"alg"`
	PublicKey string `json:"public_key"` // lowercase hex
}

type SignerKeySet struct {
	Keys []SignerKey `json:"keys"`
}
