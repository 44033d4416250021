package models

// SignalPayload is the capability token published to a gate target's ref.
// Everything the verifier needs travels inside it; signer and verifier
// never share process state.
type SignalPayload struct {
	V          int     `json:"v"`
	SubjectKey string  `json:"subject_key"`
	SessionID  string  `json:"session_id"`
	Reading    float64 `json:"reading"`
	Threshold  float64 `json:"threshold"`
	Decision   bool    `json:"decision"`
	ExpiresAt  int64   `json:"expires_at"`
	Nonce      string  `json:"nonce"`
	Sig        string  `json:"sig,omitempty"`
}

// SchemaVersion is the only payload format revision the verifier accepts.
const SchemaVersion = 1
