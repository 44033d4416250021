package dto

import (
	"encoding/hex"

	issvc "github.com/pulsegate/signal-service/internal/service"
)

// ToCommand converts EnrollTargetRequest into the use-case command
func (r EnrollTargetRequest) ToCommand() issvc.EnrollTargetCommand {
	return issvc.EnrollTargetCommand{
		SubjectKey: r.SubjectKey,
		Owner:      r.Owner,
		Repo:       r.Repo,
		Credential: r.Credential,
	}
}

// FromTarget builds the response projection; the credential never leaves the server
func FromTarget(t issvc.TargetRecord) TargetResponse {
	return TargetResponse{
		ID:         t.ID,
		SubjectKey: t.SubjectKey,
		Owner:      t.Owner,
		Repo:       t.Repo,
		RefName:    t.RefName,
		Status:     string(t.Status),
	}
}

func FromSession(s issvc.SessionRecord) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		SubjectKey:   s.SubjectKey,
		Threshold:    s.Threshold,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
		LastDecision: s.LastDecision,
		Indicator:    string(s.IndicatorState),
	}
}

func FromIngestResult(res issvc.IngestResult) IngestReadingResponse {
	return IngestReadingResponse{Decision: res.Decision, Indicator: string(res.Indicator)}
}

// FromSignerKeys maps key material to the hex wire form verifiers enroll with
func FromSignerKeys(keys []issvc.SignerKey) SignerKeySet {
	out := SignerKeySet{Keys: make([]SignerKey, 0, len(keys))}
	for _, k := range keys {
		switch k.Alg {
		case "EdDSA":
			out.Keys = append(out.Keys, SignerKey{
				KeyID:     k.KID,
				Alg:       "EdDSA",
				PublicKey: hex.EncodeToString(k.PublicKey),
			})
		default:
			// skip unsupported alg
		}
	}
	return out
}
