package repo

const (
	tableSignerKeys = "signer_keys"
	tableTargets    = "gate_targets"
	tableSessions   = "monitoring_sessions"
	tableReadings   = "readings"
)

const (
	colID             = "id"
	colStatus         = "status"
	colCreatedAt      = "created_at"
	colKeyID          = "key_id"
	colAlg            = "alg"
	colPublicKey      = "public_key"
	colPrivateKey     = "private_key"
	colSubjectKey     = "subject_key"
	colOwner          = "owner"
	colRepo           = "repo"
	colRefName        = "ref_name"
	colCredential     = "credential"
	colLastIssuedAt   = "last_issued_at"
	colThreshold      = "threshold"
	colStartedAt      = "started_at"
	colEndedAt        = "ended_at"
	colLastReading    = "last_reading"
	colLastReadingAt  = "last_reading_at"
	colLastDecision   = "last_decision"
	colIndicatorState = "indicator_state"
	colSessionID      = "session_id"
	colValue          = "value"
	colRecordedAt     = "recorded_at"
)
