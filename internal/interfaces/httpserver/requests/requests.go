package requests

// StartSessionRequest opens a new conversation session for a participant.
// ParticipantID is the caller-supplied external identity (e.g. a Prolific
// PID), not an identifier minted by this service.
type StartSessionRequest struct {
	ParticipantID     string         `json:"participant_id" binding:"required"`
	StudyID           string         `json:"study_id"`
	ExperimentID      string         `json:"experiment_id" binding:"required"`
	ExternalSessionID *string        `json:"external_session_id,omitempty"`
	QRPre             *string        `json:"qr_pre,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// EndSessionRequest terminates a session without a final message.
type EndSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// ChatRequest submits one user turn to an active session.
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
