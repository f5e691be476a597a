package participant

import "time"

// Participant is one external subject within one study, keyed by the
// (external id, study id) identity pair. The assigned condition reference is
// nil until the participant's first session and immutable afterwards.
type Participant struct {
	ID                  uint
	PublicID            string
	ExternalID          string
	StudyID             string
	AssignedConditionID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
