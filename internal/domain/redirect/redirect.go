// Package redirect builds the outbound post-survey URL handed back to the
// frontend when a session ends.
package redirect

import "net/url"

// Build appends the participant's external id, the session id, and the
// condition id as query parameters onto baseURL, preserving any query
// parameters already present. An empty baseURL yields an empty result, which
// callers must treat as "no redirect configured", not an error.
func Build(baseURL, externalID, sessionID, conditionID string) string {
	if baseURL == "" {
		return ""
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	query := u.Query()
	query.Set("pid", externalID)
	query.Set("chat_session_id", sessionID)
	query.Set("condition_id", conditionID)
	u.RawQuery = query.Encode()
	return u.String()
}
