package models

// -----------------------------------------------------------------------------
// Dashboard Message (server -> browser)
// -----------------------------------------------------------------------------

type MDashboardMessage struct {
	Type         string         `json:"type"` // "INITIAL" or "UPDATE"
	Values       map[string]any `json:"values"`
	Timestamp    int64          `json:"timestamp"`
	Reconnecting bool           `json:"reconnecting"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Keys    []string `json:"keys"`
}
