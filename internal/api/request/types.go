package request

// LinkRequest is the request body for starting a link verification
type LinkRequest struct {
	UUID   string `json:"uuid"`
	Handle string `json:"handle"`
}

// SignalRequest is the request body for delivering a confirmation signal
type SignalRequest struct {
	Handle   string `json:"handle"`
	Accepted bool   `json:"accepted"`
}

// PlayerRequest is the request body for player-addressed operations
// (reload, unlink, cancel)
type PlayerRequest struct {
	UUID string `json:"uuid"`
}
