package response

// Status is the response for operations that either complete in place
// (reload, unlink, cancel) or have been taken on asynchronously (link
// prompts, confirmation signals)
type Status struct {
	Status string `json:"status"`
}

// StatusOK is the standard success body
var StatusOK = Status{Status: "ok"}

// StatusPending is the body for operations awaiting platform confirmation
var StatusPending = Status{Status: "pending"}
