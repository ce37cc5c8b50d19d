package domain

// SubmissionResult is the normalized outcome of one ticket API call. The
// external API's success-signaling and id/link key names vary, so the
// gateway resolves the aliases once at receipt; Raw keeps the merged
// response body (plus the HTTP status under "http") for the user-facing
// reply.
type SubmissionResult struct {
	HTTPStatus int
	OK         bool
	TicketID   string
	TicketURL  string
	Error      string
	Raw        map[string]any
}
