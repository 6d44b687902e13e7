// Package assistant turns spoken commands into responses: an ordered intent
// registry for the commands it understands, and a streaming AI fallback for
// everything else.
package assistant

// Response is the single result of one command. At least one of Spoken or
// OpenedURL is populated; a response with neither is a handler defect.
type Response struct {
	Spoken            string `json:"spoken_response"`
	OpenedURL         string `json:"opened_url,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// IsNoop reports whether the response does nothing the user can perceive.
func (r Response) IsNoop() bool {
	return r.Spoken == "" && r.OpenedURL == "" && r.AdditionalContext == ""
}

func spoken(text string) Response {
	return Response{Spoken: text}
}
