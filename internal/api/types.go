package api

import "github.com/quantforge/qpost/internal/simfile"

// PassSpec names one pass to run, with its parameters. Kind is only
// meaningful for the propagate pass and selects target modules by op
// kind.
type PassSpec struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// RunPassesRequest is the body of POST /v1/sessions/:id/passes.
type RunPassesRequest struct {
	Passes []PassSpec `json:"passes"`
}

// SessionResponse describes a stored session.
type SessionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Ops     int    `json:"ops"`
	Modules int    `json:"modules"`
}

// RunPassesResponse reports the passes applied and the resulting
// encodings.
type RunPassesResponse struct {
	Applied   []string                  `json:"applied"`
	Encodings []simfile.ModuleEncodings `json:"encodings"`
}

// ResponseError is the JSON error payload.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
