package models

// MaterialDetail is the single-fetch payload: the enriched row plus rendered content.
type MaterialDetail struct {
	MaterialView
	ContentHTML string `json:"content_html"`
}

// MessageResponse is the acknowledgement body for mutations.
type MessageResponse struct {
	Message string `json:"message"`
	ID      *uint  `json:"id,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user"`
}
