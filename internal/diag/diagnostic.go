package diag

import (
	"vela/internal/source"
)

type Note struct {
	Span source.Span `json:"span"`
	Msg  string      `json:"msg"`
}

type FixEdit struct {
	Span    source.Span `json:"span"`
	NewText string      `json:"new_text"`
}

type Fix struct {
	Title string    `json:"title"`
	Edits []FixEdit `json:"edits,omitempty"`
}

type Diagnostic struct {
	Severity Severity    `json:"severity"`
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Primary  source.Span `json:"primary"`
	Notes    []Note      `json:"notes,omitempty"`
	Fixes    []Fix       `json:"fixes,omitempty"`
}
