// Package transport defines the HTTP DTOs for the chat module.
package transport

// ChatMessage is one turn of conversation history from the UI.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the full conversation so far; the backend is
// stateless across turns.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// QuotePayload points the UI at the committed quote's artifacts.
type QuotePayload struct {
	QuoteID     string  `json:"quote_id"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
	MDFilename  string  `json:"md_filename"`
	TxtFilename string  `json:"txt_filename"`
	PDFFilename string  `json:"pdf_filename,omitempty"`
}

// ChatResponse is the assistant's reply, with quote artifacts when a quote
// was committed this turn.
type ChatResponse struct {
	Reply string        `json:"reply"`
	Quote *QuotePayload `json:"quote,omitempty"`
}
