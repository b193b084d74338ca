package models

import "encoding/json"

// ArticleRequest is one element of an /analyze batch. ID and Title are kept
// as raw JSON so they are echoed back exactly as the caller sent them.
type ArticleRequest struct {
	ID      json.RawMessage `json:"id"`
	Title   json.RawMessage `json:"title"`
	Summary string          `json:"summary"`
}

type AnalysisResult struct {
	ID        json.RawMessage `json:"id"`
	Title     json.RawMessage `json:"title"`
	Sentiment string          `json:"sentiment"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
	ArticleIndex  int      `json:"article_index"`
}
