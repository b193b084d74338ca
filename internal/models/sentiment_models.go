package models

// Prediction is a single classifier output. Only Label is used to build the
// public sentiment; Score is kept for logging.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type InferenceRequest struct {
	Inputs string `json:"inputs"`
}

// InferenceResponse matches the text-classification output of Hugging Face
// style inference servers. Some servers nest the list once more, see
// clients.InferenceClient.
type InferenceResponse []Prediction
