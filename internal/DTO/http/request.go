package http

// ValidationData - отметка о прохождении одного под-элемента.
type ValidationData struct {
	Done   bool     `json:"done"`
	Time   int      `json:"time"`
	Answer []string `json:"answer,omitempty"`
}

type ValidationEntry struct {
	Key    string         `json:"key"`
	Layout string         `json:"layout"`
	Data   ValidationData `json:"data"`
}

type ValidationPayload struct {
	Key    *string           `json:"key"`
	Layout string            `json:"layout"`
	Data   []ValidationEntry `json:"data"`
}

// ValidationRequest - тело PUT .../flexible_content; API требует обёртку payload.
type ValidationRequest struct {
	Payload ValidationPayload `json:"payload"`
}
