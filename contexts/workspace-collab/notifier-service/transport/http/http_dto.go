package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateDecision struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Notify bool   `json:"notify"`
	Reason string `json:"reason"`
}

type PreviewDocumentRequest struct {
	DocumentID string `json:"document_id"`
	EventType  string `json:"event_type"`
	Source     string `json:"source,omitempty"`
}

type PreviewDocumentResponse struct {
	Status string `json:"status"`
	Data   struct {
		DocumentID  string              `json:"document_id"`
		Label       string              `json:"label"`
		NotifyCount int                 `json:"notify_count"`
		Candidates  []CandidateDecision `json:"candidates"`
	} `json:"data"`
}

type PreviewCollectionRequest struct {
	CollectionID string `json:"collection_id"`
}

type PreviewCollectionResponse struct {
	Status string `json:"status"`
	Data   struct {
		CollectionID string              `json:"collection_id"`
		Label        string              `json:"label"`
		NotifyCount  int                 `json:"notify_count"`
		Candidates   []CandidateDecision `json:"candidates"`
	} `json:"data"`
}
