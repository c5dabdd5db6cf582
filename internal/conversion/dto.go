package conversion

// ConversionRequest é o corpo de POST /api/conversion enviado pelo beacon.
type ConversionRequest struct {
	AgentID        string         `json:"agentId" validate:"required,max=16"`
	SessionID      string         `json:"sessionId,omitempty" validate:"omitempty,max=64"`
	FormData       map[string]any `json:"formData" validate:"required"`
	ConversionType string         `json:"conversionType,omitempty"`
}

type ConversionResponse struct {
	Success     bool `json:"success"`
	QuoteID     uint `json:"quoteId"`
	IsDuplicate bool `json:"isDuplicate"`
}
