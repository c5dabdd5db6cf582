package agent

// CreateAgentRequest é usado em POST /api/admin/agents
type CreateAgentRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Phone   string  `json:"phone" validate:"required,max=20"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Account *string `json:"account,omitempty" validate:"omitempty,max=255"`
	Memo    *string `json:"memo,omitempty"`
}

// UpdateAgentRequest é usado em PUT /api/admin/agents/{id}
// Campos como ponteiro permitem omitir no JSON se não quiser alterar
type UpdateAgentRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=1,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Account  *string `json:"account,omitempty" validate:"omitempty,max=255"`
	Memo     *string `json:"memo,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// AgentResponse acrescenta o link de rastreamento ao agente.
type AgentResponse struct {
	Agent
	TrackingURL string `json:"trackingUrl"`
}
