package click

// TrackClickRequest é enviado pelo beacon em POST /api/track/click
type TrackClickRequest struct {
	AgentID     string `json:"agentId" validate:"required,len=6,alphanum"`
	SessionID   string `json:"sessionId" validate:"required,max=64"`
	LandingURL  string `json:"landingUrl,omitempty" validate:"omitempty,max=2048"`
	Referrer    string `json:"referrer,omitempty" validate:"omitempty,max=2048"`
	UTMSource   string `json:"utmSource,omitempty" validate:"omitempty,max=100"`
	UTMMedium   string `json:"utmMedium,omitempty" validate:"omitempty,max=100"`
	UTMCampaign string `json:"utmCampaign,omitempty" validate:"omitempty,max=100"`
}

type TrackClickResponse struct {
	Success bool `json:"success"`
	ClickID uint `json:"clickId"`
}
