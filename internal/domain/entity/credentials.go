package entity

import "time"

// Credentials are loaded once at startup and never mutated afterwards.
type Credentials struct {
	AppID              string
	AppSecret          string
	RefreshToken       string
	EarlyRefreshMargin time.Duration

	// RoleARN e AWSProfile habilitam a assinatura SigV4 das chamadas.
	RoleARN    string
	AWSProfile string
}

// Complete reports whether the LWA triple is present.
func (c Credentials) Complete() bool {
	return c.AppID != "" && c.AppSecret != "" && c.RefreshToken != ""
}

// PortalSubmission is what the captive portal collects on first boot.
type PortalSubmission struct {
	SSID         string `json:"ssid" validate:"required,max=32"`
	Password     string `json:"password" validate:"omitempty,min=8,max=63"`
	AppID        string `json:"amazon_id" validate:"required"`
	AppSecret    string `json:"amazon_secret" validate:"required"`
	RefreshToken string `json:"refresh" validate:"required"`
}
