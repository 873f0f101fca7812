package domains

import "time"

const (
	DistributionChannelLink  = "link"
	DistributionChannelQR    = "qr_code"
	DistributionChannelEmbed = "embed"
	DistributionChannelEmail = "email"
)

type Distribution struct {
	ID        string    `json:"id"`
	SurveyID  string    `json:"survey_id"`
	Channel   string    `json:"channel"`
	TargetURL string    `json:"target_url"`
	// Channel-specific payload: QR image data URL, embed snippet, or
	// per-recipient email outcomes.
	QRImage    string            `json:"qr_image,omitempty"`
	EmbedCode  string            `json:"embed_code,omitempty"`
	EmailSends []EmailSendResult `json:"email_sends,omitempty"`
	CreatedBy  int64             `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

type DistributionCreate struct {
	Channel    string   `json:"channel" validate:"required"`
	Recipients []string `json:"recipients,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// EmailSendResult records one recipient's outcome. A failed send never
// aborts the batch; each recipient is attempted independently.
type EmailSendResult struct {
	Recipient string `json:"recipient"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

type DistributionSummary struct {
	Distribution  Distribution `json:"distribution"`
	ResponseCount int          `json:"response_count"`
}
