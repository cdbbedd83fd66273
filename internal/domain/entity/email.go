package entity

// EmailWebhookPayload is the inbound email as posted by SendGrid or Mailgun.
// Every field is optional on the wire and defaults to empty.
type EmailWebhookPayload struct {
	To      string            `json:"to"`
	From    string            `json:"from"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	HTML    string            `json:"html"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Content returns the text body, falling back to the HTML body.
func (p *EmailWebhookPayload) Content() string {
	if p.Text != "" {
		return p.Text
	}
	return p.HTML
}

// InboundEmail is a BCC-captured email after recipient parsing.
type InboundEmail struct {
	Username      string `json:"username"`
	To            string `json:"to"`
	From          string `json:"from"`
	SenderAddress string `json:"sender_address,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Content       string `json:"-"`
	MessageID     string `json:"message_id,omitempty"`
}
