package models

// InboundEnvelope is the normalized JSON shape forwarded to the
// automation endpoint for every inbound gateway webhook.
type InboundEnvelope struct {
	Timestamp           string `json:"timestamp"`
	MessageID           string `json:"messageId"`
	From                string `json:"from"`
	To                  string `json:"to"`
	Message             string `json:"message"`
	ProfileName         string `json:"profileName"`
	WhatsAppID          string `json:"whatsappId"`
	NumMedia            string `json:"numMedia"`
	AccountSID          string `json:"accountSid"`
	MessagingServiceSID string `json:"messagingServiceSid"`
}
