package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"
)

// AutomationForwarder relays inbound webhook envelopes to the external
// automation service. Forwarding failures are the caller's to log; the
// gateway is always acknowledged regardless.
type AutomationForwarder struct {
	url        string
	httpClient *http.Client
}

func NewAutomationForwarder(url string) *AutomationForwarder {
	return &AutomationForwarder{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (f *AutomationForwarder) Forward(envelope *models.InboundEnvelope) error {
	if f.url == "" {
		utils.LogWarning("No automation endpoint configured, dropping inbound message %s", envelope.MessageID)
		return nil
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error encoding envelope: %v", err)
	}

	resp, err := f.httpClient.Post(f.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error forwarding to automation endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("automation endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
