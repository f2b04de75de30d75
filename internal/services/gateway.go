package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"whatsapp-console/config"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"
)

// GatewayService relays outbound messages to the configured messaging
// gateway. It does not retry and does not reinterpret gateway errors
// beyond a friendlier phrasing for the common ones.
type GatewayService struct {
	url        string
	httpClient *http.Client
}

type gatewayRequest struct {
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	CustomerID int    `json:"customerId,omitempty"`
}

type gatewayResponse struct {
	Sid       string `json:"sid"`
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

func NewGatewayService(cfg *config.Config) *GatewayService {
	return &GatewayService{
		url: cfg.GatewayURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send posts one message to the gateway and normalizes the outcome into
// a SendResult. Persisting a successful send is the caller's job.
func (s *GatewayService) Send(ctx context.Context, phone string, message string, customerID int) *models.SendResult {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(message) == "" {
		return &models.SendResult{
			Success: false,
			Error:   "phone number and message are required",
		}
	}

	payload := gatewayRequest{
		Phone:      utils.NormalizePhone(phone),
		Message:    message,
		CustomerID: customerID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &models.SendResult{Success: false, Error: fmt.Sprintf("error encoding request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return &models.SendResult{Success: false, Error: fmt.Sprintf("error building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	utils.LogInfo("Sending message to %s via gateway", payload.Phone)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &models.SendResult{Success: false, Error: friendlyGatewayError(err.Error())}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errText := gatewayErrorText(respBody)
		if errText == "" {
			errText = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		utils.LogError("Gateway rejected message for %s: %s", payload.Phone, errText)
		return &models.SendResult{Success: false, Error: friendlyGatewayError(errText)}
	}

	result := &models.SendResult{Success: true, Status: "sent"}

	var decoded gatewayResponse
	if err := json.Unmarshal(respBody, &decoded); err == nil {
		if decoded.Sid != "" {
			result.MessageID = decoded.Sid
		} else if decoded.MessageID != "" {
			result.MessageID = decoded.MessageID
		}
		if decoded.Status != "" {
			result.Status = decoded.Status
		}
	}

	// Some gateways answer 200 with an empty or non-JSON body; keep a
	// locally generated id so the result always carries one.
	if result.MessageID == "" {
		result.MessageID = fmt.Sprintf("gateway_%d", time.Now().UnixMilli())
	}

	utils.LogInfo("Message sent to %s: %s", payload.Phone, result.MessageID)
	return result
}

func gatewayErrorText(body []byte) string {
	var decoded gatewayResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}
	return strings.TrimSpace(string(body))
}

// friendlyGatewayError rewords the gateway phrasings operators see most
// often. Cosmetic only: unknown errors pass through untouched.
func friendlyGatewayError(errText string) string {
	switch {
	case strings.Contains(errText, "not a valid phone number"):
		return "Invalid phone number format. Please include country code (e.g., +1234567890)"
	case strings.Contains(errText, "not a valid WhatsApp number"):
		return "This number is not registered with WhatsApp or not in your sandbox"
	case strings.Contains(errText, "Forbidden"):
		return "Number not authorized in the gateway sandbox. Please add it to the sandbox first"
	default:
		return errText
	}
}
