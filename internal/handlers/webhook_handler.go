package handlers

import (
	"fmt"
	"net/http"
	"time"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/services"
	"whatsapp-console/internal/utils"
	"whatsapp-console/internal/wsnotify"
)

type WebhookHandler struct {
	forwarder *services.AutomationForwarder
}

func NewWebhookHandler(forwarder *services.AutomationForwarder) *WebhookHandler {
	return &WebhookHandler{forwarder: forwarder}
}

// @Summary Receive an inbound message
// @Description Gateway webhook for inbound messages; forwards a JSON envelope to the automation endpoint and acknowledges with XML
// @Tags webhook
// @Accept application/x-www-form-urlencoded
// @Produce text/xml
// @Success 200
// @Router /webhook/whatsapp [post]
func (h *WebhookHandler) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.LogError("Error parsing webhook form: %v", err)
		respondTwiML(w, "Error processing message")
		return
	}

	profileName := r.PostFormValue("ProfileName")
	if profileName == "" {
		profileName = "Unknown"
	}
	numMedia := r.PostFormValue("NumMedia")
	if numMedia == "" {
		numMedia = "0"
	}

	envelope := &models.InboundEnvelope{
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		MessageID:           r.PostFormValue("MessageSid"),
		From:                r.PostFormValue("From"),
		To:                  r.PostFormValue("To"),
		Message:             r.PostFormValue("Body"),
		ProfileName:         profileName,
		WhatsAppID:          r.PostFormValue("WaId"),
		NumMedia:            numMedia,
		AccountSID:          r.PostFormValue("AccountSid"),
		MessagingServiceSID: r.PostFormValue("MessagingServiceSid"),
	}

	utils.LogInfo("Inbound message %s from %s", envelope.MessageID, envelope.From)

	// The gateway must always be acknowledged within its timeout, so a
	// forwarding failure is logged and swallowed here.
	if err := h.forwarder.Forward(envelope); err != nil {
		utils.LogError("Error forwarding inbound message %s: %v", envelope.MessageID, err)
		respondTwiML(w, "Error processing message")
		return
	}

	phone := utils.CleanPhone(envelope.From)
	wsnotify.SendMessageEvent(services.CustomerIDForPhone(phone), phone, envelope.Message, models.DirectionInbound, time.Now())

	respondTwiML(w, "Message received and forwarded")
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Message>%s</Message>
</Response>`, message)
}
