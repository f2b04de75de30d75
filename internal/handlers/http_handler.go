package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"whatsapp-console/config"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/services"
	"whatsapp-console/internal/utils"
	"whatsapp-console/internal/wsnotify"

	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	cfg           *config.Config
	conversations *services.ConversationService
	store         models.ConversationRepository
	gateway       *services.GatewayService
	bulk          *services.BulkService
	importer      *services.ContactImportService
	contacts      models.ContactRepository
	s3Service     *services.S3Service
}

func NewHTTPHandler(
	cfg *config.Config,
	conversations *services.ConversationService,
	store models.ConversationRepository,
	gateway *services.GatewayService,
	bulk *services.BulkService,
	importer *services.ContactImportService,
	contacts models.ContactRepository,
	s3Service *services.S3Service,
) *HTTPHandler {
	return &HTTPHandler{
		cfg:           cfg,
		conversations: conversations,
		store:         store,
		gateway:       gateway,
		bulk:          bulk,
		importer:      importer,
		contacts:      contacts,
		s3Service:     s3Service,
	}
}

// @Summary Send a message
// @Description Send a single message to a customer through the gateway
// @Tags messages
// @Accept json
// @Produce json
// @Param request body models.SendMessageRequest true "Message details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /send-message [post]
func (h *HTTPHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request in /send-message: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.Message) == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Phone number and message are required"))
		return
	}

	result := h.gateway.Send(r.Context(), req.Phone, req.Message, req.CustomerID)
	if !result.Success {
		utils.LogError("Error sending message in /send-message: %s", result.Error)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error sending message: "+result.Error))
		return
	}

	phone := utils.NormalizePhone(req.Phone)
	record := &models.ConversationRecord{
		Sender:           phone,
		Recipient:        utils.CleanPhone(h.cfg.BusinessPhone),
		RecipientMessage: req.Message,
	}

	saved := true
	saveError := ""
	if err := h.store.Save(record); err != nil {
		// The message is already out; report the missing history entry
		// instead of failing the send.
		utils.LogError("Message sent to %s but not recorded: %v", phone, err)
		saved = false
		saveError = err.Error()
	} else {
		wsnotify.SendMessageEvent(services.CustomerIDForPhone(phone), phone, req.Message, models.DirectionOutbound, time.Now())
	}

	data := map[string]interface{}{
		"phone":     phone,
		"messageId": result.MessageID,
		"status":    result.Status,
		"saved":     saved,
	}
	if saveError != "" {
		data["saveError"] = saveError
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Message sent successfully", data))
}

// @Summary Send a bulk message
// @Description Send one message to many recipients sequentially
// @Tags messages
// @Accept json
// @Produce json
// @Param request body models.BulkMessageRequest true "Bulk message details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /send-bulk [post]
func (h *HTTPHandler) SendBulkMessage(w http.ResponseWriter, r *http.Request) {
	var req models.BulkMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request in /send-bulk: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	if len(req.Phones) == 0 || strings.TrimSpace(req.Message) == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Recipient list and message are required"))
		return
	}

	seen := make(map[string]bool, len(req.Phones))
	for _, phone := range req.Phones {
		normalized := utils.NormalizePhone(phone)
		if seen[normalized] {
			models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Duplicate recipient in list: "+phone))
			return
		}
		seen[normalized] = true
	}

	utils.LogInfo("Starting bulk send to %d recipients", len(req.Phones))

	report := h.bulk.SendBulk(req.Phones, req.Message)

	models.RespondWithJSON(w, http.StatusOK,
		models.NewSuccessResponse(fmt.Sprintf("Bulk send finished: %d sent, %d failed", report.Successful, report.Failed), report))
}

// @Summary List customers
// @Description List customers reconstructed from the conversation log
// @Tags conversations
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /customers [get]
func (h *HTTPHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.conversations.Customers()
	if err != nil {
		utils.LogError("Error building customers in /customers: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error loading customers: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Customers loaded", customers))
}

// @Summary Get all messages
// @Description Get every customer's ordered message history, keyed by customer id
// @Tags conversations
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /messages [get]
func (h *HTTPHandler) GetAllMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.conversations.Messages()
	if err != nil {
		utils.LogError("Error building messages in /messages: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error loading messages: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Messages loaded", messages))
}

// @Summary Get customer messages
// @Description Get the ordered message history for one customer phone
// @Tags conversations
// @Produce json
// @Param phone path string true "Customer phone number"
// @Success 200 {object} models.APIResponse
// @Router /customers/{phone}/messages [get]
func (h *HTTPHandler) GetCustomerMessages(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]
	if phone == "" {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Customer phone is required"))
		return
	}

	messages, err := h.conversations.MessagesFor(phone)
	if err != nil {
		utils.LogError("Error building messages in /customers/{phone}/messages: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error loading messages: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Messages loaded", messages))
}

// @Summary Dashboard statistics
// @Description Conversation totals and response-time summary for the dashboard
// @Tags conversations
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /dashboard-stats [get]
func (h *HTTPHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.conversations.Stats()
	if err != nil {
		utils.LogError("Error computing stats in /dashboard-stats: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error computing statistics: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Statistics computed", stats))
}

// @Summary Import contacts
// @Description Import contacts from a CSV or Excel upload
// @Tags contacts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV (.csv) or Excel (.xlsx/.xls/.xlsm) file"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /contacts/import [post]
func (h *HTTPHandler) ImportContacts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.LogError("Upload too large in /contacts/import: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large. Limit is 10MB"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.LogError("Error reading upload in /contacts/import: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error reading uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.LogError("Error reading upload in /contacts/import: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error reading uploaded file"))
		return
	}

	var candidates []*models.Contact
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		candidates = h.importer.ParseCSV(bytes.NewReader(data))
	case ".xlsx", ".xls", ".xlsm":
		candidates, err = h.importer.ParseExcel(bytes.NewReader(data))
		if err != nil {
			utils.LogError("Error parsing spreadsheet in /contacts/import: %v", err)
			models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
			return
		}
	default:
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Please upload a .csv, .xlsx, .xls or .xlsm file"))
		return
	}

	if len(candidates) == 0 {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("No valid contacts found in file"))
		return
	}

	// Archive the raw upload; imports proceed even when S3 is down.
	if h.s3Service != nil {
		if _, err := h.s3Service.ArchiveImportFile(data, header.Filename); err != nil {
			utils.LogWarning("Could not archive import file: %v", err)
		}
	}

	report, err := h.importer.Import(candidates)
	if err != nil {
		utils.LogError("Error importing contacts in /contacts/import: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error importing contacts: "+err.Error()))
		return
	}

	for _, contact := range report.Contacts {
		wsnotify.SendContactEvent(contact.ID, contact.Name, contact.Phone, contact.Source)
	}

	message := fmt.Sprintf("Imported %d contacts", report.Imported)
	if report.Skipped > 0 {
		message = fmt.Sprintf("Imported %d contacts (%d duplicates skipped)", report.Imported, report.Skipped)
	}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse(message, report))
}

// @Summary List contacts
// @Tags contacts
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /contacts [get]
func (h *HTTPHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.GetAll()
	if err != nil {
		utils.LogError("Error listing contacts in /contacts: %v", err)
		models.RespondWithJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Error loading contacts: "+err.Error()))
		return
	}

	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contacts loaded", contacts))
}

// @Summary Add a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body models.AddContactRequest true "Contact details"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /contacts [post]
func (h *HTTPHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req models.AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogError("Error decoding request in POST /contacts: %v", err)
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse("Error decoding request: "+err.Error()))
		return
	}

	contact, err := h.importer.AddManual(req.Name, req.Phone)
	if err != nil {
		models.RespondWithJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
		return
	}

	wsnotify.SendContactEvent(contact.ID, contact.Name, contact.Phone, contact.Source)
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contact added", contact))
}

// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Param id path string true "Contact id"
// @Param phone query string false "Contact phone used as fallback lookup"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /contacts/{id} [delete]
func (h *HTTPHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	phone := r.URL.Query().Get("phone")

	if err := h.contacts.Delete(id, phone); err != nil {
		utils.LogError("Error deleting contact %s: %v", id, err)
		models.RespondWithJSON(w, http.StatusNotFound, models.NewErrorResponse("Error deleting contact: "+err.Error()))
		return
	}

	data := map[string]interface{}{"id": id}
	models.RespondWithJSON(w, http.StatusOK, models.NewSuccessResponse("Contact deleted", data))
}

// @Summary Export contacts
// @Description Download the contact list as CSV
// @Tags contacts
// @Produce text/csv
// @Success 200
// @Router /contacts/export [get]
func (h *HTTPHandler) ExportContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)

	if err := h.importer.ExportCSV(w); err != nil {
		utils.LogError("Error exporting contacts in /contacts/export: %v", err)
	}
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.cfg.Environment,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
