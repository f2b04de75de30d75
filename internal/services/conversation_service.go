package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"
)

// Customers with activity in this window show as online.
const onlineWindow = 30 * time.Minute

// Patterns used to pull a display name out of the first message of a
// conversation. The capture is greedy through letters and spaces, so a
// phrase like "I'm Rahul and I need help" yields the whole tail; that
// matches what the dashboard has always shown.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:name is|I'm|I am)\s+([A-Za-z\s]+)`),
	regexp.MustCompile(`(?i)(?:this is|call me)\s+([A-Za-z\s]+)`),
	regexp.MustCompile(`(?i)^([A-Za-z\s]+)(?:\s+here|\s+speaking)`),
}

// ConversationService rebuilds the customer list and per-customer
// message sequences from the flat conversation log. Everything here is
// recomputed on each read; nothing is cached or mutated in place.
type ConversationService struct {
	repo          models.ConversationRepository
	businessPhone string
	now           func() time.Time
}

func NewConversationService(repo models.ConversationRepository, businessPhone string) *ConversationService {
	return &ConversationService{
		repo:          repo,
		businessPhone: utils.CleanPhone(businessPhone),
		now:           time.Now,
	}
}

// CustomerIDForPhone derives a stable customer id from a normalized
// phone string. Invalid input maps to the fixed sentinel id so repeated
// reconstructions stay idempotent.
func CustomerIDForPhone(phone string) int {
	if phone == "" {
		return models.UnknownCustomerID
	}

	var h int32
	for _, c := range phone {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return int(h)%1000 + 1
}

// BuildCustomers derives one Customer per distinct non-business sender
// phone, in first-seen order. Records arrive newest-first from the
// store, so the first record seen for a phone carries its most recent
// activity.
func (s *ConversationService) BuildCustomers(records []*models.ConversationRecord) []*models.Customer {
	seen := make(map[string]bool)
	var customers []*models.Customer

	for _, record := range records {
		phone := utils.CleanPhone(record.Sender)
		if phone == "" {
			continue
		}
		if phone == s.businessPhone {
			continue
		}
		if seen[phone] {
			continue
		}
		seen[phone] = true

		name := extractNameFromMessage(record.SenderMessage)
		if name == "" {
			name = utils.FormatPhoneForDisplay(phone)
		}

		customers = append(customers, &models.Customer{
			ID:           CustomerIDForPhone(phone),
			Name:         name,
			Phone:        phone,
			LastActivity: record.CreatedAt,
			IsOnline:     s.now().Sub(record.CreatedAt) < onlineWindow,
			UnreadCount:  0,
		})
	}

	return customers
}

// BuildMessages derives the ordered message sequence for one customer.
// Only records where the customer is the sender are matched; a
// business-initiated row with the customer in the recipient column is
// not retrieved. A matching record can emit two messages: the customer
// text (record id doubled) and the business reply (doubled plus one).
func (s *ConversationService) BuildMessages(records []*models.ConversationRecord, customerPhone string) []*models.Message {
	phone := utils.CleanPhone(customerPhone)
	customerID := CustomerIDForPhone(phone)

	var messages []*models.Message

	for _, record := range records {
		if utils.CleanPhone(record.Sender) != phone {
			continue
		}

		if strings.TrimSpace(record.SenderMessage) != "" {
			messages = append(messages, &models.Message{
				ID:         record.ID * 2,
				CustomerID: customerID,
				Text:       record.SenderMessage,
				Timestamp:  record.CreatedAt,
				Direction:  models.DirectionInbound,
				Status:     models.StatusRead,
			})
		}

		if strings.TrimSpace(record.RecipientMessage) != "" {
			messages = append(messages, &models.Message{
				ID:         record.ID*2 + 1,
				CustomerID: customerID,
				Text:       record.RecipientMessage,
				Timestamp:  record.CreatedAt,
				Direction:  models.DirectionOutbound,
				Status:     models.StatusRead,
			})
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages
}

// AllMessages groups every customer's ordered sequence by customer id.
func (s *ConversationService) AllMessages(records []*models.ConversationRecord) map[int][]*models.Message {
	result := make(map[int][]*models.Message)
	for _, customer := range s.BuildCustomers(records) {
		result[customer.ID] = s.BuildMessages(records, customer.Phone)
	}
	return result
}

// Customers reads the full log and reconstructs the customer list.
func (s *ConversationService) Customers() ([]*models.Customer, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	return s.BuildCustomers(records), nil
}

// Messages reads the full log and reconstructs every customer's
// conversation, keyed by customer id.
func (s *ConversationService) Messages() (map[int][]*models.Message, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	return s.AllMessages(records), nil
}

// MessagesFor reads the full log and reconstructs one customer's
// conversation.
func (s *ConversationService) MessagesFor(customerPhone string) ([]*models.Message, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	return s.BuildMessages(records, customerPhone), nil
}

// Stats computes the dashboard cards from a full reconstruction.
func (s *ConversationService) Stats() (*models.DashboardStats, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	customers := s.BuildCustomers(records)
	now := s.now()

	stats := &models.DashboardStats{
		TotalConversations: len(customers),
		AvgResponseTime:    "< 1 min",
	}

	var totalMessages int
	var totalResponseTime time.Duration
	var responseCount int
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, customer := range customers {
		messages := s.BuildMessages(records, customer.Phone)
		totalMessages += len(messages)
		if len(messages) == 0 {
			continue
		}

		last := messages[len(messages)-1]
		if now.Sub(last.Timestamp) < 24*time.Hour {
			stats.ActiveConversations++
		}

		if !messages[0].Timestamp.Before(todayStart) {
			stats.NewToday++
		}

		for i := 1; i < len(messages); i++ {
			prev, cur := messages[i-1], messages[i]
			if prev.Direction == models.DirectionInbound && cur.Direction == models.DirectionOutbound {
				totalResponseTime += cur.Timestamp.Sub(prev.Timestamp)
				responseCount++
			}
		}
	}

	if responseCount > 0 {
		avgMins := int(totalResponseTime.Minutes()/float64(responseCount) + 0.5)
		if avgMins > 0 {
			stats.AvgResponseTime = fmt.Sprintf("%d min", avgMins)
		}
	}

	avgPerConversation := 0.0
	if len(customers) > 0 {
		avgPerConversation = float64(totalMessages) / float64(len(customers))
	}
	satisfaction := 85 + avgPerConversation*2
	if satisfaction > 95 {
		satisfaction = 95
	}
	stats.CustomerSatisfaction = float64(int(satisfaction*10+0.5)) / 10

	return stats, nil
}

func extractNameFromMessage(message string) string {
	if message == "" {
		return ""
	}

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(message)
		if len(match) > 1 {
			name := strings.TrimSpace(match[1])
			if len(name) > 1 && len(name) < 50 {
				return name
			}
		}
	}

	return ""
}
