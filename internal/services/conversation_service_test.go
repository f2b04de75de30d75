package services

import (
	"reflect"
	"testing"
	"time"
	"whatsapp-console/internal/models"
)

const testBusinessPhone = "+918487058582"

type fakeConversationRepo struct {
	records []*models.ConversationRecord
	saveErr error
	nextID  int64
}

func (f *fakeConversationRepo) GetAll() ([]*models.ConversationRecord, error) {
	// Newest first, the order the MySQL adapter returns.
	sorted := make([]*models.ConversationRecord, len(f.records))
	copy(sorted, f.records)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].CreatedAt.After(sorted[i].CreatedAt) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	return sorted, nil
}

func (f *fakeConversationRepo) Save(record *models.ConversationRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	record.ID = f.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	f.records = append(f.records, record)
	return nil
}

func newTestService(repo *fakeConversationRepo, now time.Time) *ConversationService {
	s := NewConversationService(repo, testBusinessPhone)
	s.now = func() time.Time { return now }
	return s
}

func TestCustomerIDForPhone(t *testing.T) {
	id := CustomerIDForPhone("+919876543210")
	if id < 1 || id > 1000 {
		t.Fatalf("id %d outside expected range 1..1000", id)
	}
	if id != CustomerIDForPhone("+919876543210") {
		t.Error("id is not deterministic for the same phone")
	}
	if CustomerIDForPhone("") != models.UnknownCustomerID {
		t.Errorf("empty phone should map to sentinel %d", models.UnknownCustomerID)
	}
	if CustomerIDForPhone("") != CustomerIDForPhone("") {
		t.Error("sentinel id is not stable")
	}
}

func TestBuildCustomersDeduplicatesByPhone(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 3, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "hello again", CreatedAt: now},
		{ID: 2, Sender: "whatsapp:+91 98765 43210", Recipient: testBusinessPhone, SenderMessage: "hello", CreatedAt: now.Add(-time.Hour)},
		{ID: 1, Sender: "+14155238886", Recipient: testBusinessPhone, SenderMessage: "hi", CreatedAt: now.Add(-2 * time.Hour)},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	customers := s.BuildCustomers(records)

	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}

	seen := make(map[string]bool)
	for _, c := range customers {
		if seen[c.Phone] {
			t.Errorf("duplicate customer phone %s", c.Phone)
		}
		seen[c.Phone] = true
	}
}

func TestBuildCustomersSkipsBusinessAndEmptySenders(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 1, Sender: testBusinessPhone, Recipient: "+919876543210", SenderMessage: "hello from us", CreatedAt: now},
		{ID: 2, Sender: "whatsapp:" + testBusinessPhone, Recipient: "+919876543210", SenderMessage: "again", CreatedAt: now},
		{ID: 3, Sender: "   ", Recipient: testBusinessPhone, SenderMessage: "ghost", CreatedAt: now},
		{ID: 4, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "hi", CreatedAt: now},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	customers := s.BuildCustomers(records)

	if len(customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(customers))
	}
	if customers[0].Phone != "+919876543210" {
		t.Errorf("unexpected customer phone %s", customers[0].Phone)
	}
	for _, c := range customers {
		if c.Phone == testBusinessPhone {
			t.Error("business phone must never appear as a customer")
		}
	}
}

func TestBuildCustomersNameExtraction(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"name is", "My name is Asha", "Asha"},
		{"this is", "Hello, this is Priya", "Priya"},
		{"call me", "You can call me Dev", "Dev"},
		{"speaking", "Ravi speaking", "Ravi"},
		// The capture is greedy through letters and spaces.
		{"greedy tail", "Hi, I'm Rahul and I need help", "Rahul and I need help"},
		{"no pattern falls back to phone", "I want to order a cake", "987 654 3210"},
		{"empty falls back to phone", "", "987 654 3210"},
	}

	now := time.Now()
	s := newTestService(&fakeConversationRepo{}, now)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []*models.ConversationRecord{
				{ID: 1, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: tt.message, CreatedAt: now},
			}
			customers := s.BuildCustomers(records)
			if len(customers) != 1 {
				t.Fatalf("expected 1 customer, got %d", len(customers))
			}
			if customers[0].Name != tt.want {
				t.Errorf("name = %q, want %q", customers[0].Name, tt.want)
			}
		})
	}
}

func TestBuildCustomersOnlineWindow(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 2, Sender: "+911111111111", Recipient: testBusinessPhone, SenderMessage: "recent", CreatedAt: now.Add(-10 * time.Minute)},
		{ID: 1, Sender: "+912222222222", Recipient: testBusinessPhone, SenderMessage: "stale", CreatedAt: now.Add(-2 * time.Hour)},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	customers := s.BuildCustomers(records)

	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}
	if !customers[0].IsOnline {
		t.Error("customer active 10 minutes ago should be online")
	}
	if customers[1].IsOnline {
		t.Error("customer active 2 hours ago should not be online")
	}
}

func TestBuildMessagesEmitsBothSlots(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{
			ID:               7,
			Sender:           "+919876543210",
			Recipient:        testBusinessPhone,
			SenderMessage:    "I need help",
			RecipientMessage: "Sure, tell us more",
			CreatedAt:        now,
		},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	messages := s.BuildMessages(records, "+919876543210")

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages from one record, got %d", len(messages))
	}
	if messages[0].ID != 14 || messages[0].Direction != models.DirectionInbound {
		t.Errorf("sender slot: got id %d direction %s, want 14 inbound", messages[0].ID, messages[0].Direction)
	}
	if messages[1].ID != 15 || messages[1].Direction != models.DirectionOutbound {
		t.Errorf("recipient slot: got id %d direction %s, want 15 outbound", messages[1].ID, messages[1].Direction)
	}
	for _, m := range messages {
		if m.Status != models.StatusRead {
			t.Errorf("status = %q, want %q", m.Status, models.StatusRead)
		}
		if m.CustomerID != CustomerIDForPhone("+919876543210") {
			t.Errorf("customer id = %d, want %d", m.CustomerID, CustomerIDForPhone("+919876543210"))
		}
	}
}

func TestBuildMessagesMatchesSenderColumnOnly(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 1, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "hi", CreatedAt: now},
		// Business-initiated row: the customer sits in the recipient
		// column and is not retrieved.
		{ID: 2, Sender: testBusinessPhone, Recipient: "+919876543210", SenderMessage: "promo", CreatedAt: now},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	messages := s.BuildMessages(records, "+919876543210")

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].ID != 2 {
		t.Errorf("message id = %d, want 2", messages[0].ID)
	}
}

func TestBuildMessagesSortedAndIdempotent(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 3, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "third", CreatedAt: now},
		{ID: 1, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "first", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, Sender: "+91 98765 43210", Recipient: testBusinessPhone, SenderMessage: "second", RecipientMessage: "reply", CreatedAt: now.Add(-time.Hour)},
	}

	s := newTestService(&fakeConversationRepo{}, now)

	first := s.BuildMessages(records, "whatsapp:+919876543210")
	for i := 1; i < len(first); i++ {
		if first[i].Timestamp.Before(first[i-1].Timestamp) {
			t.Fatalf("messages not sorted by timestamp at index %d", i)
		}
	}

	wantTexts := []string{"first", "second", "reply", "third"}
	var gotTexts []string
	for _, m := range first {
		gotTexts = append(gotTexts, m.Text)
	}
	if !reflect.DeepEqual(gotTexts, wantTexts) {
		t.Errorf("message order %v, want %v", gotTexts, wantTexts)
	}

	second := s.BuildMessages(records, "whatsapp:+919876543210")
	if !reflect.DeepEqual(first, second) {
		t.Error("reconstruction is not idempotent for identical input")
	}
}

func TestBuildMessagesSkipsBlankTexts(t *testing.T) {
	now := time.Now()
	records := []*models.ConversationRecord{
		{ID: 1, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "   ", RecipientMessage: "reply only", CreatedAt: now},
	}

	s := newTestService(&fakeConversationRepo{}, now)
	messages := s.BuildMessages(records, "+919876543210")

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].ID != 3 || messages[0].Direction != models.DirectionOutbound {
		t.Errorf("got id %d direction %s, want 3 outbound", messages[0].ID, messages[0].Direction)
	}
}

func TestMessagesGroupsByCustomerID(t *testing.T) {
	now := time.Now()
	repo := &fakeConversationRepo{
		records: []*models.ConversationRecord{
			{ID: 1, Sender: "+911111111111", Recipient: testBusinessPhone, SenderMessage: "hi", CreatedAt: now.Add(-time.Hour)},
			{ID: 2, Sender: "+912222222222", Recipient: testBusinessPhone, SenderMessage: "hello", RecipientMessage: "hello back", CreatedAt: now},
		},
		nextID: 2,
	}
	s := newTestService(repo, now)

	index, err := s.Messages()
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if len(index) != 2 {
		t.Fatalf("expected 2 customers in index, got %d", len(index))
	}

	first := index[CustomerIDForPhone("+911111111111")]
	if len(first) != 1 || first[0].Text != "hi" {
		t.Errorf("first customer's thread = %+v", first)
	}

	second := index[CustomerIDForPhone("+912222222222")]
	if len(second) != 2 {
		t.Fatalf("second customer's thread has %d messages, want 2", len(second))
	}
	if second[0].Direction != models.DirectionInbound || second[1].Direction != models.DirectionOutbound {
		t.Errorf("directions = %s, %s", second[0].Direction, second[1].Direction)
	}

	// Each thread matches the single-customer reconstruction.
	perCustomer, err := s.MessagesFor("+912222222222")
	if err != nil {
		t.Fatalf("MessagesFor: %v", err)
	}
	if !reflect.DeepEqual(second, perCustomer) {
		t.Error("index thread differs from per-customer reconstruction")
	}
}

func TestRoundTripSentMessageReappearsOutbound(t *testing.T) {
	now := time.Now()
	repo := &fakeConversationRepo{
		records: []*models.ConversationRecord{
			{ID: 1, Sender: "+919876543210", Recipient: testBusinessPhone, SenderMessage: "hello", CreatedAt: now.Add(-time.Hour)},
		},
		nextID: 1,
	}
	s := newTestService(repo, now)

	sent := &models.ConversationRecord{
		Sender:           "+919876543210",
		Recipient:        testBusinessPhone,
		RecipientMessage: "your order is ready",
	}
	if err := repo.Save(sent); err != nil {
		t.Fatalf("save: %v", err)
	}

	messages, err := s.MessagesFor("+919876543210")
	if err != nil {
		t.Fatalf("MessagesFor: %v", err)
	}

	last := messages[len(messages)-1]
	if last.Direction != models.DirectionOutbound {
		t.Errorf("direction = %s, want outbound", last.Direction)
	}
	if last.Text != "your order is ready" {
		t.Errorf("text = %q, want the sent message", last.Text)
	}
}

func TestStats(t *testing.T) {
	now := time.Now()
	repo := &fakeConversationRepo{
		records: []*models.ConversationRecord{
			// Active conversation: inbound then outbound 10 minutes later.
			{ID: 1, Sender: "+911111111111", Recipient: testBusinessPhone, SenderMessage: "hi", CreatedAt: now.Add(-30 * time.Minute)},
			{ID: 2, Sender: "+911111111111", Recipient: testBusinessPhone, RecipientMessage: "hello!", CreatedAt: now.Add(-20 * time.Minute)},
			// Stale conversation from three days ago.
			{ID: 3, Sender: "+912222222222", Recipient: testBusinessPhone, SenderMessage: "old", CreatedAt: now.Add(-72 * time.Hour)},
		},
		nextID: 3,
	}
	s := newTestService(repo, now)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.TotalConversations != 2 {
		t.Errorf("total = %d, want 2", stats.TotalConversations)
	}
	if stats.ActiveConversations != 1 {
		t.Errorf("active = %d, want 1", stats.ActiveConversations)
	}
	if stats.AvgResponseTime != "10 min" {
		t.Errorf("avg response time = %q, want \"10 min\"", stats.AvgResponseTime)
	}
	if stats.CustomerSatisfaction < 85 || stats.CustomerSatisfaction > 95 {
		t.Errorf("satisfaction %.1f outside clamp 85..95", stats.CustomerSatisfaction)
	}
}
