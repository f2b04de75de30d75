package services

import (
	"context"
	"fmt"
	"time"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"
)

// Gap between successive dispatch attempts. Fixed, not adaptive: the
// point is to stay friendly to the gateway, not to back off on failure.
const defaultBulkDelay = 500 * time.Millisecond

type MessageSender interface {
	Send(ctx context.Context, phone string, message string, customerID int) *models.SendResult
}

// BulkService sends one message to many recipients, one at a time, in
// the order given. A failed recipient never aborts the batch, and the
// report always holds exactly one entry per recipient. Once started a
// batch runs to completion; there is no cancellation.
type BulkService struct {
	sender        MessageSender
	conversations models.ConversationRepository
	businessPhone string
	delay         time.Duration
}

func NewBulkService(sender MessageSender, conversations models.ConversationRepository, businessPhone string) *BulkService {
	return &BulkService{
		sender:        sender,
		conversations: conversations,
		businessPhone: utils.CleanPhone(businessPhone),
		delay:         defaultBulkDelay,
	}
}

func (s *BulkService) SendBulk(phones []string, message string) *models.BulkReport {
	report := &models.BulkReport{
		Results: make([]models.BulkDispatchResult, 0, len(phones)),
		Total:   len(phones),
	}

	for i, phone := range phones {
		result := s.sender.Send(context.Background(), phone, message, 0)

		entry := models.BulkDispatchResult{
			Phone:   phone,
			Success: result.Success,
			Error:   result.Error,
		}
		report.Results = append(report.Results, entry)

		if result.Success {
			report.Successful++
		} else {
			report.Failed++
		}

		if i < len(phones)-1 && s.delay > 0 {
			time.Sleep(s.delay)
		}
	}

	// Write successful sends back to the conversation log after the
	// loop. A failed write is reported on the recipient's entry without
	// touching its send outcome, so "delivered but not logged" stays
	// visible to the operator.
	for i := range report.Results {
		if !report.Results[i].Success {
			continue
		}

		record := &models.ConversationRecord{
			Sender:           utils.NormalizePhone(report.Results[i].Phone),
			Recipient:        s.businessPhone,
			RecipientMessage: message,
		}
		if err := s.conversations.Save(record); err != nil {
			utils.LogError("Message sent to %s but not recorded: %v", report.Results[i].Phone, err)
			report.Results[i].Saved = false
			report.Results[i].Error = fmt.Sprintf("message sent but failed to record: %v", err)
			continue
		}
		report.Results[i].Saved = true
	}

	return report
}
