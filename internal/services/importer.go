package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"whatsapp-console/internal/models"
	"whatsapp-console/internal/utils"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ContactImportService parses delimited and spreadsheet uploads into
// contact candidates and merges them into the stored contact list.
// Malformed rows are skipped one by one; a row without a usable phone
// number is dropped silently rather than failing the import.
type ContactImportService struct {
	contacts models.ContactRepository
}

func NewContactImportService(contacts models.ContactRepository) *ContactImportService {
	return &ContactImportService{contacts: contacts}
}

// ParseCSV reads name,phone rows. An optional header row is recognized
// by the words "name" or "phone" in the first line.
func (s *ContactImportService) ParseCSV(r io.Reader) []*models.Contact {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var candidates []*models.Contact
	first := true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			utils.LogWarning("Skipping malformed CSV row: %v", err)
			continue
		}

		if first {
			first = false
			header := strings.ToLower(strings.Join(row, ","))
			if strings.Contains(header, "name") || strings.Contains(header, "phone") {
				continue
			}
		}

		if len(row) < 2 {
			continue
		}

		candidate := buildCandidate(row[0], row[1], models.ContactSourceCSV)
		if candidate != nil {
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

// ParseExcel reads the first sheet of a workbook. The header row must
// carry columns whose names contain "name" and "phone" (any case).
func (s *ContactImportService) ParseExcel(r io.Reader) ([]*models.Contact, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening spreadsheet: %v", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %v", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("spreadsheet must have a header row and at least one data row")
	}

	nameCol, phoneCol := -1, -1
	for i, header := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		if nameCol == -1 && strings.Contains(h, "name") {
			nameCol = i
		}
		if phoneCol == -1 && strings.Contains(h, "phone") {
			phoneCol = i
		}
	}
	if nameCol == -1 || phoneCol == -1 {
		return nil, fmt.Errorf("spreadsheet must have Name and Phone columns")
	}

	var candidates []*models.Contact
	for _, row := range rows[1:] {
		var name, phone string
		if nameCol < len(row) {
			name = row[nameCol]
		}
		if phoneCol < len(row) {
			phone = row[phoneCol]
		}

		candidate := buildCandidate(name, phone, models.ContactSourceCSV)
		if candidate != nil {
			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}

// Import merges candidates into the stored contact list. A candidate
// whose normalized phone is already present, in the store or earlier in
// the same batch, is counted as skipped. No two contacts in the working
// set ever share a normalized phone.
func (s *ContactImportService) Import(candidates []*models.Contact) (*models.ImportReport, error) {
	existing, err := s.contacts.GetAll()
	if err != nil {
		return nil, fmt.Errorf("error loading existing contacts: %v", err)
	}

	known := make(map[string]bool, len(existing))
	for _, contact := range existing {
		known[contact.Phone] = true
	}

	report := &models.ImportReport{}

	for _, candidate := range candidates {
		if known[candidate.Phone] {
			report.Skipped++
			continue
		}

		if err := s.contacts.Save(candidate); err != nil {
			utils.LogError("Error saving imported contact %s: %v", candidate.Phone, err)
			report.Skipped++
			continue
		}

		known[candidate.Phone] = true
		report.Imported++
		report.Contacts = append(report.Contacts, candidate)
	}

	return report, nil
}

// AddManual validates and stores a single operator-entered contact.
func (s *ContactImportService) AddManual(name string, phone string) (*models.Contact, error) {
	candidate := buildCandidate(name, phone, models.ContactSourceManual)
	if candidate == nil {
		return nil, fmt.Errorf("invalid phone number")
	}

	existing, err := s.contacts.GetByPhone(candidate.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("contact with phone %s already exists", candidate.Phone)
	}

	if err := s.contacts.Save(candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// ExportCSV writes the full contact list as name,phone,source rows with
// a header, the shape accepted back by ParseCSV.
func (s *ContactImportService) ExportCSV(w io.Writer) error {
	contacts, err := s.contacts.GetAll()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Name", "Phone", "Source"}); err != nil {
		return fmt.Errorf("error writing header: %v", err)
	}
	for _, contact := range contacts {
		if err := writer.Write([]string{contact.Name, contact.Phone, contact.Source}); err != nil {
			return fmt.Errorf("error writing contact: %v", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func buildCandidate(name string, phone string, source string) *models.Contact {
	cleanPhone, ok := utils.CleanImportedPhone(phone)
	if !ok {
		return nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = cleanPhone
	}

	return &models.Contact{
		ID:     uuid.NewString(),
		Name:   name,
		Phone:  cleanPhone,
		Source: source,
	}
}
