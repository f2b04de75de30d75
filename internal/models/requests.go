package models

type SendMessageRequest struct {
	Phone      string `json:"phone" example:"+919876543210" swagger:"required" description:"Recipient phone number with country code"`
	Message    string `json:"message" example:"Hello, how can we help?" swagger:"required" description:"Message text"`
	CustomerID int    `json:"customerId"`
}

type BulkMessageRequest struct {
	Phones  []string `json:"phones" swagger:"required" description:"Distinct recipient phone numbers"`
	Message string   `json:"message" swagger:"required" description:"Message text sent to every recipient"`
}

type AddContactRequest struct {
	Name  string `json:"name" swagger:"required"`
	Phone string `json:"phone" swagger:"required"`
}
