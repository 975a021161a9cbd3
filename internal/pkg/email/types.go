// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
	EmailTypePaymentSuccess    EmailType = "payment_success"
	EmailTypePaymentFailed     EmailType = "payment_failed"
	EmailTypeTest              EmailType = "test"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content,omitempty"`
	TextContent string    `json:"text_content,omitempty"`
	Type        EmailType `json:"type"`
}

// IsHTML reports whether the message carries an HTML body
func (e *Email) IsHTML() bool {
	return e.HTMLContent != ""
}

// Body returns the HTML body when present, the text body otherwise
func (e *Email) Body() string {
	if e.IsHTML() {
		return e.HTMLContent
	}
	return e.TextContent
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName     string
	SiteURL      string
	CustomerName string
	Year         int
}

// OrderLine is one row of the order table in emails
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

// OrderConfirmationData contains data for the order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID         uint
	OrderDate       string
	TotalAmount     string
	DeliveryAddress string
	PaymentLink     string
	Items           []OrderLine
}

// OrderStatusUpdateData contains data for the order status email
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderID       uint
	OrderStatus   string
	PaymentStatus string
}

// PaymentNotificationData contains data for payment success and failure emails
type PaymentNotificationData struct {
	EmailTemplateData
	OrderID       uint
	Amount        string
	TransactionID string
	PaymentDate   string
	FailureReason string
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, customerName string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:     siteName,
		SiteURL:      siteURL,
		CustomerName: customerName,
		Year:         time.Now().Year(),
	}
}
