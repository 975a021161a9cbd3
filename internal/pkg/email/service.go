// internal/pkg/email/service.go
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/your-org/foodiehub-backend/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateNames = []string{
	string(EmailTypeOrderConfirmation),
	string(EmailTypeOrderStatusUpdate),
	string(EmailTypePaymentSuccess),
	string(EmailTypePaymentFailed),
}

// Composer renders the transactional emails. It does no I/O after construction.
type Composer struct {
	siteName  string
	siteURL   string
	templates map[string]*template.Template
}

// NewComposer parses the embedded templates
func NewComposer(cfg config.EmailConfig) (*Composer, error) {
	c := &Composer{
		siteName:  cfg.FromName,
		siteURL:   cfg.BaseURL,
		templates: make(map[string]*template.Template, len(templateNames)),
	}

	for _, name := range templateNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		c.templates[name] = tmpl
	}

	return c, nil
}

// OrderConfirmation builds the email sent after an order is placed
func (c *Composer) OrderConfirmation(to string, data OrderConfirmationData) (*Email, error) {
	data.EmailTemplateData = c.base(data.CustomerName)
	return c.compose(to, fmt.Sprintf("Order Confirmation #%d", data.OrderID), EmailTypeOrderConfirmation, data)
}

// OrderStatusUpdate builds the email sent when an admin moves an order
func (c *Composer) OrderStatusUpdate(to string, data OrderStatusUpdateData) (*Email, error) {
	data.EmailTemplateData = c.base(data.CustomerName)
	return c.compose(to, fmt.Sprintf("Order Update - Order #%d", data.OrderID), EmailTypeOrderStatusUpdate, data)
}

// PaymentSuccess builds the receipt for a completed payment
func (c *Composer) PaymentSuccess(to string, data PaymentNotificationData) (*Email, error) {
	data.EmailTemplateData = c.base(data.CustomerName)
	return c.compose(to, fmt.Sprintf("Payment Successful - Order #%d", data.OrderID), EmailTypePaymentSuccess, data)
}

// PaymentFailed builds the notice for a failed payment
func (c *Composer) PaymentFailed(to string, data PaymentNotificationData) (*Email, error) {
	data.EmailTemplateData = c.base(data.CustomerName)
	return c.compose(to, fmt.Sprintf("Payment Failed - Order #%d", data.OrderID), EmailTypePaymentFailed, data)
}

func (c *Composer) base(customerName string) EmailTemplateData {
	return GetBaseTemplateData(c.siteName, c.siteURL, customerName)
}

func (c *Composer) compose(to, subject string, kind EmailType, data any) (*Email, error) {
	html, err := c.render(string(kind), data)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: html,
		Type:        kind,
	}, nil
}

func (c *Composer) render(name string, data any) (string, error) {
	tmpl, exists := c.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
