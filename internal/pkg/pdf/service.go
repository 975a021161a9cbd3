// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// ReceiptLine is one row of a receipt
type ReceiptLine struct {
	Name         string
	Quantity     int
	PricePerUnit string
	Subtotal     string
}

// ReceiptData is everything printed on an order receipt
type ReceiptData struct {
	SiteName        string
	OrderID         uint
	OrderDate       string
	CustomerName    string
	CustomerEmail   string
	DeliveryAddress string
	OrderStatus     string
	PaymentStatus   string
	TotalAmount     string
	Items           []ReceiptLine
}

// Service renders order receipts as PDF through wkhtmltopdf
type Service struct {
	tmpl *template.Template
}

// NewService creates a new PDF service
func NewService() *Service {
	return &Service{
		tmpl: template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// GenerateReceipt renders data to a PDF document
func (s *Service) GenerateReceipt(data ReceiptData) ([]byte, error) {
	htmlContent, err := s.RenderHTML(data)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(8)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

// RenderHTML renders the receipt markup fed to wkhtmltopdf
func (s *Service) RenderHTML(data ReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.String(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt #{{.OrderID}}</title>
    <style>
        body { font-family: Arial, sans-serif; font-size: 12px; color: #333; }
        h1 { color: #e8590c; margin-bottom: 0; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { padding: 6px; border-bottom: 1px solid #ddd; }
        th { background-color: #f8f9fa; text-align: left; }
        .num { text-align: right; }
        .total { font-size: 14px; font-weight: bold; }
    </style>
</head>
<body>
    <h1>{{.SiteName}}</h1>
    <p>Receipt for order <strong>#{{.OrderID}}</strong><br>{{.OrderDate}}</p>
    <p>
        {{.CustomerName}}<br>
        {{.CustomerEmail}}<br>
        {{.DeliveryAddress}}
    </p>
    <p>Order status: {{.OrderStatus}} &middot; Payment: {{.PaymentStatus}}</p>
    <table>
        <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Subtotal</th></tr>
        {{range .Items}}
        <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">${{.PricePerUnit}}</td><td class="num">${{.Subtotal}}</td></tr>
        {{end}}
        <tr><td colspan="3" class="num total">Total</td><td class="num total">${{.TotalAmount}}</td></tr>
    </table>
</body>
</html>`
