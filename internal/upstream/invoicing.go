package upstream

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/club-checkout/internal/config"
)

// InvoiceLine - строка счёта. Суммы передаются строками с двумя знаками.
type InvoiceLine struct {
	Description string `json:"description"`
	Net         string `json:"net"`
	VATRate     string `json:"vatRate"`
	VAT         string `json:"vat"`
	Gross       string `json:"gross"`
}

// InvoiceCustomer - получатель счёта.
type InvoiceCustomer struct {
	Name       string `json:"name"`
	FiscalCode string `json:"fiscalCode"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
}

// InvoiceRequest - запрос на выставление счёта.
type InvoiceRequest struct {
	OrderID  string          `json:"orderId"`
	Customer InvoiceCustomer `json:"customer"`
	Lines    []InvoiceLine   `json:"lines"`
	Net      string          `json:"net"`
	VAT      string          `json:"vat"`
	Gross    string          `json:"gross"`
}

type invoiceResponse struct {
	Number string `json:"number"`
}

// InvoicingClient выставляет счета через сервис счетов.
type InvoicingClient struct {
	api apiClient
}

// NewInvoicingClient создаёт клиент сервиса счетов.
func NewInvoicingClient(cfg config.APIClient) *InvoicingClient {
	return &InvoicingClient{api: newAPIClient(cfg)}
}

// CreateInvoice выставляет счёт и возвращает его номер.
func (c *InvoicingClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (string, error) {
	const op = "upstream.CreateInvoice"
	var resp invoiceResponse
	if err := c.api.postJSON(ctx, "/invoices", req, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.Number == "" {
		return "", fmt.Errorf("%s: empty invoice number", op)
	}
	return resp.Number, nil
}
