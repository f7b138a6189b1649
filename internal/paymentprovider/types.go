package paymentprovider

// Типы событий вебхука провайдера.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// PaymentStatusPaid - статус оплаченной сессии.
const PaymentStatusPaid = "paid"

// CheckoutSessionRequest - запрос на создание страницы оплаты.
// Amount указывается в минимальных единицах валюты (центах).
type CheckoutSessionRequest struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Amount            int64             `json:"amount"`
	Currency          string            `json:"currency"`
	Description       string            `json:"description"`
	CustomerEmail     string            `json:"customer_email"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession - созданная страница оплаты.
type CheckoutSession struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// WebhookEvent - уведомление провайдера о смене статуса оплаты.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string            `json:"id"`
			ClientReferenceID string            `json:"client_reference_id"`
			PaymentIntent     string            `json:"payment_intent"`
			PaymentStatus     string            `json:"payment_status"`
			AmountTotal       int64             `json:"amount_total"`
			Metadata          map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// OrderID возвращает id заказа из события: client_reference_id или metadata.order_id.
func (e WebhookEvent) OrderID() string {
	if id := e.Data.Object.ClientReferenceID; id != "" {
		return id
	}
	return e.Data.Object.Metadata["order_id"]
}

// PaymentID возвращает id платежа, а если его нет, id страницы оплаты.
func (e WebhookEvent) PaymentID() string {
	if id := e.Data.Object.PaymentIntent; id != "" {
		return id
	}
	return e.Data.Object.ID
}
