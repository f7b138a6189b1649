package models

import "time"

// OrderStatus статус заказа.
type OrderStatus string

const (
	// OrderPending заказ создан, оплата ещё не подтверждена.
	OrderPending OrderStatus = "pending"
	// OrderPaid оплата подтверждена вебхуком провайдера.
	OrderPaid OrderStatus = "paid"
)

// OrderClub - клуб в составе заказа.
type OrderClub struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// OrderPlan - тариф в составе заказа с уже рассчитанной ценой.
type OrderPlan struct {
	ID            string  `json:"id" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Duration      int     `json:"duration,omitempty"`
	Price         float64 `json:"price" validate:"gt=0"` // Итог к оплате
	OriginalPrice float64 `json:"originalPrice" validate:"gte=0"`
	ActivationFee float64 `json:"activationFee" validate:"gte=0"`
	PromoActive   bool    `json:"promoActive"`
}

// Customer - персональные данные покупателя.
type Customer struct {
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	FirstName   string `json:"firstName" validate:"required,min=2"`
	LastName    string `json:"lastName" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	PhonePrefix string `json:"phonePrefix" validate:"required"`
	Phone       string `json:"phone" validate:"required,phone"`
	BirthDate   string `json:"birthDate" validate:"required,birthdate"`
	BirthPlace  string `json:"birthPlace" validate:"required"`
	FiscalCode  string `json:"fiscalCode" validate:"required,fiscalcode"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	PostalCode  string `json:"postalCode" validate:"required,max=5"`
	Province    string `json:"province" validate:"required,max=2"`
	Password    string `json:"password,omitempty" validate:"required,min=8"`
}

// Period - срок действия абонемента.
type Period struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Order - неизменяемый снимок оформленного заказа, который передаётся
// в точку инициации платежа.
type Order struct {
	ID           string    `json:"id,omitempty"`
	Club         OrderClub `json:"club"`
	Plan         OrderPlan `json:"plan"`
	Customer     Customer  `json:"customer"`
	Subscription Period    `json:"subscription"`
}

// StoredOrder - заказ в хранилище. Пароль хранится только в виде хэша.
type StoredOrder struct {
	Order
	PasswordHash  string
	Status        OrderStatus
	PaymentID     string
	InvoiceNumber string
	CreatedAt     time.Time
	PaidAt        *time.Time
}

// PaymentResult - ответ точки инициации платежа.
type PaymentResult struct {
	URL string `json:"url"`
}

// PaidOrderMessage публикуется вебхуком в очередь оплаченных заказов.
type PaidOrderMessage struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

// PushMessage - push-уведомление для мобильного приложения клиента.
type PushMessage struct {
	Email string            `json:"email"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
