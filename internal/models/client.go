package models

import "time"

// Client - клиент сети с оплаченным абонементом.
type Client struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	ClubID       string    `json:"clubId"`
	PlanID       string    `json:"planId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FiscalCode   string    `json:"fiscalCode"`
	PasswordHash string    `json:"-"`
	StartDate    time.Time `json:"startDate"`
	Months       int       `json:"months"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ClientView - клиент с вычисленным остатком абонемента для админки.
type ClientView struct {
	Client
	EndDate         time.Time `json:"endDate"`
	RemainingMonths int       `json:"remainingMonths"`
}

// ClientUpdate используется для изменения контактов клиента из админки.
type ClientUpdate struct {
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}
