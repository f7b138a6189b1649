// Package models содержит доменные структуры сети фитнес-клубов:
// клубы, тарифные планы, промоакции, заказы, клиентов, пользователей
// админки и глобальные настройки сайта.
package models

import "time"

// Club представляет физический клуб сети.
type Club struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postalCode,omitempty"`
	Province   string    `json:"province,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ClubInput используется для приёма данных клуба из JSON-запроса админки.
type ClubInput struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=5"`
	Province   string `json:"province" validate:"omitempty,max=2"`
	Phone      string `json:"phone" validate:"omitempty"`
	Active     bool   `json:"active"`
}
