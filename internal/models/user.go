package models

import "time"

// User - пользователь админ-панели.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserInput используется для создания пользователя админки.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin editor"`
}

// Settings - глобальные настройки сайта, которые читают публичные страницы.
type Settings struct {
	DailyPassEnabled bool   `json:"dailyPassEnabled"`
	AppStoreURL      string `json:"appStoreUrl,omitempty"`
	PlayStoreURL     string `json:"playStoreUrl,omitempty"`
	BannerEnabled    bool   `json:"bannerEnabled"`
	BannerText       string `json:"bannerText,omitempty"`
}

// Invoice - выставленный счёт по оплаченному заказу.
type Invoice struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Number    string    `json:"number"`
	Net       string    `json:"net"`
	VAT       string    `json:"vat"`
	Gross     string    `json:"gross"`
	CreatedAt time.Time `json:"createdAt"`
}
