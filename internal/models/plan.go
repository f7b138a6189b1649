package models

import "time"

// Plan представляет тарифный план абонемента.
// Price уже включает стоимость активации, поэтому итоговая цена
// никогда не пересчитывается из ActivationFee.
type Plan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Duration      int      `json:"duration"` // Длительность в месяцах
	Price         float64  `json:"price"`
	MonthlyPrice  float64  `json:"monthlyPrice"`
	ActivationFee float64  `json:"activationFee"`
	PromoActive   bool     `json:"promoActive"`
	PromoPrice    *float64 `json:"promoPrice,omitempty"`
	PromoText     string   `json:"promoText,omitempty"`
	Popular       bool     `json:"popular"`
	Features      []string `json:"features"`
}

// TotalDue возвращает сумму к оплате сегодня: промоцену, если промоакция
// активна и цена задана, иначе базовую цену.
func (p Plan) TotalDue() float64 {
	if p.PromoActive && p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}

// PlanInput используется для приёма данных тарифа из JSON-запроса админки.
type PlanInput struct {
	Name          string   `json:"name" validate:"required"`
	Duration      int      `json:"duration" validate:"required,gt=0"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	MonthlyPrice  float64  `json:"monthlyPrice" validate:"gte=0"`
	ActivationFee float64  `json:"activationFee" validate:"gte=0"`
	Popular       bool     `json:"popular"`
	Features      []string `json:"features"`
}

// Promotion описывает промоакцию на тариф. Пустой ClubID означает,
// что акция действует во всех клубах.
type Promotion struct {
	ID        string     `json:"id"`
	PlanID    string     `json:"planId"`
	ClubID    *string    `json:"clubId,omitempty"`
	Price     float64    `json:"price"`
	Label     string     `json:"label,omitempty"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AppliesAt сообщает, действует ли акция в момент at.
func (p Promotion) AppliesAt(at time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && at.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !at.Before(*p.EndsAt) {
		return false
	}
	return true
}

// PromotionInput используется для приёма промоакции из JSON-запроса админки.
type PromotionInput struct {
	PlanID   string     `json:"planId" validate:"required"`
	ClubID   *string    `json:"clubId" validate:"omitempty"`
	Price    float64    `json:"price" validate:"required,gt=0"`
	Label    string     `json:"label" validate:"omitempty,max=64"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

// DefaultPlans возвращает встроенный список тарифов, который показывается,
// когда каталог недоступен или пуст. Список отсортирован по длительности.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID: "default-monthly", Name: "Monthly", Duration: 1,
			Price: 79, MonthlyPrice: 49, ActivationFee: 30,
			Features: []string{"Access to all equipment", "Locker room"},
		},
		{
			ID: "default-quarterly", Name: "Quarterly", Duration: 3,
			Price: 165, MonthlyPrice: 45, ActivationFee: 30,
			Features: []string{"Access to all equipment", "Locker room", "Group classes"},
		},
		{
			ID: "default-semiannual", Name: "Semiannual", Duration: 6,
			Price: 270, MonthlyPrice: 40, ActivationFee: 30, Popular: true,
			Features: []string{"Access to all equipment", "Locker room", "Group classes", "Initial assessment"},
		},
		{
			ID: "default-annual", Name: "Annual", Duration: 12,
			Price: 450, MonthlyPrice: 35, ActivationFee: 30,
			Features: []string{"Access to all equipment", "Locker room", "Group classes", "Initial assessment", "Guest passes"},
		},
	}
}
