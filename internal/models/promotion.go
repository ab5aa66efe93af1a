package models

import "time"

const (
	PromotionTypeFlash   = "flash"
	PromotionTypeRegular = "regular"
)

type Promotion struct {
	ID              int64      `json:"id" db:"id"`
	ProductID       int64      `json:"product_id" db:"product_id"`
	Type            string     `json:"type" db:"type"` // "flash", "regular"
	DiscountPercent *float64   `json:"discount_percent" db:"discount_percent"`
	DiscountPrice   *float64   `json:"discount_price" db:"discount_price"`
	StartsAt        time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt          *time.Time `json:"ends_at" db:"ends_at"` // nil means open-ended
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// ActiveAt reports whether the promotion window contains t.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if t.Before(p.StartsAt) {
		return false
	}
	return p.EndsAt == nil || t.Before(*p.EndsAt)
}

func (p *Promotion) IsFlash() bool {
	return p.Type == PromotionTypeFlash
}
