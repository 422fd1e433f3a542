package medicine

import (
	"time"
)

// Medicine is a stock-keeping unit in the pharmacy inventory. Quantity is
// mutated only through the ledger's adjustment primitives; every other
// component treats it as read-only.
type Medicine struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Name      string    `gorm:"column:name;type:varchar(255);not null;index" json:"name"`
	Quantity  int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	UnitPrice int       `gorm:"column:unit_price;not null;default:0" json:"unit_price"`
}

func (Medicine) TableName() string {
	return "medicines"
}

// IsExpiringWithin reports whether the medicine expires before now+window.
func (m *Medicine) IsExpiringWithin(window time.Duration) bool {
	return m.ExpiresAt.Before(time.Now().Add(window))
}

// Update is a single emission of a one-medicine watch. Absent reports that
// the watched id no longer exists; Medicine is nil in that case. Watches
// must keep emitting after a deletion instead of failing, so a detail view
// holding a subscription survives the record disappearing underneath it.
type Update struct {
	Medicine *Medicine
	Absent   bool
}
