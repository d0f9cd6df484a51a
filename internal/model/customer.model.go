package model

import (
	"strings"
	"time"
)

type Customer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) HasPhone() bool {
	return c != nil && c.Phone != ""
}

// CustomerUpdate carries a partial edit. Nil fields are left untouched and an
// empty Phone clears the stored number.
type CustomerUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func (u CustomerUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil
}

func ValidateCustomerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "customer name is required")
	}
	return name, nil
}
