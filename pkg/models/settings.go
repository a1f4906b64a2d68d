package models

import "time"

// UserSettings is the single per-user settings record
type UserSettings struct {
	UserID      string    `json:"user_id" db:"user_id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	Timezone    string    `json:"timezone" db:"timezone"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// SettingsPatch is a partial settings update. Nil fields are not written.
type SettingsPatch struct {
	CompanyName *string `json:"company_name,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.CompanyName == nil && p.Timezone == nil
}
