package models

import "time"

// StoredCredential is the durable copy of the bearer token used by the database
// token store. Key is the fixed name the token is persisted under.
type StoredCredential struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Token     string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredCredential) TableName() string {
	return "stored_credentials"
}
