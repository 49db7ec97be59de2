package entities

import "time"

type User struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	CreatedTimestamp time.Time `json:"created_at"`
	UpdatedTimestamp time.Time `json:"updated_at"`
}
