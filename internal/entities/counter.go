package entities

import "time"

type Counter struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Value            int       `json:"value"`
	CreatedTimestamp time.Time `json:"created_at"`
	UpdatedTimestamp time.Time `json:"updated_at"`
}
