package entities

import "time"

// FavoritesCarousel positions are unique per user: (user_id, order) carries
// a unique index, so renumbering has to go through the two-pass reorder.
type FavoritesCarousel struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	Name             string           `json:"name"`
	Order            int              `json:"order"`
	Images           []FavoritesImage `json:"images"`
	CreatedTimestamp time.Time        `json:"created_at"`
	UpdatedTimestamp time.Time        `json:"updated_at"`
}

type FavoritesImage struct {
	ID               int64     `json:"id"`
	CarouselID       int64     `json:"carousel_id"`
	ImageURL         string    `json:"image_url"`
	Order            int       `json:"order"`
	CreatedTimestamp time.Time `json:"created_at"`
	UpdatedTimestamp time.Time `json:"updated_at"`
}
