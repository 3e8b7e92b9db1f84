package repo

import (
	"time"

	"github.com/uptrace/bun"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string `bun:"id,pk"`
	FirstName string `bun:"first_name"`
	LastName  string `bun:"last_name"`
	Email     string `bun:"email"`
}

type photographerRow struct {
	bun.BaseModel `bun:"table:photographers,alias:p"`

	ID             string  `bun:"id,pk"`
	UserID         string  `bun:"user_id"`
	PortfolioStyle string  `bun:"portfolio_style"`
	Location       string  `bun:"location"`
	Rating         float64 `bun:"rating"`
	BasePrice      float64 `bun:"base_price"`
	HourlyRate     float64 `bun:"hourly_rate"`
	IsActive       bool    `bun:"is_active"`

	User     *userRow      `bun:"rel:belongs-to,join:user_id=id"`
	Packages []*packageRow `bun:"rel:has-many,join:id=photographer_id"`
}

type packageRow struct {
	bun.BaseModel `bun:"table:packages,alias:pkg"`

	ID             string  `bun:"id,pk"`
	PhotographerID string  `bun:"photographer_id"`
	Name           string  `bun:"name"`
	Price          float64 `bun:"price"`
	Description    string  `bun:"description"`
	IsActive       bool    `bun:"is_active"`
}

type bookingRow struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID             string    `bun:"id,pk"`
	ClientID       string    `bun:"client_id"`
	PhotographerID string    `bun:"photographer_id"`
	ServiceType    string    `bun:"service_type"`
	Location       string    `bun:"location"`
	Status         string    `bun:"status"`
	FinalPrice     float64   `bun:"final_price"`
	Rating         float64   `bun:"rating"`
	DurationHours  float64   `bun:"duration_hours"`
	ShootDate      time.Time `bun:"shoot_date"`
	CreatedAt      time.Time `bun:"created_at"`
}

type clientRow struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID        string `bun:"id,pk"`
	Email     string `bun:"email"`
	FirstName string `bun:"first_name"`
}

type outgoingMessageRow struct {
	bun.BaseModel `bun:"table:outgoing_messages,alias:om"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ClientID       string    `bun:"client_id"`
	MessageType    string    `bun:"message_type"`
	MessageContent string    `bun:"message_content"`
	Status         string    `bun:"status"`
	SentAt         time.Time `bun:"sent_at"`
	ExpiresAt      time.Time `bun:"expires_at"`
}
