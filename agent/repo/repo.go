// Package repo is the read/write layer over the relational store. Joins come
// back as nested relations; package filtering and price aggregation happen
// client-side since the store is treated as schema-less key access.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

// Config is the Postgres connection configuration.
type Config struct {
	DSN          string `envconfig:"DSN" split_words:"true" required:"true"`
	MaxOpenConns int    `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
}

// Connect opens a bun handle over pgdriver.
func Connect(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn is required", contractx.ErrValidation)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Repository implements contract.Repository on bun.
type Repository struct {
	db  *bun.DB
	now func() time.Time
}

var _ contractx.Repository = (*Repository)(nil)

func New(db *bun.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// ActivePhotographers loads the photographer/user/package join and derives
// one candidate per active photographer with at least one active package.
func (r *Repository) ActivePhotographers(ctx context.Context) ([]contractx.Candidate, error) {
	var rows []*photographerRow
	err := r.db.NewSelect().
		Model(&rows).
		Relation("User").
		Relation("Packages").
		Where("p.is_active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select active photographers: %w", err)
	}

	candidates := make([]contractx.Candidate, 0, len(rows))
	for _, row := range rows {
		cand, ok := candidateFromRow(row)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func (r *Repository) CompletedBookings(ctx context.Context, serviceType, location string) ([]contractx.BookingRecord, error) {
	var rows []*bookingRow
	err := r.db.NewSelect().
		Model(&rows).
		Column("b.final_price", "b.location", "b.service_type", "b.created_at").
		Where("b.service_type = ?", serviceType).
		Where("b.location = ?", location).
		Where("b.status = ?", "completed").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select completed bookings: %w", err)
	}
	return bookingRecords(rows), nil
}

func (r *Repository) CompletedBookingsByPhotographer(ctx context.Context, photographerID string) ([]contractx.BookingRecord, error) {
	var rows []*bookingRow
	err := r.db.NewSelect().
		Model(&rows).
		Column("b.final_price", "b.rating", "b.duration_hours", "b.created_at").
		Where("b.photographer_id = ?", photographerID).
		Where("b.status = ?", "completed").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select photographer bookings: %w", err)
	}
	return bookingRecords(rows), nil
}

func (r *Repository) PhotographersByLocation(ctx context.Context, location string) ([]contractx.CompetitorProfile, error) {
	var rows []*photographerRow
	err := r.db.NewSelect().
		Model(&rows).
		Column("p.id", "p.base_price", "p.hourly_rate", "p.location").
		Where("p.location = ?", location).
		Where("p.is_active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select photographers by location: %w", err)
	}

	profiles := make([]contractx.CompetitorProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, contractx.CompetitorProfile{
			ID:         row.ID,
			BasePrice:  row.BasePrice,
			HourlyRate: row.HourlyRate,
			Location:   row.Location,
		})
	}
	return profiles, nil
}

func (r *Repository) ClientByID(ctx context.Context, clientID string) (*contractx.ClientProfile, error) {
	row := new(clientRow)
	err := r.db.NewSelect().
		Model(row).
		Column("c.id", "c.email", "c.first_name").
		Where("c.id = ?", clientID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: client %s", contractx.ErrNotFound, clientID)
		}
		return nil, fmt.Errorf("select client: %w", err)
	}
	return &contractx.ClientProfile{
		ID:        row.ID,
		Email:     row.Email,
		FirstName: row.FirstName,
	}, nil
}

func (r *Repository) UpcomingBookings(ctx context.Context, clientID string) ([]contractx.BookingRecord, error) {
	var rows []*bookingRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("b.client_id = ?", clientID).
		Where("b.shoot_date >= ?", r.now().UTC().Truncate(24*time.Hour)).
		Order("b.shoot_date ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select upcoming bookings: %w", err)
	}
	return bookingRecords(rows), nil
}

func (r *Repository) InsertOutgoingMessage(ctx context.Context, msg *contractx.OutgoingMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: outgoing message is nil", contractx.ErrValidation)
	}
	row := &outgoingMessageRow{
		ClientID:       msg.ClientID,
		MessageType:    msg.MessageType,
		MessageContent: msg.MessageContent,
		Status:         msg.Status,
		SentAt:         msg.SentAt,
		ExpiresAt:      msg.ExpiresAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert outgoing message: %w", err)
	}
	return nil
}

func candidateFromRow(row *photographerRow) (contractx.Candidate, bool) {
	if row == nil || row.User == nil {
		return contractx.Candidate{}, false
	}

	var packages []contractx.Package
	for _, pkg := range row.Packages {
		if pkg == nil || !pkg.IsActive {
			continue
		}
		packages = append(packages, contractx.Package{
			ID:          pkg.ID,
			Name:        pkg.Name,
			Price:       pkg.Price,
			Description: pkg.Description,
			IsActive:    true,
		})
	}
	if len(packages) == 0 {
		return contractx.Candidate{}, false
	}

	minPrice := packages[0].Price
	maxPrice := packages[0].Price
	for _, pkg := range packages[1:] {
		if pkg.Price < minPrice {
			minPrice = pkg.Price
		}
		if pkg.Price > maxPrice {
			maxPrice = pkg.Price
		}
	}

	first := strings.TrimSpace(row.User.FirstName)
	last := strings.TrimSpace(row.User.LastName)

	return contractx.Candidate{
		ID:          row.ID,
		FirstName:   first,
		LastName:    last,
		Name:        strings.TrimSpace(titleCase(first) + " " + titleCase(last)),
		Email:       row.User.Email,
		Location:    row.Location,
		Rating:      row.Rating,
		Specialties: row.PortfolioStyle,
		Packages:    packages,
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
	}, true
}

func bookingRecords(rows []*bookingRow) []contractx.BookingRecord {
	records := make([]contractx.BookingRecord, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		records = append(records, contractx.BookingRecord{
			ID:             row.ID,
			ClientID:       row.ClientID,
			PhotographerID: row.PhotographerID,
			ServiceType:    row.ServiceType,
			Location:       row.Location,
			Status:         row.Status,
			FinalPrice:     row.FinalPrice,
			Rating:         row.Rating,
			DurationHours:  row.DurationHours,
			ShootDate:      row.ShootDate,
			CreatedAt:      row.CreatedAt,
		})
	}
	return records
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
