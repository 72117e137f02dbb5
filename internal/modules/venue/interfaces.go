package venue

import (
	"context"

	"venuebook/internal/cache"
	"venuebook/internal/domain"
)

// VenueRepository is the durable-store contract for venue records.
type VenueRepository interface {
	Create(ctx context.Context, v *domain.Venue) error
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
	List(ctx context.Context, limit, offset int) ([]domain.Venue, error)
	Search(ctx context.Context, query string) ([]domain.Venue, error)
}

// VenueCache holds snapshots and the popularity ranking.
type VenueCache interface {
	Get(ctx context.Context, venueID int64) (*domain.Venue, error)
	Set(ctx context.Context, v *domain.Venue) error
	TopVenues(ctx context.Context, n int64) ([]cache.VenueScore, error)
}

var _ VenueCache = (*cache.VenueCache)(nil)
