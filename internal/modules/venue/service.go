package venue

import (
	"context"
	"errors"
	"log"

	"venuebook/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	venues VenueRepository
	cache  VenueCache
}

func NewService(venues VenueRepository, cache VenueCache) *Service {
	return &Service{venues: venues, cache: cache}
}

func (s *Service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*domain.Venue, error) {
	if req.Name == "" || req.PricePerHour < 0 {
		return nil, ErrValidation
	}

	v := &domain.Venue{
		Name:         req.Name,
		Description:  req.Description,
		City:         req.City,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
	}
	if err := s.venues.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVenue reads through the snapshot cache; a miss loads from the durable
// store and populates the cache.
func (s *Service) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	v, err := s.cache.Get(ctx, id)
	if err != nil {
		// A cache failure degrades to a store read.
		log.Printf("venue cache get %d: %v", id, err)
	}
	if v != nil {
		return v, nil
	}

	v, err = s.venues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, v); err != nil {
		log.Printf("venue cache set %d: %v", id, err)
	}
	return v, nil
}

func (s *Service) ListVenues(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.venues.List(ctx, limit, offset)
}

func (s *Service) SearchVenues(ctx context.Context, query string) ([]domain.Venue, error) {
	if query == "" {
		return nil, ErrValidation
	}
	return s.venues.Search(ctx, query)
}

// PopularVenues returns the top-n ranking hydrated with venue snapshots.
// Venues that disappeared from the durable store are dropped from the result.
func (s *Service) PopularVenues(ctx context.Context, n int64) ([]PopularVenue, error) {
	if n <= 0 {
		n = 5
	}

	scores, err := s.cache.TopVenues(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]PopularVenue, 0, len(scores))
	for _, sc := range scores {
		v, err := s.GetVenue(ctx, sc.VenueID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, PopularVenue{Venue: *v, BookingCount: int(sc.Score)})
	}
	return out, nil
}
