package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainpost "carryon/internal/domain/post"
)

// TravellerPostRepository is an in-memory implementation for tests and local runs.
type TravellerPostRepository struct {
	mu    sync.RWMutex
	items map[domainpost.ID]*domainpost.TravellerPost
}

func NewTravellerPostRepository() *TravellerPostRepository {
	return &TravellerPostRepository{
		items: make(map[domainpost.ID]*domainpost.TravellerPost),
	}
}

func (r *TravellerPostRepository) ByID(ctx context.Context, id domainpost.ID) (*domainpost.TravellerPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.items[id]
	if !ok {
		return nil, domainpost.ErrNotFound
	}
	return cloneTraveller(post), nil
}

func (r *TravellerPostRepository) Save(ctx context.Context, post *domainpost.TravellerPost) error {
	if post == nil || post.ID == "" {
		return domainpost.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[post.ID] = cloneTraveller(post)
	return nil
}

func (r *TravellerPostRepository) Search(ctx context.Context, params domainpost.TravellerSearch) ([]*domainpost.TravellerPost, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	now := time.Now().UTC()
	matches := make([]*domainpost.TravellerPost, 0, len(r.items))
	for _, post := range r.items {
		if post.Status != domainpost.StatusActive {
			continue
		}
		if opts.Owner != "" && post.OwnerID != opts.Owner {
			continue
		}
		if opts.ExcludeOwner != "" && post.OwnerID == opts.ExcludeOwner {
			continue
		}
		if opts.FutureOnly() && post.DepartureDate.Before(now) {
			continue
		}
		if opts.DepartureCountry != "" && strings.ToLower(post.DepartureCountry) != opts.DepartureCountry {
			continue
		}
		if opts.ArrivalCountry != "" && strings.ToLower(post.ArrivalCountry) != opts.ArrivalCountry {
			continue
		}
		if !opts.DateFrom.IsZero() && post.DepartureDate.Before(opts.DateFrom) {
			continue
		}
		if !opts.DateTo.IsZero() && post.DepartureDate.After(opts.DateTo) {
			continue
		}
		matches = append(matches, post)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	page := paginateTravellers(matches, opts.Offset(), opts.Limit)
	out := make([]*domainpost.TravellerPost, 0, len(page))
	for _, post := range page {
		out = append(out, cloneTraveller(post))
	}
	return out, total, nil
}

// SenderPostRepository is the in-memory sender-post catalog.
type SenderPostRepository struct {
	mu    sync.RWMutex
	items map[domainpost.ID]*domainpost.SenderPost
}

func NewSenderPostRepository() *SenderPostRepository {
	return &SenderPostRepository{
		items: make(map[domainpost.ID]*domainpost.SenderPost),
	}
}

func (r *SenderPostRepository) ByID(ctx context.Context, id domainpost.ID) (*domainpost.SenderPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.items[id]
	if !ok {
		return nil, domainpost.ErrNotFound
	}
	return cloneSender(post), nil
}

func (r *SenderPostRepository) Save(ctx context.Context, post *domainpost.SenderPost) error {
	if post == nil || post.ID == "" {
		return domainpost.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[post.ID] = cloneSender(post)
	return nil
}

func (r *SenderPostRepository) Search(ctx context.Context, params domainpost.SenderSearch) ([]*domainpost.SenderPost, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainpost.SenderPost, 0, len(r.items))
	for _, post := range r.items {
		if post.Status != domainpost.StatusActive {
			continue
		}
		if opts.Owner != "" && post.OwnerID != opts.Owner {
			continue
		}
		if opts.ExcludeOwner != "" && post.OwnerID == opts.ExcludeOwner {
			continue
		}
		if opts.OriginCountry != "" && strings.ToLower(post.OriginCountry) != opts.OriginCountry {
			continue
		}
		if opts.DestinationCountry != "" && strings.ToLower(post.DestinationCountry) != opts.DestinationCountry {
			continue
		}
		if opts.ItemCategory != "" && strings.ToLower(post.ItemCategory) != opts.ItemCategory {
			continue
		}
		if opts.MinWeight > 0 && post.Weight < opts.MinWeight {
			continue
		}
		if opts.MaxWeight > 0 && post.Weight > opts.MaxWeight {
			continue
		}
		if opts.MinPrice > 0 && post.MaxPrice < opts.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && post.MaxPrice > opts.MaxPrice {
			continue
		}
		matches = append(matches, post)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	page := paginateSenders(matches, opts.Offset(), opts.Limit)
	out := make([]*domainpost.SenderPost, 0, len(page))
	for _, post := range page {
		out = append(out, cloneSender(post))
	}
	return out, total, nil
}

func paginateTravellers(items []*domainpost.TravellerPost, offset, limit int) []*domainpost.TravellerPost {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func paginateSenders(items []*domainpost.SenderPost, offset, limit int) []*domainpost.SenderPost {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneTraveller(p *domainpost.TravellerPost) *domainpost.TravellerPost {
	if p == nil {
		return nil
	}
	copyPost := *p
	return &copyPost
}

func cloneSender(p *domainpost.SenderPost) *domainpost.SenderPost {
	if p == nil {
		return nil
	}
	copyPost := *p
	copyPost.Photos = append([]string(nil), p.Photos...)
	return &copyPost
}

var _ domainpost.TravellerRepository = (*TravellerPostRepository)(nil)
var _ domainpost.SenderRepository = (*SenderPostRepository)(nil)
