package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// ErrVersionConflict mirrors the store-level CAS failure on concurrent saves.
var ErrVersionConflict = errors.New("memory: request version conflict")

// RequestRepository keeps requests in memory with the same compare-and-swap
// semantics as the mongo implementation.
type RequestRepository struct {
	mu    sync.RWMutex
	items map[domainrequest.ID]*domainrequest.Request
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		items: make(map[domainrequest.ID]*domainrequest.Request),
	}
}

func (r *RequestRepository) ByID(ctx context.Context, id domainrequest.ID) (*domainrequest.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	request, ok := r.items[id]
	if !ok {
		return nil, domainrequest.ErrNotFound
	}
	return cloneRequest(request), nil
}

func (r *RequestRepository) Exists(ctx context.Context, senderPostID, travellerPostID domainpost.ID, senderID, receiverID domainuser.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, request := range r.items {
		if request.SenderPostID == senderPostID &&
			request.TravellerPostID == travellerPostID &&
			request.SenderID == senderID &&
			request.ReceiverID == receiverID {
			return true, nil
		}
	}
	return false, nil
}

func (r *RequestRepository) Save(ctx context.Context, request *domainrequest.Request) error {
	if request == nil || request.ID == "" {
		return domainrequest.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[request.ID]
	if !ok {
		stored := cloneRequest(request)
		stored.Version = 1
		r.items[request.ID] = stored
		request.Version = 1
		return nil
	}
	if existing.Version != request.Version {
		return ErrVersionConflict
	}
	stored := cloneRequest(request)
	stored.Version = existing.Version + 1
	r.items[request.ID] = stored
	request.Version = stored.Version
	return nil
}

func (r *RequestRepository) ListForUser(ctx context.Context, params domainrequest.ListParams) ([]*domainrequest.Request, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainrequest.Request, 0, len(r.items))
	for _, request := range r.items {
		switch opts.Box {
		case domainrequest.BoxSent:
			if request.SenderID != opts.UserID {
				continue
			}
		case domainrequest.BoxReceived:
			if request.ReceiverID != opts.UserID {
				continue
			}
		default:
			if !request.IsParticipant(opts.UserID) {
				continue
			}
		}
		if opts.Status != "" && request.Status != opts.Status {
			continue
		}
		matches = append(matches, request)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := len(matches)
	offset := opts.Offset()
	if offset >= len(matches) {
		return nil, total, nil
	}
	end := offset + opts.Limit
	if end > len(matches) {
		end = len(matches)
	}
	out := make([]*domainrequest.Request, 0, end-offset)
	for _, request := range matches[offset:end] {
		out = append(out, cloneRequest(request))
	}
	return out, total, nil
}

func cloneRequest(r *domainrequest.Request) *domainrequest.Request {
	if r == nil {
		return nil
	}
	copyRequest := *r
	copyRequest.ClearEvents()
	return &copyRequest
}

var _ domainrequest.Repository = (*RequestRepository)(nil)
