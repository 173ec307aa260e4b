package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	domainpost "carryon/internal/domain/post"
	domainuser "carryon/internal/domain/user"
)

// PhotoStore persists uploaded images and returns a public URL.
type PhotoStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

type Service struct {
	Travellers domainpost.TravellerRepository
	Senders    domainpost.SenderRepository
	Users      domainuser.Repository
	Photos     PhotoStore
	Logger     *slog.Logger
}

// TravellerDetail pairs a post with its owner's profile for rendering.
type TravellerDetail struct {
	Post  *domainpost.TravellerPost
	Owner *domainuser.User
}

type SenderDetail struct {
	Post  *domainpost.SenderPost
	Owner *domainuser.User
}

type TravellerPage struct {
	Posts  []TravellerDetail
	Total  int
	Page   int
	Limit  int
	Owners map[domainuser.ID]*domainuser.User
}

type SenderPage struct {
	Posts  []SenderDetail
	Total  int
	Page   int
	Limit  int
	Owners map[domainuser.ID]*domainuser.User
}

func (s *Service) CreateTraveller(ctx context.Context, owner domainuser.ID, params domainpost.CreateTravellerParams) (*TravellerDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, owner)
	if err != nil {
		return nil, err
	}
	params.ID = domainpost.ID(uuid.NewString())
	params.OwnerID = owner
	post, err := domainpost.NewTravellerPost(params)
	if err != nil {
		return nil, err
	}
	if err := s.Travellers.Save(ctx, post); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("traveller post created", "post_id", post.ID, "owner_id", owner)
	}
	return &TravellerDetail{Post: post, Owner: user}, nil
}

func (s *Service) CreateSender(ctx context.Context, owner domainuser.ID, params domainpost.CreateSenderParams) (*SenderDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, owner)
	if err != nil {
		return nil, err
	}
	params.ID = domainpost.ID(uuid.NewString())
	params.OwnerID = owner
	post, err := domainpost.NewSenderPost(params)
	if err != nil {
		return nil, err
	}
	if err := s.Senders.Save(ctx, post); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("sender post created", "post_id", post.ID, "owner_id", owner)
	}
	return &SenderDetail{Post: post, Owner: user}, nil
}

func (s *Service) GetTraveller(ctx context.Context, id domainpost.ID) (*TravellerDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	post, err := s.Travellers.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.Users.ByID(ctx, post.OwnerID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	return &TravellerDetail{Post: post, Owner: owner}, nil
}

func (s *Service) GetSender(ctx context.Context, id domainpost.ID) (*SenderDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	post, err := s.Senders.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.Users.ByID(ctx, post.OwnerID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	return &SenderDetail{Post: post, Owner: owner}, nil
}

func (s *Service) SearchTravellers(ctx context.Context, params domainpost.TravellerSearch) (*TravellerPage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	params = params.Normalized()
	posts, total, err := s.Travellers.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	ownerIDs := make([]domainuser.ID, 0, len(posts))
	for _, p := range posts {
		ownerIDs = append(ownerIDs, p.OwnerID)
	}
	owners, err := s.loadOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	page := &TravellerPage{
		Posts:  make([]TravellerDetail, 0, len(posts)),
		Total:  total,
		Page:   params.Page,
		Limit:  params.Limit,
		Owners: owners,
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, TravellerDetail{Post: p, Owner: owners[p.OwnerID]})
	}
	return page, nil
}

func (s *Service) SearchSenders(ctx context.Context, params domainpost.SenderSearch) (*SenderPage, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	params = params.Normalized()
	posts, total, err := s.Senders.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	ownerIDs := make([]domainuser.ID, 0, len(posts))
	for _, p := range posts {
		ownerIDs = append(ownerIDs, p.OwnerID)
	}
	owners, err := s.loadOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	page := &SenderPage{
		Posts:  make([]SenderDetail, 0, len(posts)),
		Total:  total,
		Page:   params.Page,
		Limit:  params.Limit,
		Owners: owners,
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, SenderDetail{Post: p, Owner: owners[p.OwnerID]})
	}
	return page, nil
}

// AttachPhoto uploads an image for a sender post and records its URL. Only
// the post owner may add photos.
func (s *Service) AttachPhoto(ctx context.Context, actor domainuser.ID, postID domainpost.ID, filename string, reader io.Reader, size int64, contentType string) (*SenderDetail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if s.Photos == nil {
		return nil, errors.New("posts: photo storage is not configured")
	}
	post, err := s.Senders.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actor {
		return nil, domainpost.ErrNotOwner
	}
	key := fmt.Sprintf("sender-posts/%s/%s%s", post.ID, uuid.NewString(), path.Ext(filename))
	url, err := s.Photos.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return nil, err
	}
	if err := post.AttachPhoto(url, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Senders.Save(ctx, post); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("photo attached", "post_id", post.ID, "key", key)
	}
	owner, err := s.Users.ByID(ctx, post.OwnerID)
	if err != nil && !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	return &SenderDetail{Post: post, Owner: owner}, nil
}

func (s *Service) loadOwners(ctx context.Context, ids []domainuser.ID) (map[domainuser.ID]*domainuser.User, error) {
	owners := make(map[domainuser.ID]*domainuser.User, len(ids))
	for _, id := range ids {
		if _, ok := owners[id]; ok {
			continue
		}
		user, err := s.Users.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				continue
			}
			return nil, err
		}
		owners[id] = user
	}
	return owners, nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Travellers == nil:
		return errors.New("posts: traveller repository required")
	case s.Senders == nil:
		return errors.New("posts: sender repository required")
	case s.Users == nil:
		return errors.New("posts: user repository required")
	default:
		return nil
	}
}
