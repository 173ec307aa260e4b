package memory

import (
	"context"
	"errors"

	"carryon/internal/app/uow"
	domainchat "carryon/internal/domain/chat"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UsersRepo      domainuser.Repository
	TravellersRepo domainpost.TravellerRepository
	SendersRepo    domainpost.SenderRepository
	RequestsRepo   domainrequest.Repository
	ChatRepo       domainchat.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UsersRepo == nil || f.TravellersRepo == nil || f.SendersRepo == nil || f.RequestsRepo == nil || f.ChatRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		users:      f.UsersRepo,
		travellers: f.TravellersRepo,
		senders:    f.SendersRepo,
		requests:   f.RequestsRepo,
		chat:       f.ChatRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	users      domainuser.Repository
	travellers domainpost.TravellerRepository
	senders    domainpost.SenderRepository
	requests   domainrequest.Repository
	chat       domainchat.Repository
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) TravellerPosts() domainpost.TravellerRepository {
	return u.travellers
}

func (u *Unit) SenderPosts() domainpost.SenderRepository {
	return u.senders
}

func (u *Unit) Requests() domainrequest.Repository {
	return u.requests
}

func (u *Unit) Chat() domainchat.Repository {
	return u.chat
}

func (u *Unit) Context(ctx context.Context) context.Context {
	return ctx
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.Factory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
