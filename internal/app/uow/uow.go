package uow

import (
	"context"

	domainchat "carryon/internal/domain/chat"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Users() domainuser.Repository
	TravellerPosts() domainpost.TravellerRepository
	SenderPosts() domainpost.SenderRepository
	Requests() domainrequest.Repository
	Chat() domainchat.Repository

	// Context binds the store session to ctx so repository calls inside the
	// unit participate in the same transaction.
	Context(ctx context.Context) context.Context

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
