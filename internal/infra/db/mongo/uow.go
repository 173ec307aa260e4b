package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carryon/internal/app/uow"
	domainchat "carryon/internal/domain/chat"
	domainpost "carryon/internal/domain/post"
	domainrequest "carryon/internal/domain/request"
	domainuser "carryon/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UsersRepo      domainuser.Repository
	TravellersRepo domainpost.TravellerRepository
	SendersRepo    domainpost.SenderRepository
	RequestsRepo   domainrequest.Repository
	ChatRepo       domainchat.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:         f.DB,
		session:    session,
		users:      f.UsersRepo,
		travellers: f.TravellersRepo,
		senders:    f.SendersRepo,
		requests:   f.RequestsRepo,
		chat:       f.ChatRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// Context ensures the Mongo session is available downstream so repository
// calls inside the unit share the transaction.
func (u *Unit) Context(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.Factory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
