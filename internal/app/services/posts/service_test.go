package posts_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carryon/internal/app/services/posts"
	domainpost "carryon/internal/domain/post"
	domainuser "carryon/internal/domain/user"
	"carryon/internal/infra/storage/memory"
)

type fakePhotoStore struct {
	keys []string
}

func (f *fakePhotoStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func newService(t *testing.T) (*posts.Service, *domainuser.User, *fakePhotoStore) {
	t.Helper()
	users := memory.NewUserRepository()
	owner, err := domainuser.NewUser(domainuser.CreateParams{
		ID: "alice", Email: "alice@example.com", Name: "Alice", PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), owner))

	photos := &fakePhotoStore{}
	service := &posts.Service{
		Travellers: memory.NewTravellerPostRepository(),
		Senders:    memory.NewSenderPostRepository(),
		Users:      users,
		Photos:     photos,
	}
	return service, owner, photos
}

func travellerParams(now time.Time) domainpost.CreateTravellerParams {
	return domainpost.CreateTravellerParams{
		DepartureCountry: "Germany",
		DepartureCity:    "Berlin",
		DepartureDate:    now.Add(48 * time.Hour),
		ArrivalCountry:   "Georgia",
		ArrivalCity:      "Tbilisi",
		ArrivalDate:      now.Add(52 * time.Hour),
		AvailableWeight:  12,
		PricePerKg:       8,
	}
}

func senderParams() domainpost.CreateSenderParams {
	return domainpost.CreateSenderParams{
		OriginCountry:      "Germany",
		OriginCity:         "Berlin",
		DestinationCountry: "Georgia",
		DestinationCity:    "Tbilisi",
		ItemCategory:       "documents",
		ItemDescription:    "a folder of papers",
		Weight:             0.5,
	}
}

func TestCreateAndGetTravellerPost(t *testing.T) {
	service, owner, _ := newService(t)
	ctx := context.Background()

	created, err := service.CreateTraveller(ctx, owner.ID, travellerParams(time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, created.Post.ID)
	assert.Equal(t, owner.ID, created.Post.OwnerID)

	got, err := service.GetTraveller(ctx, created.Post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Alice", got.Owner.Name)
}

func TestCreateTravellerPostUnknownOwner(t *testing.T) {
	service, _, _ := newService(t)

	_, err := service.CreateTraveller(context.Background(), "nobody", travellerParams(time.Now()))
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestSearchTravellersExcludesOwner(t *testing.T) {
	service, owner, _ := newService(t)
	ctx := context.Background()

	_, err := service.CreateTraveller(ctx, owner.ID, travellerParams(time.Now()))
	require.NoError(t, err)

	page, err := service.SearchTravellers(ctx, domainpost.TravellerSearch{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Posts, 1)
	require.NotNil(t, page.Posts[0].Owner)

	page, err = service.SearchTravellers(ctx, domainpost.TravellerSearch{ExcludeOwner: owner.ID})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestSearchTravellersByRoute(t *testing.T) {
	service, owner, _ := newService(t)
	ctx := context.Background()

	_, err := service.CreateTraveller(ctx, owner.ID, travellerParams(time.Now()))
	require.NoError(t, err)

	page, err := service.SearchTravellers(ctx, domainpost.TravellerSearch{DepartureCountry: "GERMANY"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = service.SearchTravellers(ctx, domainpost.TravellerSearch{DepartureCountry: "France"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestSearchSendersByWeight(t *testing.T) {
	service, owner, _ := newService(t)
	ctx := context.Background()

	_, err := service.CreateSender(ctx, owner.ID, senderParams())
	require.NoError(t, err)

	page, err := service.SearchSenders(ctx, domainpost.SenderSearch{MaxWeight: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = service.SearchSenders(ctx, domainpost.SenderSearch{MinWeight: 2})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestAttachPhoto(t *testing.T) {
	service, owner, photos := newService(t)
	ctx := context.Background()

	created, err := service.CreateSender(ctx, owner.ID, senderParams())
	require.NoError(t, err)

	body := strings.NewReader("jpeg bytes")
	updated, err := service.AttachPhoto(ctx, owner.ID, created.Post.ID, "item.jpg", body, int64(body.Len()), "image/jpeg")
	require.NoError(t, err)

	require.Len(t, updated.Post.Photos, 1)
	assert.Contains(t, updated.Post.Photos[0], "sender-posts/"+string(created.Post.ID)+"/")
	assert.Contains(t, updated.Post.Photos[0], ".jpg")
	require.Len(t, photos.keys, 1)
}

func TestAttachPhotoByNonOwnerFails(t *testing.T) {
	service, owner, _ := newService(t)
	ctx := context.Background()

	created, err := service.CreateSender(ctx, owner.ID, senderParams())
	require.NoError(t, err)

	_, err = service.AttachPhoto(ctx, "mallory", created.Post.ID, "item.jpg", strings.NewReader("x"), 1, "image/jpeg")
	assert.ErrorIs(t, err, domainpost.ErrNotOwner)
}
