package ginserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "carryon/internal/app/outbox"
	authsvc "carryon/internal/app/services/auth"
	chatsvc "carryon/internal/app/services/chat"
	postsvc "carryon/internal/app/services/posts"
	requestsvc "carryon/internal/app/services/requests"
	"carryon/internal/infra/config"
	ginserver "carryon/internal/infra/http/gin"
	"carryon/internal/infra/obs"
	"carryon/internal/infra/security"
	"carryon/internal/infra/storage/memory"
	"carryon/internal/infra/storage/s3"
)

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := memory.NewUserRepository()
	travellers := memory.NewTravellerPostRepository()
	senders := memory.NewSenderPostRepository()
	requests := memory.NewRequestRepository()
	chat := memory.NewChatRepository()

	authService := &authsvc.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	postService := &postsvc.Service{
		Travellers: travellers,
		Senders:    senders,
		Users:      users,
		Photos:     s3.NoopUploader{},
	}
	requestService := &requestsvc.Service{
		UoW: memory.Factory{
			UsersRepo:      users,
			TravellersRepo: travellers,
			SendersRepo:    senders,
			RequestsRepo:   requests,
			ChatRepo:       chat,
		},
		Outbox:  memory.NewOutbox(),
		Encoder: appoutbox.JSONEventEncoder{},
	}
	chatService := &chatsvc.Service{Chat: chat, Requests: requests, Users: users}

	authMiddleware := ginserver.AuthMiddleware{Service: authService}
	server := ginserver.NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{},
		obs.HealthHandlers{},
		ginserver.Handlers{
			Auth:           ginserver.AuthHandler{Service: authService},
			Posts:          ginserver.PostHandler{Service: postService},
			Requests:       ginserver.RequestHandler{Service: requestService},
			Chat:           ginserver.ChatHandler{Service: chatService},
			AuthMiddleware: authMiddleware.Handle,
		},
	)
	return &testServer{handler: server.Handler}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) register(t *testing.T, email, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"name":     name,
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, ok := decode(t, rec)["token"].(string)
	require.True(t, ok)
	return token
}

func (s *testServer) createSenderPost(t *testing.T, token string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/posts/sender", token, map[string]any{
		"origin_country":      "Germany",
		"origin_city":         "Berlin",
		"destination_country": "Georgia",
		"destination_city":    "Tbilisi",
		"item_category":       "documents",
		"item_description":    "a folder of papers",
		"weight":              0.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, ok := decode(t, rec)["id"].(string)
	require.True(t, ok)
	return id
}

func (s *testServer) createTravellerPost(t *testing.T, token string) string {
	t.Helper()
	departure := time.Now().Add(48 * time.Hour)
	rec := s.do(t, http.MethodPost, "/api/v1/posts/traveller", token, map[string]any{
		"departure_country": "Germany",
		"departure_city":    "Berlin",
		"departure_date":    departure.Format(time.RFC3339),
		"arrival_country":   "Georgia",
		"arrival_city":      "Tbilisi",
		"arrival_date":      departure.Add(4 * time.Hour).Format(time.RFC3339),
		"available_weight":  12,
		"price_per_kg":      8,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, ok := decode(t, rec)["id"].(string)
	require.True(t, ok)
	return id
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	aliceToken := server.register(t, "alice@example.com", "Alice")
	bobToken := server.register(t, "bob@example.com", "Bob")

	senderPostID := server.createSenderPost(t, aliceToken)
	travellerPostID := server.createTravellerPost(t, bobToken)

	rec := server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, map[string]any{
		"sender_post_id":    senderPostID,
		"traveller_post_id": travellerPostID,
		"message":           "can you take this?",
		"proposed_price":    20,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	requestID, _ := created["id"].(string)
	conversationID, _ := created["conversation_id"].(string)
	require.NotEmpty(t, requestID)
	require.NotEmpty(t, conversationID)
	assert.Equal(t, "PENDING", created["status"])

	// The receiver accepts with an agreed price.
	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, bobToken, map[string]any{
		"status":       "accepted",
		"agreed_price": 40,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accepted := decode(t, rec)
	assert.Equal(t, "ACCEPTED", accepted["status"])
	assert.Equal(t, 40.0, accepted["agreed_price"])

	// The lifecycle left a system note in the conversation.
	rec = server.do(t, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%s/messages", conversationID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	messages, _ := decode(t, rec)["messages"].([]any)
	require.Len(t, messages, 2)
	last, _ := messages[1].(map[string]any)
	assert.Equal(t, "SYSTEM", last["message_type"])
	assert.Equal(t, "Request has been accepted for $40", last["content"])

	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, aliceToken, map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "COMPLETED", decode(t, rec)["status"])
}

func TestRequestEndpointsRequireAuth(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/requests", "", map[string]any{
		"sender_post_id":    "sp-1",
		"traveller_post_id": "tp-1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/v1/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRequestErrorStatuses(t *testing.T) {
	server := newTestServer(t)

	aliceToken := server.register(t, "alice@example.com", "Alice")
	bobToken := server.register(t, "bob@example.com", "Bob")
	carolToken := server.register(t, "carol@example.com", "Carol")

	senderPostID := server.createSenderPost(t, aliceToken)
	travellerPostID := server.createTravellerPost(t, bobToken)

	body := map[string]any{
		"sender_post_id":    senderPostID,
		"traveller_post_id": travellerPostID,
	}

	// A bystander owns neither post.
	rec := server.do(t, http.MethodPost, "/api/v1/requests", carolToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown posts read as missing.
	rec = server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, map[string]any{
		"sender_post_id":    "missing",
		"traveller_post_id": travellerPostID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Same pair of posts again.
	rec = server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatusErrorStatuses(t *testing.T) {
	server := newTestServer(t)

	aliceToken := server.register(t, "alice@example.com", "Alice")
	bobToken := server.register(t, "bob@example.com", "Bob")
	carolToken := server.register(t, "carol@example.com", "Carol")

	senderPostID := server.createSenderPost(t, aliceToken)
	travellerPostID := server.createTravellerPost(t, bobToken)

	rec := server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, map[string]any{
		"sender_post_id":    senderPostID,
		"traveller_post_id": travellerPostID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID, _ := decode(t, rec)["id"].(string)

	// Only the receiver may accept.
	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, aliceToken, map[string]any{
		"status": "accepted",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Outsiders cannot see the request at all.
	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, carolToken, map[string]any{
		"status": "accepted",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = server.do(t, http.MethodGet, "/api/v1/requests/"+requestID, carolToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// PENDING is not a transition target.
	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, bobToken, map[string]any{
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Completing before acceptance is out of order.
	rec = server.do(t, http.MethodPatch, "/api/v1/requests/"+requestID, bobToken, map[string]any{
		"status": "completed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRequestsOverHTTP(t *testing.T) {
	server := newTestServer(t)

	aliceToken := server.register(t, "alice@example.com", "Alice")
	bobToken := server.register(t, "bob@example.com", "Bob")

	senderPostID := server.createSenderPost(t, aliceToken)
	travellerPostID := server.createTravellerPost(t, bobToken)

	rec := server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, map[string]any{
		"sender_post_id":    senderPostID,
		"traveller_post_id": travellerPostID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = server.do(t, http.MethodGet, "/api/v1/requests?box=sent", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	pagination, _ := body["pagination"].(map[string]any)
	require.NotNil(t, pagination)
	assert.Equal(t, 1.0, pagination["total_count"])

	rec = server.do(t, http.MethodGet, "/api/v1/requests?box=received", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pagination, _ = decode(t, rec)["pagination"].(map[string]any)
	assert.Equal(t, 0.0, pagination["total_count"])

	rec = server.do(t, http.MethodGet, "/api/v1/requests?status=shipped", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostingToConversationOverHTTP(t *testing.T) {
	server := newTestServer(t)

	aliceToken := server.register(t, "alice@example.com", "Alice")
	bobToken := server.register(t, "bob@example.com", "Bob")
	carolToken := server.register(t, "carol@example.com", "Carol")

	senderPostID := server.createSenderPost(t, aliceToken)
	travellerPostID := server.createTravellerPost(t, bobToken)

	rec := server.do(t, http.MethodPost, "/api/v1/requests", aliceToken, map[string]any{
		"sender_post_id":    senderPostID,
		"traveller_post_id": travellerPostID,
		"message":           "hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conversationID, _ := decode(t, rec)["conversation_id"].(string)
	require.NotEmpty(t, conversationID)

	rec = server.do(t, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%s/messages", conversationID), bobToken, map[string]any{
		"content": "sure, send details",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Clients cannot forge system entries.
	rec = server.do(t, http.MethodPost, fmt.Sprintf("/api/v1/conversations/%s/messages", conversationID), bobToken, map[string]any{
		"content":      "fake note",
		"message_type": "SYSTEM",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Outsiders see no conversation.
	rec = server.do(t, http.MethodGet, "/api/v1/conversations/"+conversationID, carolToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/v1/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversations, _ := decode(t, rec)["conversations"].([]any)
	require.Len(t, conversations, 1)
}
