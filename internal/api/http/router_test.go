package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-ledger/internal/api/http/handlers"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/deeplink"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/events"
	"github.com/spec-kit/talent-ledger/internal/ledger"
	"github.com/spec-kit/talent-ledger/internal/observability"
	"github.com/spec-kit/talent-ledger/internal/ratelimit"
	"github.com/spec-kit/talent-ledger/internal/repository"
	"github.com/spec-kit/talent-ledger/internal/service"
)

const testLinkSecret = "f0e1d2c3b4a5968778695a4b3c2d1e0ff0e1d2c3b4a5968778695a4b3c2d1e0f"

type actorStore struct{ actors []domain.Actor }

func (s *actorStore) GetByAuthUserID(_ context.Context, id string) (*domain.Actor, error) {
	for i := range s.actors {
		if s.actors[i].AuthUserID == id {
			a := s.actors[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *actorStore) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	for i := range s.actors {
		if s.actors[i].ID == id {
			a := s.actors[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type ledgerViews struct{ mem *ledger.Memory }

func (v ledgerViews) GetByID(_ context.Context, id string) (*domain.Auction, error) {
	a, ok := v.mem.Auction(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (v ledgerViews) ListActive(context.Context, int, int) ([]domain.Auction, error) {
	return nil, nil
}

type callView struct{ mem *ledger.Memory }

func (v callView) GetByID(_ context.Context, id string) (*domain.CallSession, error) {
	c, ok := v.mem.Call(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type txView struct{ mem *ledger.Memory }

func (v txView) ListByActor(_ context.Context, actorID string, _, _ int) ([]domain.CoinTransaction, error) {
	return v.mem.Transactions(actorID), nil
}

type gigStore struct {
	mu   sync.Mutex
	gigs map[string]domain.Gig
	invs map[string]*domain.GigInvitation
}

func (s *gigStore) GetByID(_ context.Context, id string) (*domain.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gigs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *gigStore) Invite(_ context.Context, gigID, profileID string) (*domain.GigInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := gigID + "/" + profileID
	if _, ok := s.invs[key]; !ok {
		s.invs[key] = &domain.GigInvitation{GigID: gigID, ModelProfileID: profileID, Status: domain.InvitationStatusInvited, InvitedAt: time.Now()}
	}
	inv := *s.invs[key]
	return &inv, nil
}

func (s *gigStore) AcceptInvitation(_ context.Context, gigID, profileID string) (*domain.GigInvitation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.invs[gigID+"/"+profileID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	changed := stored.Status == domain.InvitationStatusInvited
	if changed {
		stored.Status = domain.InvitationStatusAccepted
	}
	inv := *stored
	return &inv, changed, nil
}

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	ledger  *ledger.Memory
	links   []string
	actors  map[domain.ActorType]domain.Actor
	gigID   string
	auction string
	call    string
}

func newTestServer(t *testing.T, linkRequests int) *testServer {
	t.Helper()
	s := &testServer{
		tokens: auth.NewTokenManager("test-secret", 5),
		ledger: ledger.NewMemory(),
		actors: map[domain.ActorType]domain.Actor{},
	}
	store := &actorStore{}
	for _, typ := range []domain.ActorType{domain.ActorTypeFan, domain.ActorTypeModel, domain.ActorTypeBrand, domain.ActorTypeAdmin} {
		a := domain.Actor{ID: uuid.NewString(), AuthUserID: "auth-" + string(typ), Type: typ}
		s.actors[typ] = a
		store.actors = append(store.actors, a)
		s.ledger.OpenAccount(a.ID, 100)
	}

	s.auction = uuid.NewString()
	s.ledger.AddAuction(domain.Auction{ID: s.auction, OwnerActorID: s.actors[domain.ActorTypeModel].ID, StartingBid: 10, EndsAt: time.Now().Add(time.Hour)})
	s.call = uuid.NewString()
	s.ledger.AddCall(domain.CallSession{ID: s.call, FanActorID: s.actors[domain.ActorTypeFan].ID, ModelActorID: s.actors[domain.ActorTypeModel].ID, RatePerMinute: 5})
	s.gigID = uuid.NewString()
	gigs := &gigStore{
		gigs: map[string]domain.Gig{s.gigID: {ID: s.gigID, BrandActorID: s.actors[domain.ActorTypeBrand].ID, Title: "Lookbook"}},
		invs: map[string]*domain.GigInvitation{},
	}

	signer, err := deeplink.NewSigner(testLinkSecret)
	require.NoError(t, err)
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventGigInvitationIssued, func(_ context.Context, e events.Event) error {
		s.links = append(s.links, e.Payload.(events.GigInvitationIssuedPayload).AcceptURL)
		return nil
	})

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	economy := service.NewEconomyService(service.EconomyDependencies{
		ActorRepo:       store,
		CallRepo:        callView{mem: s.ledger},
		TransactionRepo: txView{mem: s.ledger},
		Ledger:          s.ledger,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})
	linkService := service.NewGigLinkService(service.GigLinkDependencies{
		ActorRepo:  store,
		GigRepo:    gigs,
		Signer:     signer,
		BaseURL:    "http://links.test",
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, metrics, 5*time.Second)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("talent-ledger", "test", map[string]handlers.Pinger{}),
		Wallet:         handlers.NewWalletHandler(economy),
		Admin:          handlers.NewAdminHandler(economy),
		Auctions:       handlers.NewAuctionsHandler(economy, ledgerViews{mem: s.ledger}),
		Calls:          handlers.NewCallsHandler(economy),
		Gigs:           handlers.NewGigsHandler(linkService),
		AuthMiddleware: auth.NewAuthMiddleware(s.tokens),
		Actors:         store,
		LinkLimiter:    RateLimit(ratelimit.NewLocalLimiter(linkRequests, time.Hour, linkRequests), logger),
		Metrics:        metrics,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, as domain.ActorType, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if as != "" {
		token, _, err := s.tokens.GenerateToken(s.actors[as].AuthUserID)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func dataField(body map[string]any, field string) any {
	d, _ := body["data"].(map[string]any)
	return d[field]
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, _ = s.do(t, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "talent_ledger_http_requests_total")
}

func TestWalletRequiresSession(t *testing.T) {
	s := newTestServer(t, 10)
	status, body := s.do(t, fiber.MethodGet, "/wallet/balance", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestTransferFlow(t *testing.T) {
	s := newTestServer(t, 10)
	model := s.actors[domain.ActorTypeModel].ID

	status, body := s.do(t, fiber.MethodPost, "/wallet/transfers", domain.ActorTypeFan, `{"to_actor_id":"`+model+`","amount":40}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 60, dataField(body, "balance"))

	status, body = s.do(t, fiber.MethodGet, "/wallet/balance", domain.ActorTypeModel, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 140, dataField(body, "balance"))

	status, body = s.do(t, fiber.MethodPost, "/wallet/transfers", domain.ActorTypeFan, `{"to_actor_id":"`+model+`","amount":61}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/wallet/transfers", domain.ActorTypeFan, `{"to_actor_id":"nope","amount":1}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/wallet/transactions", domain.ActorTypeFan, "")
	require.Equal(t, fiber.StatusOK, status)
	items, _ := body["data"].([]any)
	assert.Len(t, items, 1)
}

func TestSpendRoute(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, fiber.MethodPost, "/wallet/spend", domain.ActorTypeFan, `{"amount":25,"reason":"content_unlock","reference_id":"post-1"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 75, dataField(body, "balance"))
	assert.Equal(t, "content_unlock", dataField(body, "reason"))

	status, body = s.do(t, fiber.MethodPost, "/wallet/spend", domain.ActorTypeFan, `{"amount":76,"reason":"content_unlock"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/wallet/spend", domain.ActorTypeFan, `{"amount":1,"reason":"grant"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.do(t, fiber.MethodPost, "/wallet/spend", "", `{"amount":1,"reason":"content_unlock"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestTransferToUnknownActor(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, fiber.MethodPost, "/wallet/transfers", domain.ActorTypeFan, `{"to_actor_id":"`+uuid.NewString()+`","amount":5}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/wallet/balance", domain.ActorTypeFan, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 100, dataField(body, "balance"))
}

func TestPagingRejectsMalformedValues(t *testing.T) {
	s := newTestServer(t, 10)

	for _, query := range []string{"limit=abc", "limit=0", "limit=101", "offset=-1", "offset=x"} {
		status, body := s.do(t, fiber.MethodGet, "/wallet/transactions?"+query, domain.ActorTypeFan, "")
		assert.Equal(t, fiber.StatusBadRequest, status, query)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), query)

		status, _ = s.do(t, fiber.MethodGet, "/auctions?"+query, domain.ActorTypeFan, "")
		assert.Equal(t, fiber.StatusBadRequest, status, query)
	}

	status, body := s.do(t, fiber.MethodGet, "/wallet/transactions?limit=5&offset=2", domain.ActorTypeFan, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 5, body["limit"])
	assert.EqualValues(t, 2, body["offset"])

	status, body = s.do(t, fiber.MethodGet, "/auctions", domain.ActorTypeFan, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 20, body["limit"])
}

func TestAdminGrantGate(t *testing.T) {
	s := newTestServer(t, 10)
	fan := s.actors[domain.ActorTypeFan].ID

	status, body := s.do(t, fiber.MethodPost, "/admin/grants", domain.ActorTypeFan, `{"to_actor_id":"`+fan+`","amount":5}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/admin/grants", domain.ActorTypeAdmin, `{"to_actor_id":"`+fan+`","amount":5}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 105, dataField(body, "balance"))
}

func TestAuctionRoutes(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, fiber.MethodPost, "/auctions/"+s.auction+"/bids", domain.ActorTypeFan, `{"amount":30}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 70, dataField(body, "balance"))

	status, body = s.do(t, fiber.MethodGet, "/auctions/"+s.auction, domain.ActorTypeBrand, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 30, dataField(body, "current_bid"))

	status, body = s.do(t, fiber.MethodPost, "/auctions/"+s.auction+"/buy-now", domain.ActorTypeBrand, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BUSINESS_RULE_VIOLATION", errorCode(body))

	status, body = s.do(t, fiber.MethodPost, "/auctions/"+s.auction+"/cancel", domain.ActorTypeModel, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 1, dataField(body, "refunded_bids"))

	status, _ = s.do(t, fiber.MethodGet, "/auctions/not-a-uuid", domain.ActorTypeFan, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodGet, "/auctions/"+uuid.NewString(), domain.ActorTypeFan, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestCallRoutes(t *testing.T) {
	s := newTestServer(t, 10)

	status, body := s.do(t, fiber.MethodGet, "/calls/"+s.call+"/quote?duration_seconds=121", domain.ActorTypeFan, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 15, dataField(body, "cost"))

	status, _ = s.do(t, fiber.MethodGet, "/calls/"+s.call+"/quote?duration_seconds=abc", domain.ActorTypeFan, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodPost, "/calls/"+s.call+"/settle", domain.ActorTypeFan, `{"duration_seconds":9223372036854775807}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.do(t, fiber.MethodGet, "/calls/"+s.call+"/quote?duration_seconds=86401", domain.ActorTypeFan, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodPost, "/calls/"+s.call+"/settle", domain.ActorTypeFan, `{"duration_seconds":121}`)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 85, dataField(body, "balance"))

	status, body = s.do(t, fiber.MethodPost, "/calls/"+s.call+"/settle", domain.ActorTypeFan, `{"duration_seconds":121}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BUSINESS_RULE_VIOLATION", errorCode(body))
}

func TestGigInvitationLinkFlow(t *testing.T) {
	s := newTestServer(t, 2)
	profile := uuid.NewString()

	status, body := s.do(t, fiber.MethodPost, "/gigs/"+s.gigID+"/invitations", domain.ActorTypeBrand, `{"model_profile_id":"`+profile+`"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "invited", dataField(body, "status"))
	assert.NotContains(t, body, "token")
	require.Len(t, s.links, 1)

	link, err := url.Parse(s.links[0])
	require.NoError(t, err)
	status, body = s.do(t, fiber.MethodGet, link.RequestURI(), "", "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "accepted", dataField(body, "status"))

	status, body = s.do(t, fiber.MethodGet, "/links/gig-accept?token=forged.token", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_LINK", errorCode(body))

	status, body = s.do(t, fiber.MethodGet, "/links/gig-accept?token=forged.token", "", "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", errorCode(body))
}
