package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/middleware"
	"savingz.backend/internal/usecases"
	"savingz.backend/pkg/identity"
	"savingz.backend/pkg/utils"
)

// memStore backs every repository interface with maps so handler tests
// exercise the real use cases end to end.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entities.User
	deposits      []entities.Deposit
	broadcasts    []*entities.BroadcastNotification
	notifications []*entities.Notification
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]*entities.User{}}
}

func (s *memStore) Do(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
func (s *memStore) WithLock(ctx context.Context) context.Context                 { return ctx }

func (s *memStore) Upsert(_ context.Context, user *entities.User) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.FirebaseID == user.FirebaseID {
			cp := *u
			return &cp, nil
		}
	}
	user.ID = utils.GenerateUUIDv7()
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByFirebaseID(_ context.Context, firebaseID string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.FirebaseID == firebaseID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (s *memStore) UpdateProfile(_ context.Context, id uuid.UUID, in entities.UpdateProfileInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if in.FirstName != nil {
		u.FirstName = null.StringFrom(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = null.StringFrom(*in.LastName)
	}
	return nil
}

func (s *memStore) UpdatePushToken(_ context.Context, id uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].PushToken = null.NewString(token, token != "")
	return nil
}

func (s *memStore) UpdateProgress(_ context.Context, user *entities.User, expectedXP int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.users[user.ID]
	if stored.XP != expectedXP {
		return domainerrors.ErrConflict
	}
	stored.XP, stored.Level = user.XP, user.Level
	stored.StreakCount, stored.LastSavedDate = user.StreakCount, user.LastSavedDate
	return nil
}

func (s *memStore) UpdateRole(_ context.Context, id uuid.UUID, role entities.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].Role = role
	return nil
}

func (s *memStore) ListIDs(context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memStore) ListPushTokens(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tokens []string
	for _, u := range s.users {
		if u.PushToken.Valid {
			tokens = append(tokens, u.PushToken.String)
		}
	}
	return tokens, nil
}

func (s *memStore) ResetLapsedStreaks(context.Context, time.Time) (int64, error) { return 0, nil }

func (s *memStore) Create(_ context.Context, d *entities.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = utils.GenerateUUIDv7()
	s.deposits = append(s.deposits, *d)
	return nil
}

func (s *memStore) ListByUserID(_ context.Context, userID uuid.UUID, _ utils.PaginationParams) ([]entities.Deposit, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Deposit
	for i := len(s.deposits) - 1; i >= 0; i-- {
		if s.deposits[i].UserID == userID {
			out = append(out, s.deposits[i])
		}
	}
	return out, int64(len(out)), nil
}

func (s *memStore) SumByUser(context.Context) ([]entities.UserTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := map[uuid.UUID]decimal.Decimal{}
	for _, d := range s.deposits {
		totals[d.UserID] = totals[d.UserID].Add(d.Amount)
	}
	out := make([]entities.UserTotal, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, entities.UserTotal{UserID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, TotalSaved: totals[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type memNotifications struct{ *memStore }

func (s memNotifications) CreateBroadcast(_ context.Context, b *entities.BroadcastNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.New()
	s.broadcasts = append(s.broadcasts, b)
	return nil
}

func (s memNotifications) CreateBatch(_ context.Context, items []*entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range items {
		n.ID = utils.GenerateUUIDv7()
		s.notifications = append(s.notifications, n)
	}
	return nil
}

func (s memNotifications) ListByUserID(_ context.Context, userID uuid.UUID, _ utils.PaginationParams) ([]entities.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (s memNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s memNotifications) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for _, item := range s.notifications {
		if item.UserID != userID || item.IsRead || (len(ids) > 0 && !want[item.ID]) {
			continue
		}
		item.IsRead = true
		n++
	}
	return n, nil
}

type oracleStub struct {
	quotes map[string]entities.AssetQuote
	err    error
}

func (o *oracleStub) GetPrices(_ context.Context, symbols []string, _ []string) (map[string]entities.AssetQuote, error) {
	if o.err != nil {
		return nil, o.err
	}
	out := map[string]entities.AssetQuote{}
	for _, s := range symbols {
		if q, ok := o.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

type pushStub struct {
	sent []entities.PushMessage
}

func (p *pushStub) Send(_ context.Context, msgs []entities.PushMessage) (entities.PushReport, error) {
	p.sent = append(p.sent, msgs...)
	return entities.PushReport{Sent: len(msgs)}, nil
}

type verifierStub struct{}

// Verify accepts "token-<uid>" and asserts <uid>@example.com
func (verifierStub) Verify(_ context.Context, token string) (*identity.Identity, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, identity.ErrInvalidToken
	}
	uid := token[len(prefix):]
	return &identity.Identity{UID: uid, Email: uid + "@example.com"}, nil
}

func priceQuote(symbol, usd, ngn string) entities.AssetQuote {
	return entities.AssetQuote{Symbol: symbol, Prices: map[string]decimal.Decimal{
		"usd": decimal.RequireFromString(usd),
		"ngn": decimal.RequireFromString(ngn),
	}}
}

type testApp struct {
	router *gin.Engine
	store  *memStore
	oracle *oracleStub
	push   *pushStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	notifications := memNotifications{store}
	oracle := &oracleStub{quotes: map[string]entities.AssetQuote{
		"BTC":  priceQuote("BTC", "50000", "75000000"),
		"ETH":  priceQuote("ETH", "2000", "3000000"),
		"USDT": priceQuote("USDT", "1", "1500"),
	}}
	push := &pushStub{}

	leaderboard := usecases.NewLeaderboardUsecase(store, nil, 0, 10)
	userUC := usecases.NewUserUsecase(store)
	savingsUC := usecases.NewSavingsUsecase(store, store, store, oracle, leaderboard, nil, time.Second)
	portfolioUC := usecases.NewPortfolioUsecase(store, store, oracle, "ngn", time.Second)
	notificationUC := usecases.NewNotificationUsecase(store, store, notifications, push, nil)
	marketUC := usecases.NewMarketUsecase(oracle, "ngn", time.Second)

	userHandler := NewUserHandler(userUC, portfolioUC)
	savingsHandler := NewSavingsHandler(savingsUC)
	leaderboardHandler := NewLeaderboardHandler(leaderboard)
	notificationHandler := NewNotificationHandler(notificationUC)
	marketHandler := NewMarketHandler(marketUC)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	api.GET("/prices", marketHandler.ListPrices)

	user := api.Group("/user", middleware.AuthMiddleware(verifierStub{}))
	user.POST("/register", userHandler.Register)
	user.GET("/profile", userHandler.GetProfile)
	user.POST("/profile/update", userHandler.UpdateProfile)
	user.PUT("/push-token", userHandler.RegisterPushToken)
	user.POST("/save", savingsHandler.Save)
	user.GET("/savings", savingsHandler.ListSavings)
	user.GET("/notifications", notificationHandler.List)
	user.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	user.POST("/notifications/read", notificationHandler.MarkRead)

	admin := api.Group("/admin", middleware.AuthMiddleware(verifierStub{}), middleware.RequireAdmin(userUC))
	admin.POST("/send-notification", notificationHandler.Broadcast)

	return &testApp{router: r, store: store, oracle: oracle, push: push}
}

func (a *testApp) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer token-"+uid)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, uid string) {
	t.Helper()
	if w := a.do(t, http.MethodPost, "/api/v1/user/register", uid, nil); w.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", uid, w.Code, w.Body.String())
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}
