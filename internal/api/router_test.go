package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"jacket_marketplace/internal/config"
	"jacket_marketplace/internal/domain"
	"jacket_marketplace/internal/payment"
	"jacket_marketplace/internal/service"
	"jacket_marketplace/internal/storage"
	"jacket_marketplace/internal/testutil"
	"jacket_marketplace/internal/utils"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

// stubGateway accepts every call unless fail is set.
type stubGateway struct {
	fail bool
}

func (g *stubGateway) CreateQuote(context.Context, string, string, int64) (string, error) {
	if g.fail {
		return "", errors.New("401 unauthorized")
	}
	return "q-1", nil
}

func (g *stubGateway) CreateRecipient(context.Context, string, string, string) (string, error) {
	return "r-1", nil
}

func (g *stubGateway) CreateTransfer(context.Context, string, string, string) (string, error) {
	return "t-1", nil
}

func (g *stubGateway) FundTransfer(context.Context, string) ([]byte, error) {
	return []byte(`{"status":"COMPLETED"}`), nil
}

type testServer struct {
	r      *gin.Engine
	db     *gorm.DB
	rdb    *redis.Client
	crypto *utils.CryptoHelper
	gw     *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	rdb := testutil.NewRedis(t)
	crypto, err := utils.NewCryptoHelper(testutil.FernetKey(t))
	require.NoError(t, err)
	gw := &stubGateway{}
	factory := payment.Factory(func(string) payment.Gateway { return gw })

	r, err := NewRouter(Deps{
		DB:        db,
		Redis:     rdb,
		Users:     service.NewUserService(db, crypto, testSecret, time.Hour),
		Jackets:   service.NewJacketService(db, storage.NewMemoryPhotoStore("https://photos.test")),
		Carts:     service.NewCartService(db, crypto, factory, config.WiseConfig{SourceCurrency: "EUR", TargetCurrency: "EUR"}),
		JWTSecret: testSecret,
	})
	require.NoError(t, err)
	return &testServer{r: r, db: db, rdb: rdb, crypto: crypto, gw: gw}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

// user inserts a user whose payout key is encrypted with the server key and returns it with a token.
func (s *testServer) user(t *testing.T, role domain.Role) (domain.User, string) {
	t.Helper()
	key, err := s.crypto.Encrypt("wise-" + gofakeit.UUID())
	require.NoError(t, err)
	u := testutil.CreateUser(t, s.db, role, key)
	token, err := utils.GenerateJWT(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	return u, token
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func registerBody() map[string]any {
	return map[string]any{
		"first_name": "Maria",
		"last_name":  "Petrova",
		"email":      gofakeit.Email(),
		"phone":      "+3598881234567",
		"password":   "supersecret1",
		"role":       "creator",
		"iban":       "BG80BNBG96611020345678",
		"wise_key":   "wise-api-key",
	}
}

func jacketBody(price int64) map[string]any {
	return map[string]any{
		"photo":       base64.StdEncoding.EncodeToString([]byte(gofakeit.UUID())),
		"extension":   "png",
		"brand":       "Barbour",
		"description": "Waxed cotton field jacket",
		"size":        "l",
		"price":       price,
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	body := registerBody()

	w := s.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])

	w = s.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": body["email"], "password": "supersecret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": body["email"], "password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_RegisterValidation(t *testing.T) {
	s := newTestServer(t)
	body := registerBody()
	body["email"] = "not-an-email"
	body["phone"] = "123"
	delete(body, "iban")

	w := s.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decode(t, w)["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "phone")
	assert.Equal(t, "Missing data for required field.", fields["iban"])

	body = registerBody()
	body["role"] = "admin"
	w = s.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins cannot self-register")
}

func TestAuth_TokenRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/jacket", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Missing token", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/shopping_cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode(t, w)["error"])

	stale, err := utils.GenerateJWT(4242, testSecret, time.Hour)
	require.NoError(t, err)
	w = s.do(t, http.MethodGet, "/jacket", stale, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token of a missing user")
}

func TestJacket_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, guestToken := s.user(t, domain.RoleGuest)
	_, creatorToken := s.user(t, domain.RoleCreator)

	w := s.do(t, http.MethodGet, "/jacket", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No jackets yet", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/jacket", guestToken, jacketBody(100))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Permission denied!", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/jacket", creatorToken, jacketBody(100))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Large", created["size_label"])
	id := uint(created["id"].(float64))

	w = s.do(t, http.MethodGet, "/jacket", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []JacketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	n, err := s.rdb.Exists(ctx, utils.JacketsCacheKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "catalog is cached")

	path := "/jacket/" + itoa(id)
	w = s.do(t, http.MethodPut, path, guestToken, jacketBody(0))
	assert.Equal(t, http.StatusForbidden, w.Code)

	edit := jacketBody(0)
	edit["brand"] = "Belstaff"
	w = s.do(t, http.MethodPut, path, creatorToken, edit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Belstaff", decode(t, w)["brand"])
	n, err = s.rdb.Exists(ctx, utils.JacketsCacheKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "edit invalidates the catalog cache")

	w = s.do(t, http.MethodPut, "/jacket/999", creatorToken, edit)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, path, guestToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, path, creatorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJacket_BrandFilterIsOwnJackets(t *testing.T) {
	s := newTestServer(t)
	_, aToken := s.user(t, domain.RoleCreator)
	_, bToken := s.user(t, domain.RoleCreator)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/jacket", aToken, jacketBody(10)).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/jacket", bToken, jacketBody(20)).Code)

	w := s.do(t, http.MethodGet, "/jacket?brand=Barbour", aToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []JacketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].Price)
}

func TestCart_AddRemoveAndPurchase(t *testing.T) {
	s := newTestServer(t)
	creator, _ := s.user(t, domain.RoleCreator)
	_, buyerToken := s.user(t, domain.RoleGuest)
	jacket := testutil.CreateJacket(t, s.db, creator, 100)

	w := s.do(t, http.MethodGet, "/shopping_cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your shopping cart is empty", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/shopping_cart", buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Purchase failed", decode(t, w)["error"])

	w = s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: jacket.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 100, decode(t, w)["amount"])

	w = s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: jacket.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Jacket not found or already in the cart", decode(t, w)["error"])

	w = s.do(t, http.MethodDelete, "/shopping_cart", buyerToken, CartRequest{JacketID: 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Jacket not found in the cart", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/shopping_cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Purchase successful", decode(t, w)["message"])

	var txs []domain.Transaction
	require.NoError(t, s.db.Find(&txs).Error)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(100), txs[0].Amount)
	assert.Equal(t, creator.ID, txs[0].CreatorID)
	assert.ErrorIs(t, s.db.First(&domain.Jacket{}, jacket.ID).Error, gorm.ErrRecordNotFound)

	w = s.do(t, http.MethodGet, "/shopping_cart", buyerToken, nil)
	assert.Equal(t, "Your shopping cart is empty", decode(t, w)["message"])
}

func TestCart_RemoveKeepsTotal(t *testing.T) {
	s := newTestServer(t)
	creator, _ := s.user(t, domain.RoleCreator)
	_, buyerToken := s.user(t, domain.RoleGuest)
	a := testutil.CreateJacket(t, s.db, creator, 50)
	b := testutil.CreateJacket(t, s.db, creator, 75)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: a.ID}).Code)
	w := s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: b.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 125, decode(t, w)["amount"])

	w = s.do(t, http.MethodDelete, "/shopping_cart", buyerToken, CartRequest{JacketID: a.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var cart domain.ShoppingCart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, int64(75), cart.Amount)
	assert.Equal(t, cart.Total(), cart.Amount)
}

func TestCart_PayoutFailure(t *testing.T) {
	s := newTestServer(t)
	creator, _ := s.user(t, domain.RoleCreator)
	_, buyerToken := s.user(t, domain.RoleGuest)
	jacket := testutil.CreateJacket(t, s.db, creator, 100)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: jacket.ID}).Code)

	s.gw.fail = true
	w := s.do(t, http.MethodPost, "/shopping_cart", buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Payout credential invalid", decode(t, w)["error"])

	var n int64
	require.NoError(t, s.db.Model(&domain.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)
	w = s.do(t, http.MethodGet, "/shopping_cart", buyerToken, nil)
	assert.EqualValues(t, 100, decode(t, w)["amount"], "cart untouched")
}

func TestAdmin_Listings(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, adminToken := s.user(t, domain.RoleAdmin)
	creator, creatorToken := s.user(t, domain.RoleCreator)
	buyer, buyerToken := s.user(t, domain.RoleGuest)

	w := s.do(t, http.MethodGet, "/admin/users", creatorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Permission denied!", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/admin/users?page_size=2", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 2, out["total_pages"])
	assert.Equal(t, false, out["cached"])
	assert.NotContains(t, w.Body.String(), "wise_key")

	w = s.do(t, http.MethodGet, "/admin/users?page_size=2", adminToken, nil)
	assert.Equal(t, true, decode(t, w)["cached"])

	jacket := testutil.CreateJacket(t, s.db, creator, 40)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/shopping_cart", buyerToken, CartRequest{JacketID: jacket.ID}).Code)
	w = s.do(t, http.MethodGet, "/admin/transactions?buyer_id="+itoa(buyer.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"])

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/shopping_cart", buyerToken, nil).Code)
	keys, err := s.rdb.Keys(ctx, transactionsCachePrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys, "checkout invalidates transaction listings")

	w = s.do(t, http.MethodGet, "/admin/transactions?buyer_id="+itoa(buyer.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, "/admin/transactions?creator_id="+itoa(buyer.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["total"])
}
