//go:build integration

package api_test

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarzotto/asta/internal/adapters/api"
	infradb "github.com/dmarzotto/asta/internal/adapters/database"
	"github.com/dmarzotto/asta/internal/domain/auctions"
	"github.com/dmarzotto/asta/internal/domain/items"
	"github.com/dmarzotto/asta/internal/domain/users"
	"github.com/dmarzotto/asta/pkg/auth"
	"github.com/dmarzotto/asta/pkg/database"
	"github.com/dmarzotto/asta/pkg/testhelpers"
)

// Response shapes decoded by the tests. Kept local so the tests stay
// black-box against the handlers.
type testUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type testLogin struct {
	Token string   `json:"token"`
	User  testUser `json:"user"`
}

type testItem struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	BasePrice float64 `json:"base_price"`
}

type testAuction struct {
	ID           string   `json:"id"`
	CreatorID    string   `json:"creator_id"`
	InitialPrice float64  `json:"initial_price"`
	MinIncrement float64  `json:"min_increment"`
	Status       string   `json:"status"`
	WinnerID     *string  `json:"winner_id"`
	FinalPrice   *float64 `json:"final_price"`
}

type testBid struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

type testDetail struct {
	Auction    testAuction `json:"auction"`
	Items      []testItem  `json:"items"`
	Bids       []testBid   `json:"bids"`
	HighestBid *testBid    `json:"highest_bid"`
	MinNextBid float64     `json:"min_next_bid"`
}

type testError struct {
	Error      string   `json:"error"`
	MinimumBid *float64 `json:"minimum_bid"`
	Offered    *float64 `json:"offered"`
}

// setupAPIServer wires the full HTTP API against a real database.
// The recently-viewed cache is left nil, so /auctions/recent serves an
// empty feed.
func setupAPIServer(t *testing.T, pool *pgxpool.Pool) *httptest.Server {
	t.Helper()

	signer, err := auth.NewSigner([]byte("0123456789abcdef0123456789abcdef"), "asta-test", time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	userRepo := infradb.NewPostgresUserRepository(pool)
	itemRepo := infradb.NewPostgresItemRepository(pool)
	auctionRepo := infradb.NewPostgresAuctionRepository(pool)
	bidRepo := infradb.NewPostgresBidRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)

	userService := users.NewService(userRepo, outboxRepo, signer, txManager)
	itemService := items.NewService(itemRepo)
	auctionService := auctions.NewService(txManager, auctionRepo, bidRepo, itemRepo, outboxRepo)

	authHandler := api.NewAuthHandler(userService, logger)
	itemHandler := api.NewItemHandler(itemService, logger)
	auctionHandler := api.NewAuctionHandler(auctionService, nil, logger)
	e := api.NewRouter(authHandler, itemHandler, auctionHandler, signer, logger)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

// doJSON performs a request and decodes the response body into out when
// out is non-nil
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// registerAndLogin creates a user through the API and returns their token and ID
func registerAndLogin(t *testing.T, baseURL, email string) (string, string) {
	t.Helper()

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password1234",
		"full_name": "Mario Rossi",
	}, nil)
	require.Equal(t, http.StatusCreated, status, "register should succeed")

	var login testLogin
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password1234",
	}, &login)
	require.Equal(t, http.StatusOK, status, "login should succeed")
	require.NotEmpty(t, login.Token)
	return login.Token, login.User.ID
}

func TestAPI_AuthFlow(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	server := setupAPIServer(t, testDB.Pool)

	t.Run("RegisterAndMe", func(t *testing.T) {
		token, userID := registerAndLogin(t, server.URL, "mario@example.com")

		var me testUser
		status := doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/me", token, nil, &me)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, userID, me.ID)
		assert.Equal(t, "mario@example.com", me.Email)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		var errBody testError
		status := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "", map[string]string{
			"email":     "mario@example.com",
			"password":  "password1234",
			"full_name": "Impostore",
		}, &errBody)
		assert.Equal(t, http.StatusConflict, status)
		assert.NotEmpty(t, errBody.Error)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", "", map[string]string{
			"email":    "mario@example.com",
			"password": "not-the-password",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("InvalidRegistration", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "", map[string]string{
			"email":     "no-at-sign",
			"password":  "password1234",
			"full_name": "Anonimo",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("MissingToken", func(t *testing.T) {
		status := doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/me", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestAPI_AuctionLifecycle(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	server := setupAPIServer(t, testDB.Pool)
	base := server.URL + "/api/v1"

	sellerToken, sellerID := registerAndLogin(t, server.URL, "seller@example.com")
	buyerToken, _ := registerAndLogin(t, server.URL, "buyer@example.com")

	// Seller lists two items
	var vinyl, guitar testItem
	status := doJSON(t, http.MethodPost, base+"/items", sellerToken, map[string]any{
		"code":       "VINYL-001",
		"name":       "Vinile autografato",
		"base_price": 500.00,
	}, &vinyl)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, http.MethodPost, base+"/items", sellerToken, map[string]any{
		"code":       "GUITAR-001",
		"name":       "Chitarra elettrica",
		"base_price": 250.00,
	}, &guitar)
	require.Equal(t, http.StatusCreated, status)

	// Both show up as available
	var available []testItem
	status = doJSON(t, http.MethodGet, base+"/users/me/items/available", sellerToken, nil, &available)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, available, 2)

	// Seller opens an auction over both items
	var auction testAuction
	status = doJSON(t, http.MethodPost, base+"/auctions", sellerToken, map[string]any{
		"item_ids":      []string{vinyl.ID, guitar.ID},
		"min_increment": 50.00,
		"deadline":      time.Now().Add(24 * time.Hour),
	}, &auction)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 750.00, auction.InitialPrice, "Initial price is the sum of the base prices")
	assert.Equal(t, "open", auction.Status)
	assert.Equal(t, sellerID, auction.CreatorID)

	auctionURL := fmt.Sprintf("%s/auctions/%s", base, auction.ID)

	// The items are now tied up
	status = doJSON(t, http.MethodGet, base+"/users/me/items/available", sellerToken, nil, &available)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, available)

	// The auction is findable by keyword
	var found []testAuction
	status = doJSON(t, http.MethodGet, base+"/auctions/search?q=vinile", buyerToken, nil, &found)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, found, 1)
	assert.Equal(t, auction.ID, found[0].ID)

	// A bid below the initial price is rejected with the exact floor
	var tooLow testError
	status = doJSON(t, http.MethodPost, auctionURL+"/bids", buyerToken, map[string]any{
		"amount": 700.00,
	}, &tooLow)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, tooLow.MinimumBid)
	assert.Equal(t, 750.00, *tooLow.MinimumBid)
	require.NotNil(t, tooLow.Offered)
	assert.Equal(t, 700.00, *tooLow.Offered)

	// A bid at the floor is admitted
	var placed testBid
	status = doJSON(t, http.MethodPost, auctionURL+"/bids", buyerToken, map[string]any{
		"amount": 750.00,
	}, &placed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 750.00, placed.Amount)

	// The creator cannot bid on their own auction
	status = doJSON(t, http.MethodPost, auctionURL+"/bids", sellerToken, map[string]any{
		"amount": 800.00,
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The detail view aggregates items, bids and the next admissible bid
	var detail testDetail
	status = doJSON(t, http.MethodGet, auctionURL, buyerToken, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, detail.Items, 2)
	require.Len(t, detail.Bids, 1)
	require.NotNil(t, detail.HighestBid)
	assert.Equal(t, placed.ID, detail.HighestBid.ID)
	assert.Equal(t, 800.00, detail.MinNextBid)

	// Only the creator may close, and only after the deadline
	status = doJSON(t, http.MethodPost, auctionURL+"/close", buyerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = doJSON(t, http.MethodPost, auctionURL+"/close", sellerToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Without Redis the recent feed is empty but healthy
	var recent []testAuction
	status = doJSON(t, http.MethodGet, base+"/auctions/recent", buyerToken, nil, &recent)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, recent)

	// Listing endpoints
	var mine []testAuction
	status = doJSON(t, http.MethodGet, base+"/users/me/auctions", sellerToken, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine, 1)
	assert.Equal(t, auction.ID, mine[0].ID)

	// The sell page partitions by lifecycle state
	status = doJSON(t, http.MethodGet, base+"/users/me/auctions?status=open", sellerToken, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine, 1)
	assert.Equal(t, auction.ID, mine[0].ID)

	status = doJSON(t, http.MethodGet, base+"/users/me/auctions?status=closed", sellerToken, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, mine)

	status = doJSON(t, http.MethodGet, base+"/users/me/auctions?status=pending", sellerToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var won []testAuction
	status = doJSON(t, http.MethodGet, base+"/users/me/auctions/won", buyerToken, nil, &won)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, won)

	// Malformed IDs and missing auctions
	status = doJSON(t, http.MethodGet, base+"/auctions/not-a-uuid", buyerToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodGet, base+"/auctions/00000000-0000-0000-0000-000000000000", buyerToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Every write surface requires a token
	status = doJSON(t, http.MethodPost, base+"/items", "", map[string]any{
		"code": "X", "name": "X", "base_price": 1.0,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
