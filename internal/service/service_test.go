package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/outlate/internal/auth"
	"github.com/mmynk/outlate/internal/calculator"
	"github.com/mmynk/outlate/internal/idgen"
	"github.com/mmynk/outlate/internal/metrics"
	"github.com/mmynk/outlate/internal/middleware"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/ocr"
	"github.com/mmynk/outlate/internal/rpc"
	"github.com/mmynk/outlate/internal/storage/sqlite"
	"github.com/mmynk/outlate/pkg/api"
	"github.com/mmynk/outlate/pkg/api/apiconnect"
)

type testEnv struct {
	url      string
	registry *prometheus.Registry
	auth     apiconnect.AuthServiceClient
	outings  apiconnect.OutingServiceClient
	receipts apiconnect.ReceiptServiceClient
	token    string
}

// setupTestServer starts the full handler stack on a temp SQLite database,
// registers alex@example.com and returns clients that carry Alex's token.
func setupTestServer(t *testing.T, extractor ocr.Extractor) *testEnv {
	t.Helper()

	ids := idgen.NewCounter()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), sqlite.WithIDSource(ids))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	engine := calculator.New(calculator.WithLogger(logger), calculator.WithMetrics(metrics.NewEngine(reg)))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, ids).WithCost(bcrypt.MinCost)

	router := chi.NewRouter()
	Mount(router,
		NewAuthService(authenticator, jwtManager, store, logger),
		NewOutingService(store, engine, logger),
		NewReceiptService(store, engine, extractor, logger),
		rpc.HandlerOptions(
			middleware.MetricsInterceptor(metrics.NewRPC(reg)),
			middleware.LoggingInterceptor(logger),
			middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures...),
		)...,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	env := &testEnv{url: server.URL, registry: reg}
	env.auth = apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL, rpc.ClientOptions()...)

	resp, err := env.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       "alex@example.com",
		DisplayName: "Alex Johnson",
		Password:    "correct horse",
	}))
	require.NoError(t, err, "Register failed")
	env.useToken(resp.Msg.Token)
	return env
}

// useToken rebuilds the clients so every call carries token.
func (e *testEnv) useToken(token string) {
	e.token = token
	opts := rpc.ClientOptions(connect.WithInterceptors(bearer(token)))
	e.auth = apiconnect.NewAuthServiceClient(http.DefaultClient, e.url, opts...)
	e.outings = apiconnect.NewOutingServiceClient(http.DefaultClient, e.url, opts...)
	e.receipts = apiconnect.NewReceiptServiceClient(http.DefaultClient, e.url, opts...)
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// friday creates the four-person Friday Night outing and returns it with a
// name to person ID lookup.
func (e *testEnv) friday(t *testing.T) (*models.Outing, map[string]string) {
	t.Helper()
	resp, err := e.outings.CreateOuting(context.Background(), connect.NewRequest(&api.CreateOutingRequest{
		Name: "Friday Night Dinner",
		Date: "2024-01-15",
		People: []api.PersonInput{
			{Name: "Alex"}, {Name: "Jordan"}, {Name: "Sam"}, {Name: "Morgan"},
		},
	}))
	require.NoError(t, err, "CreateOuting failed")

	ids := make(map[string]string)
	for _, p := range resp.Msg.Outing.People {
		ids[p.Name] = p.ID
	}
	return resp.Msg.Outing, ids
}

func luigis(p map[string]string) models.Receipt {
	return models.Receipt{
		VendorName: "Luigi's Pizzeria",
		Items: []models.ReceiptItem{
			{Name: "Margherita Pizza", Price: 1800, Quantity: 1, AssignedTo: []string{p["Alex"], p["Jordan"]}},
			{Name: "Craft Beer", Price: 800, Quantity: 2, AssignedTo: []string{p["Alex"]}},
			{Name: "Caesar Salad", Price: 1200, Quantity: 1, AssignedTo: []string{p["Jordan"], p["Sam"]}},
			{Name: "Tiramisu", Price: 900, Quantity: 1, AssignedTo: []string{p["Sam"]}},
		},
		Subtotal:    5500,
		Tax:         495,
		Tip:         1100,
		Total:       7095,
		PaidBy:      p["Alex"],
		SplitMethod: models.SplitByItem,
	}
}

func nightOwl(p map[string]string) models.Receipt {
	return models.Receipt{
		VendorName:     "The Night Owl Bar",
		Subtotal:       7200,
		Tax:            648,
		Tip:            1440,
		Total:          9288,
		PaidBy:         p["Jordan"],
		SplitMethod:    models.SplitEqual,
		IncludedPeople: []string{p["Alex"], p["Jordan"], p["Sam"], p["Morgan"]},
	}
}

func (e *testEnv) addReceipt(t *testing.T, outingID string, r models.Receipt) *api.AddReceiptResponse {
	t.Helper()
	resp, err := e.receipts.AddReceipt(context.Background(), connect.NewRequest(&api.AddReceiptRequest{
		OutingID: outingID,
		Receipt:  r,
	}))
	require.NoError(t, err, "AddReceipt failed")
	return resp.Msg
}

func requireCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, connect.CodeOf(err), "unexpected error: %v", err)
}
