package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medstock/m/domain"
	"medstock/m/internal/auth"
	"medstock/m/internal/directory"
	"medstock/m/internal/geo"
	"medstock/m/internal/latency"
	"medstock/m/internal/oversight"
	"medstock/m/internal/pharmacy"
	"medstock/m/internal/phc"
	"medstock/m/internal/seed"
	"medstock/m/internal/state"
	"medstock/m/internal/storage"
)

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Search(ctx context.Context, address string) (*geo.GeocodeResult, error) {
	args := m.Called(ctx, address)
	res, _ := args.Get(0).(*geo.GeocodeResult)
	return res, args.Error(1)
}

type testEnv struct {
	router   http.Handler
	state    *state.State
	geocoder *mockGeocoder
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	data, err := seed.Load(now, zap.NewNop())
	require.NoError(t, err)
	st := state.New(data, state.WithClock(func() time.Time { return now }))

	session, err := auth.NewSession(context.Background(), storage.NewMemoryStore())
	require.NoError(t, err)

	g := &mockGeocoder{}
	h := New(Services{
		Session:   session,
		Tokens:    auth.NewTokenIssuer("test-secret", time.Hour),
		Pharmacy:  pharmacy.NewService(st, nil),
		PHC:       phc.NewService(st, latency.None(), nil, phc.WithPINCost(bcrypt.MinCost)),
		Oversight: oversight.NewService(st, nil),
		Directory: directory.NewService(st, latency.None(), nil),
		Geocoder:  g,
	}, nil, nil)

	return &testEnv{router: h.Router(), state: st, geocoder: g}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signIn(t *testing.T, role string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/google", "", map[string]string{"role": role})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/google", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[authResponse](t, rec)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.Equal(t, "/", resp.HomePath)
	assert.Equal(t, seed.MockUserUID, resp.User.UID)

	me := env.do(t, http.MethodGet, "/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"role":"user"`)

	rec = env.do(t, http.MethodPut, "/auth/role", resp.Token, map[string]string{"role": "pharmacy"})
	require.Equal(t, http.StatusOK, rec.Code)
	switched := decode[authResponse](t, rec)
	assert.Equal(t, domain.RolePharmacy, switched.User.Role)
	assert.Equal(t, "/pharmacy", switched.HomePath)

	// A token minted before the role change is stale.
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/pharmacy/inventory", resp.Token, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/pharmacy/inventory", switched.Token, nil).Code)

	rec = env.do(t, http.MethodPut, "/auth/role", switched.Token, map[string]string{"role": "surgeon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/auth/sign-out", switched.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/pharmacy/inventory", switched.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/pharmacy/inventory/paracetamol_500mg/stock",
		switched.Token, map[string]any{"delta": -1}).Code)
	item, ok := env.state.PharmacyStore().Get("paracetamol_500mg")
	require.True(t, ok)
	assert.Equal(t, int64(35), item.Quantity)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/auth/me", switched.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPut, "/auth/role", switched.Token, map[string]string{"role": "phc"}).Code)
}

func TestGatedAreasFollowSession(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	first := env.signIn(t, "phc")
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/phc/inventory", first, nil).Code)

	// Signing in again with another role invalidates the earlier token.
	second := env.signIn(t, "oversight")
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/phc/inventory", first, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/oversight/summary", second, nil).Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/auth/sign-out", second, nil).Code)
	rec := env.do(t, http.MethodGet, "/oversight/summary", second, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not signed in"}`, rec.Body.String())
}

func TestRoleGuards(t *testing.T) {
	t.Parallel()

	env := newEnv(t)

	tests := []struct {
		role string
		path string
		want int
	}{
		{role: "", path: "/pharmacy/inventory", want: http.StatusUnauthorized},
		{role: "user", path: "/pharmacy/inventory", want: http.StatusForbidden},
		{role: "pharmacy", path: "/pharmacy/inventory", want: http.StatusOK},
		{role: "pharmacy", path: "/phc/patients", want: http.StatusForbidden},
		{role: "phc", path: "/phc/patients", want: http.StatusOK},
		{role: "phc", path: "/oversight/facilities", want: http.StatusForbidden},
		{role: "oversight", path: "/oversight/facilities", want: http.StatusOK},
		{role: "admin", path: "/pharmacy/inventory", want: http.StatusOK},
		{role: "admin", path: "/phc/patients", want: http.StatusOK},
		{role: "admin", path: "/oversight/summary", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role+tt.path, func(t *testing.T) {
			token := ""
			if tt.role != "" {
				token = env.signIn(t, tt.role)
			}
			rec := env.do(t, http.MethodGet, tt.path, token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := env.do(t, http.MethodGet, "/phc/patients", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPharmacyEndpoints(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	token := env.signIn(t, "pharmacy")

	rec := env.do(t, http.MethodPost, "/pharmacy/inventory", token, map[string]any{"drug_id": "omeprazole_20mg", "quantity": 12})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/pharmacy/inventory", token,
		map[string]any{"drug_id": "insulin", "quantity": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/pharmacy/inventory", token,
		map[string]any{"drug_id": "omeprazole_20mg", "quantity": 1, "price": 5}).Code)

	rec = env.do(t, http.MethodPost, "/pharmacy/inventory/paracetamol_500mg/stock", token, map[string]any{"delta": -40})
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[domain.PharmacyItem](t, rec)
	assert.Equal(t, int64(-5), item.Quantity)
	assert.True(t, item.LowStockAlert)

	rec = env.do(t, http.MethodPost, "/pharmacy/sales", token, map[string]any{
		"customer_phone": "08031112222",
		"items":          []map[string]any{{"inventory_id": "ibuprofen_400mg", "quantity": 2, "price": "1200"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[domain.Purchase](t, rec)
	assert.Equal(t, "+2348031112222", sale.CustomerPhone)
	assert.Equal(t, "2400", sale.TotalAmount.String())

	rec = env.do(t, http.MethodPost, "/pharmacy/sales", token, map[string]any{
		"items": []map[string]any{{"inventory_id": "amlodipine_5mg", "quantity": 50, "price": "300"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/pharmacy/sales", token, map[string]any{"items": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), `\n`)

	sales := decode[[]domain.Purchase](t, env.do(t, http.MethodGet, "/pharmacy/sales", token, nil))
	assert.Equal(t, sale.ID, sales[0].ID)

	daily := decode[pharmacy.SalesSummary](t, env.do(t, http.MethodGet, "/pharmacy/reports/sales/daily", token, nil))
	assert.Equal(t, 1, daily.SaleCount)
	assert.Equal(t, "₦2,400", daily.Display)
}

func TestPHCEndpoints(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	token := env.signIn(t, "phc")

	rec := env.do(t, http.MethodPost, "/phc/patients", token, map[string]any{
		"name": "Bisi Ola", "phone": "08090001111", "age": 41, "gender": "female",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	patient := decode[domain.Patient](t, rec)

	rec = env.do(t, http.MethodGet, "/phc/patients/"+patient.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/phc/patients/nobody", token, nil).Code)

	rec = env.do(t, http.MethodPost, "/phc/dispenses", token, map[string]any{
		"patient_id": patient.ID,
		"items":      []map[string]any{{"drug_id": "paracetamol_500mg", "qty": 150}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[domain.Purchase](t, rec)
	assert.Equal(t, int64(150), record.TotalItems)
	assert.Equal(t, fmt.Sprintf("T-%d-PHC", record.CreatedAt.UnixMilli()), record.TraceID)

	inv := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/phc/inventory", token, nil))
	require.NotEmpty(t, inv)
	assert.Equal(t, "Paracetamol", inv[0]["drug_name"])

	expiring := decode[[]domain.PHCItem](t, env.do(t, http.MethodGet, "/phc/inventory/expiring?days=30", token, nil))
	require.Len(t, expiring, 1)
	assert.Equal(t, "ors_sachet", expiring[0].InventoryID)

	list := decode[[]domain.Purchase](t, env.do(t, http.MethodGet, "/phc/dispenses?patient_id="+patient.ID, token, nil))
	assert.Len(t, list, 1)

	masterlist := decode[[]domain.Drug](t, env.do(t, http.MethodGet, "/phc/masterlist?query=antibiotic", token, nil))
	assert.NotEmpty(t, masterlist)

	rec = env.do(t, http.MethodPost, "/phc/inventory", token, map[string]any{"drug_id": "ciprofloxacin_500mg", "quantity": 30})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/phc/staff", token, map[string]any{"name": "Ada", "role": "Nurse", "pin": "2468"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "pin_hash")
	member := decode[domain.Staff](t, rec)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/phc/staff/"+member.ID+"/verify-pin", token, map[string]string{"pin": "2468"}).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/phc/staff/"+member.ID+"/verify-pin", token, map[string]string{"pin": "1111"}).Code)

	rec = env.do(t, http.MethodPut, "/phc/settings", token, map[string]any{
		"facility_name": "Ikeja PHC", "default_low_stock_threshold": 15, "receipt_footer": "Stay well",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decode[domain.Settings](t, env.do(t, http.MethodGet, "/phc/settings", token, nil))
	assert.Equal(t, "Ikeja PHC", settings.FacilityName)
}

func TestOversightEndpoints(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	token := env.signIn(t, "oversight")

	facilities := decode[[]domain.OversightFacility](t, env.do(t, http.MethodGet, "/oversight/facilities?state=Kano", token, nil))
	assert.Len(t, facilities, 2)

	summary := decode[oversight.Summary](t, env.do(t, http.MethodGet, "/oversight/summary", token, nil))
	assert.Equal(t, 5, summary.Facilities)

	rec := env.do(t, http.MethodGet, "/oversight/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "facilities.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestPublicEndpoints(t *testing.T) {
	t.Parallel()

	env := newEnv(t)

	results := decode[[]directory.Result](t, env.do(t, http.MethodGet, "/public/pharmacies?lat=6.6018&lng=3.3515&radius_km=15", "", nil))
	require.Len(t, results, 2)
	assert.EqualValues(t, 1, results[0].ID)

	results = decode[[]directory.Result](t, env.do(t, http.MethodGet, "/public/pharmacies?drug=insulin", "", nil))
	assert.Empty(t, results)

	results = decode[[]directory.Result](t, env.do(t, http.MethodGet, "/public/pharmacies?drive_through=true&open_now=1", "", nil))
	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].ID)

	for _, bad := range []string{"?lat=6.6", "?lat=abc&lng=3", "?lat=95&lng=3", "?radius_km=-2", "?open_now=maybe"} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/public/pharmacies"+bad, "", nil).Code, bad)
	}

	drugs := decode[[]domain.Drug](t, env.do(t, http.MethodGet, "/public/drugs?query=panadol", "", nil))
	require.Len(t, drugs, 1)
	assert.Equal(t, "Paracetamol", drugs[0].Name)
}

func TestGeoEndpoints(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	env.geocoder.On("Search", mock.Anything, "Allen Avenue").
		Return(&geo.GeocodeResult{Point: domain.Point{Latitude: 6.6, Longitude: 3.35}, DisplayName: "Allen Avenue, Ikeja"}, nil).Once()
	env.geocoder.On("Search", mock.Anything, "Atlantis").
		Return(nil, fmt.Errorf("geo: %w", geo.ErrLocationNotFound)).Once()
	env.geocoder.On("Search", mock.Anything, "Busy").
		Return(nil, geo.ErrRateLimited).Once()

	rec := env.do(t, http.MethodGet, "/geo/geocode?q=Allen+Avenue", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[geo.GeocodeResult](t, rec)
	assert.Equal(t, "Allen Avenue, Ikeja", res.DisplayName)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/geo/geocode?q=Atlantis", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodGet, "/geo/geocode?q=Busy", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/geo/geocode", "", nil).Code)
	env.geocoder.AssertExpectations(t)

	rec = env.do(t, http.MethodGet, "/geo/map-url?lat=6.5&lng=3.25&zoom=12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, geo.StaticMapURL(domain.Point{Latitude: 6.5, Longitude: 3.25}, 12), body["url"])
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/geo/map-url?lat=6.5", "", nil).Code)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: errors.Join(domain.ErrValidation, errors.New("bad")), want: http.StatusBadRequest},
		{err: domain.ErrUnauthenticated, want: http.StatusUnauthorized},
		{err: fmt.Errorf("x: %w", domain.ErrInvalidPIN), want: http.StatusUnauthorized},
		{err: domain.ErrForbidden, want: http.StatusForbidden},
		{err: domain.ErrNotFound, want: http.StatusNotFound},
		{err: domain.ErrInsufficientStock, want: http.StatusUnprocessableEntity},
		{err: geo.ErrUpstream, want: http.StatusBadGateway},
		{err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
