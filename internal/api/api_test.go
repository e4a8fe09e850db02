package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dpperalta/crmclient/internal/cache"
	"github.com/dpperalta/crmclient/internal/graphql"
	"github.com/dpperalta/crmclient/internal/repository"
	"github.com/dpperalta/crmclient/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend plays the remote GraphQL API.
type fakeBackend struct {
	failOrder bool
	orderVars map[string]any
	calls     int
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.calls++

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(req.Query, "query sellerCustomers"):
		w.Write([]byte(`{"data":{"sellerCustomers":[{"id":"c1","firstName":"Ada","lastName":"Lovelace","company":"ACME","email":"ada@example.com"}]}}`))
	case strings.Contains(req.Query, "query products"):
		w.Write([]byte(`{"data":{"products":[{"id":"p1","name":"Keyboard","price":10,"stock":5},{"id":"p2","name":"Mouse","price":5,"stock":8}]}}`))
	case strings.Contains(req.Query, "query sellerOrders"):
		w.Write([]byte(`{"data":{"sellerOrders":[]}}`))
	case strings.Contains(req.Query, "mutation createOrder"):
		if b.failOrder {
			w.Write([]byte(`{"errors":[{"message":"GraphQL error: Stock insuficiente"}]}`))
			return
		}
		b.orderVars = req.Variables
		w.Write([]byte(`{"data":{"createOrder":{"id":"o1","sellerId":"s1"}}}`))
	case strings.Contains(req.Query, "mutation createCustomer"):
		w.Write([]byte(`{"data":{"createCustomer":{"id":"c2","firstName":"Grace","lastName":"Hopper","company":"Navy","email":"grace@example.com"}}}`))
	default:
		w.Write([]byte(`{"data":{}}`))
	}
}

func newTestGateway(t *testing.T) (*echo.Echo, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{}
	server := httptest.NewServer(http.HandlerFunc(backend.handle))
	t.Cleanup(server.Close)

	store := cache.NewMemoryStore()
	gql := graphql.NewClient(server.URL, time.Second)
	customers := repository.NewCustomers(gql, store)
	products := repository.NewProducts(gql, store)
	orders := repository.NewOrders(gql, store)
	account := repository.NewAccount(gql)
	drafts := service.NewDraftService(orders, nil)

	e := echo.New()
	NewHandler(customers, products, orders, account, drafts, nil).Register(e)
	return e, backend
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer test-token")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeDraft(t *testing.T, rec *httptest.ResponseRecorder) service.Draft {
	t.Helper()
	var draft service.Draft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	return draft
}

func TestOrderCompositionFlow(t *testing.T) {
	e, backend := newTestGateway(t)

	rec := do(e, http.MethodPost, "/drafts", "")
	require.Equal(t, 201, rec.Code)
	draft := decodeDraft(t, rec)
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, service.StatusEmpty, draft.Status)

	rec = do(e, http.MethodPut, "/drafts/"+draft.ID+"/customer",
		`{"id":"c1","firstName":"Ada","lastName":"Lovelace","company":"ACME","email":"ada@example.com"}`)
	require.Equal(t, 200, rec.Code)

	rec = do(e, http.MethodPut, "/drafts/"+draft.ID+"/products",
		`[{"id":"p1","name":"Keyboard","price":10,"stock":5},{"id":"p2","name":"Mouse","price":5,"stock":8}]`)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 0.0, decodeDraft(t, rec).Total)

	// editor text lands as a coerced number; garbage is zero
	rec = do(e, http.MethodPut, "/drafts/"+draft.ID+"/lines/p1", `{"quantity":"abc"}`)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 0.0, decodeDraft(t, rec).Total)

	rec = do(e, http.MethodPut, "/drafts/"+draft.ID+"/lines/p1", `{"quantity":"2"}`)
	require.Equal(t, 200, rec.Code)
	rec = do(e, http.MethodPut, "/drafts/"+draft.ID+"/lines/p2", `{"quantity":"3"}`)
	require.Equal(t, 200, rec.Code)

	current := decodeDraft(t, rec)
	assert.Equal(t, 35.0, current.Total)
	assert.True(t, current.Valid)

	rec = do(e, http.MethodPost, "/drafts/"+draft.ID+"/submit", "")
	require.Equal(t, 201, rec.Code)
	assert.Equal(t, "/orders", rec.Header().Get(echo.HeaderLocation))

	var submitted struct {
		Message  string `json:"message"`
		Location string `json:"location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.Equal(t, "Order saved successfully", submitted.Message)
	assert.Equal(t, "/orders", submitted.Location)

	// the submitted payload carries only productId and quantity per line
	require.NotNil(t, backend.orderVars)
	input, ok := backend.orderVars["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", input["customerId"])
	assert.Equal(t, 35.0, input["total"])

	lines, ok := input["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 2)
	for _, raw := range lines {
		line, ok := raw.(map[string]any)
		require.True(t, ok)
		assert.Len(t, line, 2)
		assert.Contains(t, line, "productId")
		assert.Contains(t, line, "quantity")
	}

	// a submitted draft is discarded
	rec = do(e, http.MethodGet, "/drafts/"+draft.ID, "")
	assert.Equal(t, 404, rec.Code)
}

func TestSubmitRejectionShowsCleanedTransientMessage(t *testing.T) {
	e, backend := newTestGateway(t)
	backend.failOrder = true

	draft := decodeDraft(t, do(e, http.MethodPost, "/drafts", ""))
	do(e, http.MethodPut, "/drafts/"+draft.ID+"/customer", `{"id":"c1"}`)
	do(e, http.MethodPut, "/drafts/"+draft.ID+"/products", `[{"id":"p1","name":"Keyboard","price":10,"stock":5}]`)
	do(e, http.MethodPut, "/drafts/"+draft.ID+"/lines/p1", `{"quantity":"2"}`)

	rec := do(e, http.MethodPost, "/drafts/"+draft.ID+"/submit", "")
	require.Equal(t, 422, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Stock insuficiente", resp["error"])

	// the draft survives the rejection, editable, with the transient notice
	current := decodeDraft(t, do(e, http.MethodGet, "/drafts/"+draft.ID, ""))
	assert.Equal(t, "Stock insuficiente", current.Notice)
	assert.Equal(t, service.StatusComposing, current.Status)
	assert.True(t, current.Valid)
}

func TestSubmitRefusesInvalidDraft(t *testing.T) {
	e, _ := newTestGateway(t)

	draft := decodeDraft(t, do(e, http.MethodPost, "/drafts", ""))
	rec := do(e, http.MethodPost, "/drafts/"+draft.ID+"/submit", "")
	assert.Equal(t, 400, rec.Code)
}

func TestCreateCustomerValidationNeverReachesRemote(t *testing.T) {
	e, backend := newTestGateway(t)

	rec := do(e, http.MethodPost, "/customers", `{"firstName":"Grace","lastName":"Hopper","company":"Navy","email":"not-an-email"}`)
	require.Equal(t, 400, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "Email")
	assert.Zero(t, backend.calls)
}

func TestSessionGoneRedirectsToLogin(t *testing.T) {
	// the backend's default answer carries no currentUser, which is how a
	// dead token resolves
	e, _ := newTestGateway(t)

	rec := do(e, http.MethodGet, "/session", "")
	require.Equal(t, 401, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/login", resp["location"])
}

func TestUnknownDraftIs404(t *testing.T) {
	e, _ := newTestGateway(t)

	assert.Equal(t, 404, do(e, http.MethodGet, "/drafts/missing", "").Code)
	assert.Equal(t, 404, do(e, http.MethodPut, "/drafts/missing/customer", `{"id":"c1"}`).Code)
	assert.Equal(t, 404, do(e, http.MethodPut, "/drafts/missing/lines/p1", `{"quantity":"1"}`).Code)
}
