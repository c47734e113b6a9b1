package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/logging"
	"github.com/wastewise/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

type memInventory struct {
	mu    sync.Mutex
	items map[bson.ObjectID]models.InventoryItem
}

func (m *memInventory) List(_ context.Context, f database.InventoryFilter) ([]models.InventoryItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.InventoryItem, 0)
	for _, it := range m.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.ExpiringBefore != nil && it.ExpiryDate.After(*f.ExpiringBefore) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, int64(len(out)), nil
}

func (m *memInventory) Get(_ context.Context, id bson.ObjectID) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &it, nil
}

func (m *memInventory) Create(_ context.Context, item *models.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memInventory) Update(_ context.Context, id bson.ObjectID, set bson.M) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "name":
			it.Name = v.(string)
		case "sku":
			it.SKU = v.(string)
		case "category":
			it.Category = v.(string)
		case "quantity":
			it.Quantity = v.(float64)
		case "unit":
			it.Unit = v.(string)
		case "costPerUnit":
			it.CostPerUnit = v.(float64)
		case "expiryDate":
			it.ExpiryDate = v.(time.Time)
		case "location":
			it.Location = v.(string)
		}
	}
	m.items[id] = it
	return &it, nil
}

func (m *memInventory) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memInventory) Decrement(_ context.Context, id bson.ObjectID, qty float64) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if it.Quantity < qty {
		return nil, database.ErrInsufficientStock
	}
	it.Quantity -= qty
	m.items[id] = it
	return &it, nil
}

func (m *memInventory) CountExpiring(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, it := range m.items {
		if !it.ExpiryDate.After(before) && it.Quantity > 0 {
			n++
		}
	}
	return n, nil
}

type memWaste struct {
	mu   sync.Mutex
	logs []models.WasteLog
}

func (m *memWaste) List(_ context.Context, f database.WasteFilter) ([]models.WasteLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.WasteLog, 0)
	for _, l := range m.logs {
		if f.Reason != "" && string(l.Reason) != f.Reason {
			continue
		}
		if f.From != nil && l.LoggedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !l.LoggedAt.Before(*f.To) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoggedAt.After(out[j].LoggedAt) })
	return out, int64(len(out)), nil
}

func (m *memWaste) Create(_ context.Context, entry *models.WasteLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memWaste) Delete(_ context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.logs {
		if l.ID == id {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return auth.ErrNotFound
}

func (m *memWaste) Summary(ctx context.Context, from, to *time.Time) ([]models.WasteSummaryRow, []models.WasteSummaryRow, error) {
	logs, _, _ := m.List(ctx, database.WasteFilter{From: from, To: to})
	group := func(key func(models.WasteLog) string) []models.WasteSummaryRow {
		idx := map[string]int{}
		rows := make([]models.WasteSummaryRow, 0)
		for _, l := range logs {
			k := key(l)
			i, ok := idx[k]
			if !ok {
				i = len(rows)
				idx[k] = i
				rows = append(rows, models.WasteSummaryRow{Key: k})
			}
			rows[i].Count++
			rows[i].Quantity += l.Quantity
			rows[i].Cost += l.Cost
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
		return rows
	}
	byReason := group(func(l models.WasteLog) string { return string(l.Reason) })
	byMonth := group(func(l models.WasteLog) string { return l.LoggedAt.UTC().Format("2006-01") })
	return byReason, byMonth, nil
}

type fakeUploader struct {
	name string
	body []byte
}

func (u *fakeUploader) UploadExport(_ context.Context, objectName, _ string, body []byte) (string, error) {
	u.name = objectName
	u.body = append([]byte(nil), body...)
	return "https://cdn.example.com/" + objectName, nil
}

type sentCode struct {
	email string
	code  string
	flow  models.CodeType
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, email, code string, flow models.CodeType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentCode{email: email, code: code, flow: flow})
	return nil
}

func (n *recordingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no code was sent")
	return n.sent[len(n.sent)-1].code
}

type testApp struct {
	router    *gin.Engine
	svc       *auth.Service
	accounts  *database.MemoryAccounts
	inventory *memInventory
	waste     *memWaste
	uploader  *fakeUploader
	notifier  *recordingNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.Discard()
	app := &testApp{
		accounts:  database.NewMemoryAccounts(),
		inventory: &memInventory{items: map[bson.ObjectID]models.InventoryItem{}},
		waste:     &memWaste{},
		uploader:  &fakeUploader{},
		notifier:  &recordingNotifier{},
	}
	broker := auth.NewBroker(database.NewMemoryCodes(), app.notifier, auth.DefaultCodeTTL, 0, log)
	signer := auth.NewJWTSigner([]byte("controller-secret-controller-secret"), auth.DefaultTokenTTL)
	app.svc = auth.NewService(app.accounts, broker, auth.NewBcryptHasher(bcrypt.MinCost, 4), signer, log)

	app.router = gin.New()
	RegisterRoutes(app.router, app.svc, Deps{
		Inventory: app.inventory,
		Waste:     app.waste,
		Uploader:  app.uploader,
		Limits:    QueryLimits{Default: 20, Max: 100},
		Log:       log,
	})
	return app
}

// signup registers an account, applies role, and returns a bearer token.
func (a *testApp) signup(t *testing.T, email string, role models.Role) (string, *models.Account) {
	t.Helper()
	s, err := a.svc.Register(context.Background(), "Test", email, "hunter22")
	require.NoError(t, err)
	if role != models.RoleUser {
		require.NoError(t, a.accounts.SetRole(context.Background(), s.Account.ID, role))
	}
	acc, err := a.accounts.FindByID(context.Background(), s.Account.ID)
	require.NoError(t, err)
	return s.Token, acc
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
