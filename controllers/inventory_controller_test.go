package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wastewise/backend/models"
)

func addItem(t *testing.T, app *testApp, token string, body map[string]any) map[string]any {
	t.Helper()
	w := app.do(t, http.MethodPost, "/inventory", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func TestInventoryCRUD(t *testing.T) {
	app := newTestApp(t)
	userToken, user := app.signup(t, "cook@example.com", models.RoleUser)
	managerToken, _ := app.signup(t, "lead@example.com", models.RoleManager)

	soon := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	later := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)

	milk := addItem(t, app, userToken, map[string]any{
		"name": "Crème Fraîche", "category": "dairy", "quantity": 4, "unit": "l",
		"costPerUnit": 2.5, "expiryDate": soon,
	})
	require.Equal(t, "creme-fraiche", milk["sku"])
	require.Equal(t, user.ID.Hex(), milk["createdBy"])
	addItem(t, app, userToken, map[string]any{
		"name": "Rice", "category": "dry", "quantity": 10, "unit": "kg", "expiryDate": later,
	})

	w := app.do(t, http.MethodGet, "/inventory", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 2, decode(t, w)["total"])

	w = app.do(t, http.MethodGet, "/inventory?category=dairy", userToken, nil)
	require.EqualValues(t, 1, decode(t, w)["total"])

	w = app.do(t, http.MethodGet, "/inventory?expiringWithinDays=3", userToken, nil)
	require.EqualValues(t, 1, decode(t, w)["total"])

	w = app.do(t, http.MethodGet, "/inventory?expiringWithinDays=soon", userToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	id := milk["id"].(string)
	w = app.do(t, http.MethodGet, "/inventory/"+id, userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPatch, "/inventory/"+id, userToken, map[string]any{"name": "Sour Cream", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	require.Equal(t, "sour-cream", updated["sku"])
	require.EqualValues(t, 3, updated["quantity"])

	w = app.do(t, http.MethodPatch, "/inventory/"+id, userToken, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodDelete, "/inventory/"+id, userToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "inventory:delete", decode(t, w)["required"])

	w = app.do(t, http.MethodDelete, "/inventory/"+id, managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodGet, "/inventory/"+id, userToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddInventoryItemValidation(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.signup(t, "cook@example.com", models.RoleUser)
	expiry := time.Now().UTC().Format(time.RFC3339)

	cases := []map[string]any{
		{"name": "Milk", "unit": "l", "expiryDate": expiry},
		{"name": "Milk", "quantity": -1, "unit": "l", "expiryDate": expiry},
		{"name": "Milk", "quantity": 1, "unit": "l"},
		{"name": "   ", "quantity": 1, "unit": "l", "expiryDate": expiry},
	}
	for _, body := range cases {
		w := app.do(t, http.MethodPost, "/inventory", token, body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	addItem(t, app, token, map[string]any{"name": "Milk", "quantity": 0, "unit": "l", "expiryDate": expiry})
}
