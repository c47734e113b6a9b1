package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wastewise/backend/models"
)

func TestAddWasteLogDecrementsStock(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.signup(t, "cook@example.com", models.RoleUser)
	item := addItem(t, app, token, map[string]any{
		"name": "Milk", "quantity": 5, "unit": "l", "costPerUnit": 1.5,
		"expiryDate": time.Now().UTC().Format(time.RFC3339),
	})
	id := item["id"].(string)

	w := app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemId": id, "quantity": 2, "reason": "spoiled"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode(t, w)
	require.Equal(t, "Milk", entry["itemName"])
	require.Equal(t, "l", entry["unit"])
	require.InDelta(t, 3.0, entry["cost"], 1e-9)

	w = app.do(t, http.MethodGet, "/inventory/"+id, token, nil)
	require.EqualValues(t, 3, decode(t, w)["quantity"])

	w = app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemId": id, "quantity": 4, "reason": "spoiled"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "insufficient stock", decode(t, w)["error"])

	w = app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemId": "65f000000000000000000000", "quantity": 1, "reason": "spoiled"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddWasteLogWithoutItem(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.signup(t, "cook@example.com", models.RoleUser)

	w := app.do(t, http.MethodPost, "/waste", token, map[string]any{"quantity": 1, "reason": "plate_waste"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "itemName", decode(t, w)["field"])

	w = app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemName": "Soup", "quantity": 1, "unit": "l", "reason": "leftover"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "reason", decode(t, w)["field"])

	w = app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemName": "Soup", "quantity": 0, "unit": "l", "reason": "other"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/waste", token, map[string]any{"itemName": "Soup", "quantity": 1.5, "unit": "l", "reason": "plate_waste", "cost": 4})
	require.Equal(t, http.StatusCreated, w.Code)
	require.InDelta(t, 4.0, decode(t, w)["cost"], 1e-9)
}

func TestListAndDeleteWasteLogs(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.signup(t, "cook@example.com", models.RoleUser)
	managerToken, _ := app.signup(t, "lead@example.com", models.RoleManager)

	for _, body := range []map[string]any{
		{"itemName": "Soup", "quantity": 1, "unit": "l", "reason": "plate_waste", "loggedAt": "2026-03-03T12:00:00Z"},
		{"itemName": "Bread", "quantity": 2, "unit": "pc", "reason": "expired", "loggedAt": "2026-04-03T12:00:00Z"},
	} {
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/waste", token, body).Code)
	}

	w := app.do(t, http.MethodGet, "/waste", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.EqualValues(t, 2, body["total"])
	first := body["items"].([]any)[0].(map[string]any)
	require.Equal(t, "Bread", first["itemName"])

	w = app.do(t, http.MethodGet, "/waste?reason=expired", token, nil)
	require.EqualValues(t, 1, decode(t, w)["total"])

	w = app.do(t, http.MethodGet, "/waste?from=2026-03-01&to=2026-04-01", token, nil)
	require.EqualValues(t, 1, decode(t, w)["total"])

	w = app.do(t, http.MethodGet, "/waste?from=2026-04-01&to=2026-03-01", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/waste?reason=unknown", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	id := first["id"].(string)
	require.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, "/waste/"+id, token, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/waste/"+id, managerToken, nil).Code)
	require.Equal(t, http.StatusNotFound, app.do(t, http.MethodDelete, "/waste/"+id, managerToken, nil).Code)
}
