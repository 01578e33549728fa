package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"fooddelivery/internal/cart"
	"fooddelivery/internal/domain"
)

func TestCatalogHandlers(t *testing.T) {
	api := newTestAPI(t, cart.ReplaceSilently)

	rec := api.do(http.MethodGet, "/restaurants", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Fatalf("list: %d body=%s", rec.Code, rec.Body.String())
	}
	rec = api.do(http.MethodGet, "/restaurants/r1", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deliveryFee":"3"`) {
		t.Fatalf("get: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := api.do(http.MethodGet, "/restaurants/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = api.do(http.MethodGet, "/restaurants/r1/menu", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Burger"`) {
		t.Fatalf("menu: %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := api.do(http.MethodGet, "/menu-items/m1", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("menu item: %d", rec.Code)
	}
	if rec := api.do(http.MethodGet, "/search?q=burger", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("search: %d", rec.Code)
	}
}

func TestCatalogHandlers_ErrorMapping(t *testing.T) {
	api := newTestAPI(t, cart.ReplaceSilently)

	api.catalog.searchErr = domain.ErrInvalidInput
	if rec := api.do(http.MethodGet, "/search", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	api.catalog.searchErr = errors.New("connection reset by peer")
	rec := api.do(http.MethodGet, "/search?q=x", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}
