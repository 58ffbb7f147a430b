package locale

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	localeModel "github.com/sumoniya0512-oss/mobifix/internal/model/locale"
)

func setupRouter() *chi.Mux {
	handler := New(localeModel.NewMemoryStore(localeModel.Seed()))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestListLocales(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/locales", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var packs []localeModel.Pack
	if err := json.Unmarshal(resp.Body.Bytes(), &packs); err != nil {
		t.Fatalf("decode packs: %v", err)
	}
	if len(packs) != 3 {
		t.Fatalf("unexpected pack count: %d", len(packs))
	}
}

func TestGetLocale(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/locales/ta", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var pack localeModel.Pack
	if err := json.Unmarshal(resp.Body.Bytes(), &pack); err != nil {
		t.Fatalf("decode pack: %v", err)
	}
	if pack.Language != localeModel.Tamil {
		t.Fatalf("unexpected pack: %s", pack.Language)
	}
}

func TestGetLocaleUnsupported(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/locales/fr", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
