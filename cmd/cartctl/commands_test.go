package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products/":
			w.Write([]byte(`[
				{"id":1,"title":"Leche entera","description":"Sachet","price":1.2345,"stock":5,"pictures":[]},
				{"id":2,"title":"Pan lactal","description":"Bolsa grande","price":0.9,"stock":3,"pictures":[]}
			]`))
		case "/products/1":
			w.Write([]byte(`{"id":1,"title":"Leche entera","description":"Sachet","price":1.2345,"stock":5,"pictures":["/static/milk.png"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CART_STORAGE", "file")
	t.Setenv("CART_FILE_PATH", filepath.Join(t.TempDir(), "cart"))
	t.Setenv("CATALOG_API_URL", catalogServer(t).URL)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCartctlSessionsShareTheCart(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "add", "1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := run(t, "add", "1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "now 2 in cart") {
		t.Fatalf("add output = %q", out)
	}

	out, err = run(t, "qty", "1")
	if err != nil {
		t.Fatalf("qty: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("qty output = %q, want 2", out)
	}

	out, err = run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Leche entera") || !strings.Contains(out, "total price: 2468") {
		t.Fatalf("list output = %q", out)
	}

	if _, err := run(t, "remove", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, _ = run(t, "qty", "1")
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("qty after remove = %q, want 1", out)
	}

	if _, err := run(t, "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _ = run(t, "list")
	if !strings.Contains(out, "cart is empty") {
		t.Fatalf("list after clear = %q", out)
	}
}

func TestCartctlProductsSearch(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "products", "--search", "bolsa")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if !strings.Contains(out, "Pan lactal") || strings.Contains(out, "Leche entera") {
		t.Fatalf("products output = %q", out)
	}
	if !strings.Contains(out, "900") {
		t.Fatalf("expected scaled price 900 in %q", out)
	}
}

func TestCartctlErrors(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "add", "abc"); err == nil {
		t.Fatal("expected error for a non-numeric id")
	}
	if _, err := run(t, "add", "42"); err == nil {
		t.Fatal("expected error for a product the catalog does not know")
	}
	out, err := run(t, "remove", "42")
	if err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if !strings.Contains(out, "not in the cart") {
		t.Fatalf("remove output = %q", out)
	}
}

func TestCartctlHistory(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "history"); err == nil {
		t.Fatal("expected error without CART_JOURNAL_PATH")
	}

	t.Setenv("CART_JOURNAL_PATH", filepath.Join(t.TempDir(), "journal", "cart.db"))
	if _, err := run(t, "add", "1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	out, err := run(t, "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	clearAt := strings.Index(out, "CLEAR_CART")
	addAt := strings.Index(out, "ADD_ITEM")
	if clearAt < 0 || addAt < 0 || clearAt > addAt {
		t.Fatalf("history output = %q", out)
	}
}
