package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
)

const ingredientJSON = `{
	"id": 4, "name": "Лосось", "unit": "kg", "batch_number": "B-1A2B3C4D",
	"category": "fish", "supplier": "Nord", "brutto": 10, "netto": 8.5,
	"waste_percent": 15, "yield_percent": 85, "shelf_life_days": 3,
	"expiry_date": "04.03.2026", "gross_price": 1000, "net_price": 850,
	"price_per_unit": 100, "net_price_per_unit": 117.6471, "movements_count": 2,
	"created_at": "2026-03-01T10:00:00Z", "updated_at": "2026-03-01T10:00:00Z"
}`

func newTestCLI(t *testing.T, apiURL, token, input string) (*cli, *bytes.Buffer) {
	t.Helper()
	v := viper.New()
	v.Set(keyAPIURL, apiURL)
	tokenFile := filepath.Join(t.TempDir(), "token")
	v.Set(keyTokenFile, tokenFile)
	if token != "" {
		if err := os.WriteFile(tokenFile, []byte(token+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	out := &bytes.Buffer{}
	return &cli{v: v, out: out, in: strings.NewReader(input)}, out
}

func run(a *cli, args ...string) error {
	root := a.rootCmd()
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.SetArgs(args)
	return root.Execute()
}

func TestParseComponent(t *testing.T) {
	testCases := []struct {
		raw    string
		kind    string
		id      uint
		unit    string
		wantErr bool
	}{
		{"ingredient:7:40:g", "ingredient", 7, "g", false},
		{"i:12:1", "ingredient", 12, "", false},
		{"semi:3:150,5:g", "semi_finished", 3, "g", false},
		{"box:1:1", "", 0, "", true},
		{"i:0:1", "", 0, "", true},
		{"i:1", "", 0, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			d, err := parseComponent(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", d)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Kind != tc.kind || d.RefID != tc.id || d.Unit != tc.unit {
				t.Errorf("unexpected component %+v", d)
			}
		})
	}
}

func TestCalcCommands(t *testing.T) {
	testCases := []struct {
		args []string
		want string
	}{
		{[]string{"calc", "waste", "--brutto", "10", "--waste", "15"}, "Нетто: 8.500"},
		{[]string{"calc", "waste", "--brutto", "10", "--netto", "8,5"}, "Отход, %: 15.00"},
		{[]string{"calc", "cost", "500", "120", "g"}, "60.00"},
		{[]string{"calc", "price", "60", "500", "g"}, "120.00"},
		{[]string{"calc", "volume", "1500", "ml"}, "1.500 л"},
		{[]string{"calc", "expiry", "0"}, "—"},
	}

	for _, tc := range testCases {
		t.Run(strings.Join(tc.args[1:], " "), func(t *testing.T) {
			a, out := newTestCLI(t, "", "", "")
			if err := run(a, tc.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("expected %q in output, got %q", tc.want, out.String())
			}
		})
	}
}

func TestCalcRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"no netto or waste", []string{"calc", "waste", "--brutto", "10"}},
		{"NaN netto", []string{"calc", "waste", "--brutto", "100", "--netto", "nan"}},
		{"infinite brutto", []string{"calc", "waste", "--brutto", "inf", "--waste", "10"}},
		{"infinite quantity", []string{"calc", "cost", "Inf", "10", "kg"}},
		{"NaN price", []string{"calc", "cost", "10", "NaN", "kg"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestCLI(t, "", "", "")
			if err := run(a, tc.args...); err == nil {
				t.Errorf("expected error for %v", tc.args)
			}
		})
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"token":"jwt","expires":"2026-04-01T10:00:00Z","user":{"id":1,"email":"admin@fodi.market","name":"Admin","role":"admin"}}`))
	}))
	defer srv.Close()

	a, out := newTestCLI(t, srv.URL, "", "")
	if err := run(a, "login", "--email", "admin@fodi.market", "--password", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.readToken(); got != "jwt" {
		t.Errorf("expected stored token jwt, got %q", got)
	}
	if !strings.Contains(out.String(), "admin@fodi.market") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestIngredientTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/ingredients":
			_, _ = w.Write([]byte("[" + ingredientJSON + "]"))
		case "/api/admin/ingredients/4/movements":
			_, _ = w.Write([]byte(`{"ingredient_id": 4, "unit": "kg", "stock": 8.5, "movements": [
				{"id": 1, "ingredient_id": 4, "quantity": 8.5, "type": "addition", "note": "Приход партии", "created_at": "2026-03-01T10:00:00Z"}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{"list", []string{"ingredients", "list"}, []string{"НАЗВАНИЕ", "ГОДЕН ДО", "Лосось", "B-1A2B3C4D", "15.00", "04.03.2026"}},
		{"movements", []string{"ingredients", "movements", "4"}, []string{"КОММЕНТАРИЙ", "addition", "+8.500", "Приход партии", "Остаток:"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, out := newTestCLI(t, srv.URL, "jwt", "")
			if err := run(a, tc.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			if len(lines) < 2 {
				t.Fatalf("expected header and rows, got %q", out.String())
			}
			for _, w := range tc.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestWhoami(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/session" || r.Header.Get("Authorization") != "Bearer jwt" {
			http.Error(w, `{"error":"Требуется вход"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":1,"email":"admin@fodi.market","name":"Admin","role":"admin"}}`))
	}))
	defer srv.Close()

	testCases := []struct {
		name   string
		apiURL string
	}{
		{"plain URL", srv.URL},
		{"trailing slash", srv.URL + "/"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, out := newTestCLI(t, tc.apiURL, "jwt", "")
			if err := run(a, "whoami"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := "Admin <admin@fodi.market>, роль admin, сервер " + srv.URL + "\n"
			if out.String() != want {
				t.Errorf("got %q, want %q", out.String(), want)
			}
		})
	}
}

func TestSignInRequired(t *testing.T) {
	a, _ := newTestCLI(t, "http://127.0.0.1:1", "", "")
	err := run(a, "ingredients", "list")
	if err == nil || !strings.Contains(err.Error(), "fodictl login") {
		t.Errorf("expected sign-in hint, got %v", err)
	}
}

func TestIngredientsDelete(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		args        []string
		wantDeleted bool
	}{
		{"confirmed", "да\n", nil, true},
		{"declined", "n\n", nil, false},
		{"skip prompt", "", []string{"--yes"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var deleted atomic.Bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.Method == http.MethodGet && r.URL.Path == "/api/admin/ingredients":
					_, _ = w.Write([]byte("[" + ingredientJSON + "]"))
				case r.Method == http.MethodDelete && r.URL.Path == "/api/admin/ingredients/4":
					deleted.Store(true)
					w.WriteHeader(http.StatusNoContent)
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()

			a, _ := newTestCLI(t, srv.URL, "token-123", tc.input)
			args := append([]string{"ingredients", "delete", "4"}, tc.args...)
			if err := run(a, args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if deleted.Load() != tc.wantDeleted {
				t.Errorf("expected deleted=%v, got %v", tc.wantDeleted, deleted.Load())
			}
		})
	}
}

func TestIngredientsDeleteUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[" + ingredientJSON + "]"))
	}))
	defer srv.Close()

	a, _ := newTestCLI(t, srv.URL, "token-123", "")
	if err := run(a, "ingredients", "delete", "99", "--yes"); err == nil {
		t.Error("expected error for unknown id")
	}
}
