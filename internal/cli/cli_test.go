package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/retriever/internal/backend"
)

type fixture struct {
	dir     string
	config  string
	logFile string

	mu    sync.Mutex
	calls []string
}

func (f *fixture) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RETRIEVER_API_BASE", "")
	t.Setenv("RETRIEVER_TOKEN", "")
	t.Setenv("RETRIEVER_LOG_LEVEL", "")

	f := &fixture{dir: t.TempDir()}
	base := "http://127.0.0.1:1"
	if handler != nil {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.calls = append(f.calls, r.Method+" "+r.URL.Path)
			f.mu.Unlock()
			handler(w, r)
		}))
		t.Cleanup(server.Close)
		base = server.URL
	}
	f.logFile = filepath.Join(f.dir, "retriever.log")
	f.config = filepath.Join(f.dir, "config.toml")
	body := "api_base = \"" + base + "\"\ntoken = \"tok\"\nlog_file = \"" + filepath.ToSlash(f.logFile) + "\"\nlog_level = \"debug\"\n"
	require.NoError(t, os.WriteFile(f.config, []byte(body), 0o600))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	full := append([]string{"--config", f.config, "--prefs", filepath.Join(f.dir, "prefs.toml"), "--env-file", filepath.Join(f.dir, "none.env")}, args...)
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestListItemsPrintsPageAndFooter(t *testing.T) {
	items := make([]backend.Item, 0, 7)
	for i := 1; i <= 7; i++ {
		status := backend.StatusLost
		if i%2 == 0 {
			status = backend.StatusFound
		}
		items = append(items, backend.Item{ItemID: int64(i), Name: "Umbrella " + string(rune('A'+i-1)), Status: status})
	}
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, items)
	})

	out, err := f.run(t, "list", "items", "--page", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Umbrella F")
	assert.Contains(t, out, "Page 2 of 2 (showing 6-7 of 7)")

	out, err = f.run(t, "list", "items", "--facet", "found")
	require.NoError(t, err)
	assert.Contains(t, out, "Umbrella B")
	assert.NotContains(t, out, "Umbrella A")
	assert.Contains(t, out, "Page 1 of 1 (showing 1-3 of 3)")

	out, err = f.run(t, "list", "items", "-q", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No items found.")
	assert.Contains(t, out, "Page 1 of 1 (showing 0-0 of 0)")
}

func TestListRunsActionThenRefreshes(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			writeJSON(w, backend.User{UserID: 1, RoleID: backend.RoleAdmin})
		case "/notifications/unread_count":
			writeJSON(w, map[string]int{"count": 0})
		case "/matches/matches":
			writeJSON(w, []backend.Match{{MatchID: 12, Status: backend.MatchPending, SimilarityScore: 0.9}})
		default:
			writeJSON(w, map[string]string{"message": "ok"})
		}
	})

	out, err := f.run(t, "list", "matches", "--do", "a", "--row", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `Ran "a" on row 1.`)
	calls := f.seen()
	assert.Contains(t, calls, "POST /admin/admin/approve-match/12")

	matchLoads := 0
	for _, c := range calls {
		if c == "GET /matches/matches" {
			matchLoads++
		}
	}
	assert.Equal(t, 2, matchLoads, "load plus refresh after the action")
}

func TestListDetail(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []backend.StaffMember{{UserID: 4, FirstName: "Grace", LastName: "Hopper", Email: "g@x.io", IsActive: true}})
	})
	out, err := f.run(t, "list", "staff", "--detail", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "ACTIVE")

	_, err = f.run(t, "list", "staff", "--detail", "3")
	require.Error(t, err)
}

func TestListRejectsUnknownKindAndAPIError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not enough permissions"}`))
	})

	_, err := f.run(t, "list", "reports")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown list")

	_, err = f.run(t, "list", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not enough permissions")
}

func TestSearchPrintsResults(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/search-by-image" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"message": "ok", "matches": []map[string]any{
			{"name": "Blue Umbrella", "location": "Lobby", "match_confidence": "87%", "raw_score": 0.87, "image_path": "frontend/uploads/u.png"},
		}})
	})
	img := filepath.Join(f.dir, "photo.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))

	out, err := f.run(t, "search", img, "--detail", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Blue Umbrella")
	assert.Contains(t, out, "87% Match")
	assert.Contains(t, out, "/uploads/u.png")
	assert.NotContains(t, out, "frontend/")
	assert.Contains(t, out, "high")
}

func TestSearchEmptyAndNonImage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"message": "none", "matches": []any{}})
	})
	img := filepath.Join(f.dir, "photo.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))
	out, err := f.run(t, "search", img)
	require.NoError(t, err)
	assert.Contains(t, out, "No similar items found.")

	txt := filepath.Join(f.dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just text"), 0o600))
	before := len(f.seen())
	_, err = f.run(t, "search", txt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
	assert.Len(t, f.seen(), before)
}

func TestLogsPrintsTail(t *testing.T) {
	f := newFixture(t, nil)
	lines := []string{
		"2026-01-02 10:00:00 DEBU loaded list=items",
		"2026-01-02 10:00:01 WARN load failed list=staff",
		"2026-01-02 10:00:02 INFO poll ok",
	}
	require.NoError(t, os.WriteFile(f.logFile, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	out, err := f.run(t, "logs", "-n", "2", "--plain")
	require.NoError(t, err)
	assert.NotContains(t, out, "DEBU")
	assert.Contains(t, out, lines[1])
	assert.Contains(t, out, lines[2])

	out, err = f.run(t, "logs", "--level", "warn", "--plain")
	require.NoError(t, err)
	assert.Equal(t, lines[1]+"\n", out)
}

func TestListRowTargetsRecordOnFilteredPage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items/my-items":
			writeJSON(w, []backend.Item{
				{ItemID: 7, Name: "Wallet", Status: backend.StatusLost},
				{ItemID: 8, Name: "Umbrella", Status: backend.StatusLost},
			})
		default:
			writeJSON(w, map[string]string{"message": "ok"})
		}
	})

	_, err := f.run(t, "list", "items", "-q", "umbrella", "--do", "d", "--row", "1")
	require.NoError(t, err)
	calls := f.seen()
	assert.Contains(t, calls, "DELETE /items/8")
	assert.NotContains(t, calls, "DELETE /items/7")
}

func TestListLogsFailedUserLookup(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			w.WriteHeader(http.StatusInternalServerError)
		case "/notifications/latest":
			writeJSON(w, []backend.Notification{{NotificationID: 3, Title: "Match found"}})
		default:
			writeJSON(w, map[string]int{"count": 1})
		}
	})

	_, err := f.run(t, "list", "notifications", "--do", "r")
	require.NoError(t, err)
	data, err := os.ReadFile(f.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "could not load current user")
}

func TestItemsNewEditAndShow(t *testing.T) {
	var (
		mu     sync.Mutex
		report map[string]string
		update map[string]string
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /items/my-items":
			writeJSON(w, []backend.Item{{ItemID: 7, ItemType: "Wallet", Brand: "Fossil", Color: "Brown", Description: "Leather", LostLocation: "Gym", Status: backend.StatusLost}})
		case "POST /items/report-item":
			_ = r.ParseMultipartForm(1 << 20)
			mu.Lock()
			report = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				report[k] = v[0]
			}
			mu.Unlock()
			writeJSON(w, map[string]any{"message": "Item reported successfully", "item_id": 8})
		case "PUT /items/item/7":
			mu.Lock()
			_ = json.NewDecoder(r.Body).Decode(&update)
			mu.Unlock()
			writeJSON(w, backend.Item{ItemID: 7})
		case "GET /items/item/7":
			writeJSON(w, backend.Item{ItemID: 7, ItemType: "Wallet", Color: "Black", Status: backend.StatusLost})
		default:
			writeJSON(w, map[string]int{"count": 0})
		}
	})

	out, err := f.run(t, "items", "new", "--type", "Umbrella", "--description", "Blue, folding", "--location", "Lobby")
	require.NoError(t, err)
	assert.Contains(t, out, "Item reported.")

	out, err = f.run(t, "items", "edit", "7", "--color", "Black")
	require.NoError(t, err)
	assert.Contains(t, out, "Item 7 updated.")

	out, err = f.run(t, "items", "show", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Black")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Umbrella", report["item_type"])
	assert.Equal(t, "Lobby", report["lost_at_location"])
	assert.Equal(t, map[string]string{
		"item_type": "Wallet", "brand": "Fossil", "color": "Black", "description": "Leather", "lost_location": "Gym",
	}, update)
}

func TestItemsNewRequiresDescription(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []backend.Item{})
	})

	_, err := f.run(t, "items", "new", "--type", "Keys", "--location", "Gym")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Description")
	assert.NotContains(t, f.seen(), "POST /items/report-item")
}

func TestStaffNewCreatesAccount(t *testing.T) {
	var (
		mu   sync.Mutex
		sent backend.NewStaff
	)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			writeJSON(w, backend.User{UserID: 1, RoleID: backend.RoleAdmin})
		case "/staff/create":
			mu.Lock()
			_ = json.NewDecoder(r.Body).Decode(&sent)
			mu.Unlock()
			writeJSON(w, backend.StaffMember{UserID: 9, IsActive: true})
		case "/staff/my-staff":
			writeJSON(w, []backend.StaffMember{})
		default:
			writeJSON(w, map[string]int{"count": 0})
		}
	})

	out, err := f.run(t, "staff", "new", "--first", "Ada", "--email", "ada@example.com", "--password", "long-enough")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com created")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Ada", sent.FirstName)
	assert.Equal(t, "long-enough", sent.Password)
}
