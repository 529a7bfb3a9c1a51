package confluence

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		Domain:     "example.atlassian.net",
		Email:      "dev@example.com",
		APIToken:   "token",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	client.backoffBase = time.Millisecond
	return client, server
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing domain", Config{Email: "a@b.com", APIToken: "t"}},
		{"missing email", Config{Domain: "x.atlassian.net", APIToken: "t"}},
		{"missing token", Config{Domain: "x.atlassian.net", Email: "a@b.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Fatal("New() expected error, got nil")
			}
		})
	}
}

func TestBasicAuthHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":"1"}`)
	}))

	if _, err := client.GetPage(context.Background(), "1"); err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:token"))
	if gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id":"42","title":"Doc"}`)
	}))

	page, err := client.GetPage(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if page.ID != "42" {
		t.Errorf("page.ID = %q, want %q", page.ID, "42")
	}
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":"1"}`)
	}))

	if _, err := client.GetPage(context.Background(), "1"); err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetriesExhausted(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.GetPage(context.Background(), "1")
	if err == nil {
		t.Fatal("GetPage() expected error, got nil")
	}
	// MaxRetries of 2 allows three attempts in total.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":[{"title":"not found"}]}`)
	}))

	_, err := client.GetPage(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetPage() expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(err) = false, err = %v", err)
	}
}

func TestAuthErrorCategory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.GetPage(context.Background(), "1")
	if !IsAuthError(err) {
		t.Errorf("IsAuthError(err) = false, err = %v", err)
	}
}

func TestPaginationFollowsNextLink(t *testing.T) {
	client, server := newTestClient(t, nil)
	calls := 0
	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprintf(w, `{"results":[{"id":"1","title":"a"},{"id":"2","title":"b"}],"_links":{"next":"/pages?cursor=abc"}}`)
		case "abc":
			fmt.Fprint(w, `{"results":[{"id":"3","title":"c"}],"_links":{}}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	})

	pages, err := client.ListPages(context.Background(), "100", 0)
	if err != nil {
		t.Fatalf("ListPages() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	if pages[2].ID != "3" {
		t.Errorf("pages[2].ID = %q, want %q", pages[2].ID, "3")
	}
}

func TestPaginationHonorsLimit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"id":"1"},{"id":"2"},{"id":"3"}],"_links":{"next":"/pages?cursor=more"}}`)
	}))

	pages, err := client.ListPages(context.Background(), "100", 2)
	if err != nil {
		t.Fatalf("ListPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("len(pages) = %d, want 2", len(pages))
	}
}

func TestCreatePagePayload(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"id":"7","title":"New Page"}`)
	}))

	_, err := client.CreatePage(context.Background(), CreatePageRequest{
		SpaceID: "100",
		Title:   "New Page",
		Body:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}

	if got["spaceId"] != "100" {
		t.Errorf("spaceId = %v, want 100", got["spaceId"])
	}
	body, ok := got["body"].(map[string]any)
	if !ok {
		t.Fatalf("body missing from payload: %v", got)
	}
	if body["representation"] != "storage" {
		t.Errorf("representation = %v, want storage", body["representation"])
	}
	if body["value"] != "<p>hello</p>" {
		t.Errorf("value = %v, want <p>hello</p>", body["value"])
	}
}

func TestCreatePageRejectsMissingFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid input")
	}))

	if _, err := client.CreatePage(context.Background(), CreatePageRequest{Title: "no space"}); err == nil {
		t.Fatal("CreatePage() expected error, got nil")
	}
}

func TestModernEditorSequence(t *testing.T) {
	var sequence []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sequence = append(sequence, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pages":
			fmt.Fprint(w, `{"id":"9","title":"Doc","version":{"number":1}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/pages/9/properties":
			fmt.Fprint(w, `{"id":"p1","key":"editor"}`)
		case r.Method == http.MethodPut && r.URL.Path == "/pages/9":
			fmt.Fprint(w, `{"id":"9","title":"Doc","version":{"number":2}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	page, err := client.CreatePageModernEditor(context.Background(), CreatePageRequest{
		SpaceID: "100",
		Title:   "Doc",
		Body:    "<p>content</p>",
	})
	if err != nil {
		t.Fatalf("CreatePageModernEditor() error = %v", err)
	}
	if page.Version == nil || page.Version.Number != 2 {
		t.Errorf("final version = %v, want 2", page.Version)
	}

	want := []string{"POST /pages", "POST /pages/9/properties", "PUT /pages/9"}
	if len(sequence) != len(want) {
		t.Fatalf("sequence = %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Errorf("sequence[%d] = %q, want %q", i, sequence[i], want[i])
		}
	}
}

func TestSetContentPropertyConflictFallsBackToUpdate(t *testing.T) {
	var updated map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pages/5/properties":
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodGet && r.URL.Path == "/pages/5/properties":
			fmt.Fprint(w, `{"results":[{"id":"p2","key":"editor","value":"v1","version":{"number":3}}],"_links":{}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/pages/5/properties/p2":
			if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
				t.Errorf("decode body: %v", err)
			}
			fmt.Fprint(w, `{"id":"p2","key":"editor"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := client.SetContentProperty(context.Background(), "5", "editor", "v2"); err != nil {
		t.Fatalf("SetContentProperty() error = %v", err)
	}

	version, ok := updated["version"].(map[string]any)
	if !ok {
		t.Fatalf("version missing from update payload: %v", updated)
	}
	if version["number"] != float64(4) {
		t.Errorf("version.number = %v, want 4", version["number"])
	}
}

func TestFindPageByTitleNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[],"_links":{}}`)
	}))

	_, err := client.FindPageByTitle(context.Background(), "100", "Missing")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(err) = false, err = %v", err)
	}
}

func TestCreateSpaceUppercasesKey(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"id":"200","key":"PROJ"}`)
	}))

	if _, err := client.CreateSpace(context.Background(), "proj", "Project", ""); err != nil {
		t.Fatalf("CreateSpace() error = %v", err)
	}
	if got["key"] != "PROJ" {
		t.Errorf("key = %v, want PROJ", got["key"])
	}
}

func TestAddLabelsUsesV1Endpoint(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{}`)
	}))

	if err := client.AddLabels(context.Background(), "12", []string{"docs", "api"}); err != nil {
		t.Fatalf("AddLabels() error = %v", err)
	}
	if !strings.HasPrefix(gotPath, "/rest/api/content/12/label") {
		t.Errorf("path = %q, want /rest/api/content/12/label", gotPath)
	}
}
