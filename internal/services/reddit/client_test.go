package reddit_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"reelpipe/internal/config"
	"reelpipe/internal/services"
	"reelpipe/internal/services/reddit"
	"reelpipe/internal/stage"
)

const listingBody = `{"kind": "Listing", "data": {"children": [
  {"kind": "t3", "data": {"id": "s1", "title": "Pinned rules", "selftext": "Read the rules", "stickied": true, "score": 1}},
  {"kind": "t3", "data": {"id": "a1", "title": "You **can** do it", "selftext": "Start small.\n\nKeep going &amp; rest.", "author": "writer", "score": 420, "permalink": "/r/GetMotivated/comments/a1/x/", "created_utc": 1700000000}},
  {"kind": "t3", "data": {"id": "l1", "title": "Just a link", "selftext": "", "score": 99}},
  {"kind": "t3", "data": {"id": "d1", "title": "Gone", "selftext": "[removed]", "score": 5}}
]}}`

type fakeReddit struct {
	*httptest.Server
	tokenCalls   atomic.Int32
	listingCalls atomic.Int32
	failSubs     map[string]bool
	wantBearer   bool
	t            *testing.T
}

func newFakeReddit(t *testing.T, wantBearer bool, failSubs ...string) *fakeReddit {
	t.Helper()
	f := &fakeReddit{failSubs: map[string]bool{}, wantBearer: wantBearer, t: t}
	for _, s := range failSubs {
		f.failSubs[s] = true
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "tok", "token_type": "bearer", "expires_in": 3600}`)
	})
	mux.HandleFunc("/r/{sub}/top.json", func(w http.ResponseWriter, r *http.Request) {
		f.listingCalls.Add(1)
		if got := r.Header.Get("User-Agent"); got != "reelpipe-test/1.0" {
			t.Errorf("unexpected user agent %q", got)
		}
		auth := r.Header.Get("Authorization")
		if f.wantBearer && auth != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", auth)
		}
		if !f.wantBearer && auth != "" {
			t.Errorf("anonymous request carried authorization %q", auth)
		}
		if r.URL.Query().Get("t") != "week" || r.URL.Query().Get("limit") != "25" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if f.failSubs[r.PathValue("sub")] {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, listingBody)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func clientConfig(srv *fakeReddit, withCreds bool) config.Reddit {
	cfg := config.Default().Reddit
	cfg.BaseURL = srv.URL
	cfg.OAuthBaseURL = srv.URL
	cfg.TokenURL = srv.URL + "/api/v1/access_token"
	cfg.UserAgent = "reelpipe-test/1.0"
	cfg.RequestIntervalMS = 0
	if withCreds {
		cfg.ClientID = "id"
		cfg.ClientSecret = "secret"
	}
	return cfg
}

func TestFetchWithClientCredentials(t *testing.T) {
	srv := newFakeReddit(t, true)
	client, err := reddit.New(clientConfig(srv, true))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	items, err := client.Fetch(context.Background(), stage.FetchRequest{
		Subreddits:  []string{"GetMotivated", "quotes"},
		PostsPerSub: 25,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected one usable post per subreddit, got %d", len(items))
	}
	if srv.tokenCalls.Load() != 1 {
		t.Fatalf("expected token to be fetched once, got %d", srv.tokenCalls.Load())
	}
	first := items[0]
	if first.ID != "a1" || first.Subreddit != "GetMotivated" || first.Score != 420 {
		t.Fatalf("unexpected item %+v", first)
	}
	if first.Title != "You can do it" || first.Content != "Start small. Keep going & rest." {
		t.Fatalf("text not cleaned: %q / %q", first.Title, first.Content)
	}
	if first.URL != "https://reddit.com/r/GetMotivated/comments/a1/x/" {
		t.Fatalf("unexpected url %q", first.URL)
	}
	if first.ReadingTimeSeconds <= 0 {
		t.Fatal("expected reading time to be estimated")
	}
	if items[1].Subreddit != "quotes" {
		t.Fatalf("expected second item from quotes, got %s", items[1].Subreddit)
	}
}

func TestFetchAnonymousSkipsFailingSubreddit(t *testing.T) {
	srv := newFakeReddit(t, false, "broken")
	client, err := reddit.New(clientConfig(srv, false))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.Authenticated() {
		t.Fatal("client without credentials should be anonymous")
	}
	items, err := client.Fetch(context.Background(), stage.FetchRequest{
		Subreddits:  []string{"broken", "GetMotivated"},
		PostsPerSub: 25,
	})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 1 || srv.tokenCalls.Load() != 0 {
		t.Fatalf("unexpected result: %d items, %d token calls", len(items), srv.tokenCalls.Load())
	}
}

func TestFetchFailsWhenEverySubredditFails(t *testing.T) {
	srv := newFakeReddit(t, false, "a", "b")
	client, _ := reddit.New(clientConfig(srv, false))
	_, err := client.Fetch(context.Background(), stage.FetchRequest{Subreddits: []string{"a", "b"}, PostsPerSub: 25})
	if !errors.Is(err, services.ErrAcquire) {
		t.Fatalf("expected acquire error, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	srv := newFakeReddit(t, false)
	client, _ := reddit.New(clientConfig(srv, false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Fetch(ctx, stage.FetchRequest{Subreddits: []string{"GetMotivated"}, PostsPerSub: 25})
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
	if srv.listingCalls.Load() != 0 {
		t.Fatal("cancelled fetch should not reach the server")
	}
}

func TestNewRequiresUserAgent(t *testing.T) {
	cfg := config.Default().Reddit
	cfg.UserAgent = " "
	if _, err := reddit.New(cfg); err == nil {
		t.Fatal("expected error for empty user agent")
	}
}
