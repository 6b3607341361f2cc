//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/http_server"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	redisad "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/redis"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	mysqlrepo "github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/mysql"
)

// ---------- helpers ----------

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=reviews"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviews?parseTime=true&loc=UTC", resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func call(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_Reviews(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	repo := mysqlrepo.New(db)
	cmds := app.NewReviewService(repo, cache, nil)
	if err := cmds.Seed(context.Background(), 20); err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := server.New(10 * time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(repo, cache, time.Minute), C: cmds})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// seeded review 5 comes back with its seeded rating
	var rv domain.Review
	if code := call(t, http.MethodGet, ts.URL+"/reviews/5", "", &rv); code != http.StatusOK {
		t.Fatalf("get status %d", code)
	}
	if rv.Rating != 3 || rv.Title != "Review 4" {
		t.Fatalf("unexpected review: %+v", rv)
	}
	if !mr.Exists("review:5") {
		t.Fatalf("expected review:5 to be cached")
	}

	// update invalidates the cached copy
	if code := call(t, http.MethodPut, ts.URL+"/reviews/5", `{"rating":1}`, &rv); code != http.StatusOK {
		t.Fatalf("update status %d", code)
	}
	if mr.Exists("review:5") {
		t.Fatalf("expected review:5 to be evicted")
	}
	call(t, http.MethodGet, ts.URL+"/reviews/5", "", &rv)
	if rv.Rating != 1 {
		t.Fatalf("stale read after update: %+v", rv)
	}

	// create shows up in the filtered list and the author set
	var created domain.Review
	if code := call(t, http.MethodPost, ts.URL+"/reviews", `{"title":"E2E","content":"c","rating":5,"author":"Zed"}`, &created); code != http.StatusCreated {
		t.Fatalf("create status %d", code)
	}
	var page domain.ReviewsPage
	call(t, http.MethodGet, ts.URL+"/reviews?author=Zed", "", &page)
	if page.Total != 1 || len(page.Reviews) != 1 || page.Reviews[0].ID != created.ID {
		t.Fatalf("unexpected page: %+v", page)
	}
	var authors struct {
		Authors []string `json:"authors"`
	}
	call(t, http.MethodGet, ts.URL+"/authors", "", &authors)
	if len(authors.Authors) != 21 {
		t.Fatalf("expected 21 authors, got %d", len(authors.Authors))
	}

	// delete, then gone; a second delete keeps the 500 contract
	if code := call(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", ts.URL, created.ID), "", nil); code != http.StatusNoContent {
		t.Fatalf("delete status %d", code)
	}
	if code := call(t, http.MethodGet, fmt.Sprintf("%s/reviews/%d", ts.URL, created.ID), "", nil); code != http.StatusNotFound {
		t.Fatalf("get after delete status %d", code)
	}
	if code := call(t, http.MethodDelete, fmt.Sprintf("%s/reviews/%d", ts.URL, created.ID), "", nil); code != http.StatusInternalServerError {
		t.Fatalf("second delete status %d", code)
	}

	if code := call(t, http.MethodGet, ts.URL+"/metrics", "", nil); code != http.StatusOK {
		t.Fatalf("metrics status %d", code)
	}
}
