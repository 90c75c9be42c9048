package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/api"
	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/router"
	"github.com/pageza/smartplate/internal/service"
	"github.com/pageza/smartplate/internal/session"
	"github.com/pageza/smartplate/internal/testdb"
	"github.com/pageza/smartplate/internal/web"
)

type app struct {
	server *httptest.Server
	db     *gorm.DB
	store  session.Store
	foods  []pipeline.LabeledFood
}

func setupApp(t *testing.T) *app {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	foods, err := pipeline.LoadDataset(context.Background(), pipeline.FileSource{Path: filepath.Join("..", "pipeline", "testdata", "foods.csv")})
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	p, err := pipeline.New(foods, pipeline.Options{Clusters: 3, Seed: 42, Restarts: 3, PerCluster: 2, Limit: 6}, log)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	db := testdb.SQLite(t)
	store := session.NewMemoryStore(time.Hour)

	// The pages call the API on the same server, so the handler is set once
	// the URL is known.
	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	engine, err := router.SetupRouter(log, router.Config{
		TrustedProxies: []string{"127.0.0.1"},
		API: api.Deps{
			Recommend: service.NewRecommendService(p),
			Users:     service.NewUserService(db),
			Feedback:  service.NewFeedbackService(db),
		},
		Pages:    web.NewHandler(client.New(ts.URL, 5*time.Second), store, web.Options{ChartEnabled: true}),
		Sessions: middleware.NewSessionManager("integration-secret", time.Hour, false),
	})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}
	ts.Config.Handler = engine

	return &app{server: ts, db: db, store: store, foods: p.Foods()}
}

func browser(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func document(t *testing.T, resp *http.Response) *goquery.Document {
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return doc
}

func TestIntegrationFormToResults(t *testing.T) {
	a := setupApp(t)
	b := browser(t)

	form := url.Values{
		"name":           {"Ada"},
		"age":            {"34"},
		"gender":         {"female"},
		"height_cm":      {"168"},
		"weight_kg":      {"62.5"},
		"activity_level": {"moderate"},
		"goal":           {"maintenance"},
		"allergies":      {"peanut"},
	}
	resp, err := b.PostForm(a.server.URL+"/form", form)
	if err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("results page status %d", resp.StatusCode)
	}
	if resp.Request.URL.Path != "/results" || resp.Request.URL.Query().Get("rid") == "" {
		t.Fatalf("not redirected to results: %s", resp.Request.URL)
	}
	doc := document(t, resp)

	if notice := doc.Find(".alert-warning").Text(); notice != "" {
		t.Fatalf("unexpected notice %q", notice)
	}
	items := doc.Find("#recommendations li")
	if items.Length() == 0 || items.Length() > 6 {
		t.Fatalf("expected 1-6 recommendations, got %d", items.Length())
	}
	items.Each(func(_ int, s *goquery.Selection) {
		if strings.Contains(strings.ToLower(s.Find(".fw-bold").Text()), "peanut") {
			t.Errorf("allergen recommended: %s", s.Find(".fw-bold").Text())
		}
		if !strings.HasSuffix(s.Find(".badge").Text(), " kcal") {
			t.Errorf("bad badge %q", s.Find(".badge").Text())
		}
	})
	if !strings.Contains(doc.Find("#targets").Text(), "Calories: ") || strings.Contains(doc.Find("#targets").Text(), ": - ") {
		t.Fatalf("summary incomplete: %q", doc.Find("#targets").Text())
	}

	src, ok := doc.Find("#nutrientChart").Attr("src")
	if !ok {
		t.Fatalf("chart mount missing")
	}
	chartResp, err := b.Get(a.server.URL + src)
	if err != nil {
		t.Fatalf("get chart: %v", err)
	}
	chartResp.Body.Close()
	if chartResp.StatusCode != http.StatusOK || chartResp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("chart: %d %s", chartResp.StatusCode, chartResp.Header.Get("Content-Type"))
	}

	// A second browser has its own session and sees nothing.
	other, err := browser(t).Get(a.server.URL + "/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if n := document(t, other).Find("#recommendations li").Length(); n != 0 {
		t.Fatalf("results leaked across sessions: %d items", n)
	}
}

func TestIntegrationFormValidationError(t *testing.T) {
	a := setupApp(t)

	resp, err := browser(t).PostForm(a.server.URL+"/form", url.Values{"name": {"Ada"}, "age": {"200"}})
	if err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if msg := document(t, resp).Find("#formError").Text(); msg != "Missing field: gender" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestIntegrationFeedback(t *testing.T) {
	a := setupApp(t)
	b := browser(t)

	body := `{"name":"Ada","age":34,"gender":"female","height_cm":168,"weight_kg":62.5,"activity_level":"moderate","goal":"maintenance"}`
	resp, err := b.Post(a.server.URL+"/api/register_user", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var reg struct {
		UserID int `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || reg.UserID == 0 {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	form := url.Values{
		"user_id": {strconv.Itoa(reg.UserID)},
		"food_id": {strconv.Itoa(a.foods[0].ID)},
		"rating":  {"5"},
		"comment": {"tasty"},
	}
	resp, err = b.PostForm(a.server.URL+"/feedback", form)
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if msg := document(t, resp).Find("#feedbackMsg").Text(); msg != "feedback_recorded" {
		t.Fatalf("unexpected feedback message %q", msg)
	}

	var stored models.Feedback
	if err := a.db.First(&stored).Error; err != nil {
		t.Fatalf("feedback not in db: %v", err)
	}
	if stored.UserID != reg.UserID || stored.Rating != 5 || stored.Comment != "tasty" {
		t.Fatalf("unexpected feedback row %+v", stored)
	}

	resp, err = b.PostForm(a.server.URL+"/feedback", url.Values{"rating": {"5"}})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if msg := document(t, resp).Find("#feedbackMsg").Text(); msg != "user_id, food_id, rating are required integers" {
		t.Fatalf("unexpected feedback error %q", msg)
	}
}
