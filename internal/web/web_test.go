package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/mocks"
	"github.com/pageza/smartplate/internal/session"
)

type fixture struct {
	t        *testing.T
	router   *gin.Engine
	api      *mocks.MockAPIClient
	store    session.Store
	sessions *middleware.SessionManager
	cookies  []*http.Cookie
}

func newFixture(t *testing.T, store session.Store, opts Options) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if store == nil {
		store = session.NewMemoryStore(time.Hour)
	}
	f := &fixture{
		t:        t,
		router:   gin.New(),
		api:      new(mocks.MockAPIClient),
		store:    store,
		sessions: middleware.NewSessionManager("test-secret", time.Hour, false),
	}
	f.router.SetHTMLTemplate(MustTemplates())
	pages := f.router.Group("/")
	pages.Use(f.sessions.Middleware())
	NewHandler(f.api, store, opts).RegisterRoutes(pages)

	t.Cleanup(func() { f.api.AssertExpectations(t) })
	return f
}

// do sends req with the fixture's cookies and keeps any cookie it sets, the
// way a browser tab would.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		f.cookies = set
	}
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *fixture) sessionID() string {
	f.t.Helper()
	require.NotEmpty(f.t, f.cookies)
	sid, err := f.sessions.Parse(f.cookies[0].Value)
	require.NoError(f.t, err)
	return sid
}

func (f *fixture) seed(targets, recs string) string {
	f.t.Helper()
	f.get("/")
	rid := "rid-seeded"
	require.NoError(f.t, f.store.SetResults(context.Background(), f.sessionID(), &session.ResultsPayload{
		ResultID:        rid,
		Targets:         json.RawMessage(targets),
		Recommendations: json.RawMessage(recs),
		CreatedAt:       time.Now(),
	}))
	return rid
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func profileForm() url.Values {
	return url.Values{
		"name":           {"Ada"},
		"age":            {"30"},
		"gender":         {"female"},
		"height_cm":      {"165"},
		"weight_kg":      {"60"},
		"activity_level": {"light"},
		"goal":           {"maintenance"},
		"allergies":      {""},
	}
}

func TestPagesProvideDOMContract(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})

	pages := map[string][]string{
		"/":         {},
		"/form":     {"#profileForm", "#formError"},
		"/feedback": {"#feedbackForm", "#feedbackMsg"},
		"/results":  {"#nutrientChart", "#targets", "#recommendations"},
	}
	for path, ids := range pages {
		w := f.get(path)
		require.Equal(t, http.StatusOK, w.Code, path)
		doc := parse(t, w)
		for _, id := range ids {
			assert.Equal(t, 1, doc.Find(id).Length(), "%s on %s", id, path)
		}
	}
}

func TestSubmitProfileSendsExactFields(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	form := profileForm()
	form.Add("name", "Grace") // repeated names keep the last value

	want := map[string]string{
		"name": "Grace", "age": "30", "gender": "female", "height_cm": "165",
		"weight_kg": "60", "activity_level": "light", "goal": "maintenance", "allergies": "",
	}
	f.api.On("Recommend", mock.Anything, want).
		Return(&client.RecommendResult{Targets: json.RawMessage(`{}`), Recommendations: json.RawMessage(`[]`)}, nil)

	w := f.postForm("/form", form)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestSubmitProfileMultipart(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Ada"))
	require.NoError(t, mw.WriteField("goal", "maintenance"))
	require.NoError(t, mw.Close())

	f.api.On("Recommend", mock.Anything, map[string]string{"name": "Ada", "goal": "maintenance"}).
		Return(nil, &client.RequestFailed{Op: "recommend", Status: http.StatusBadRequest, Message: "Missing field: age"})

	req := httptest.NewRequest(http.MethodPost, "/form", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.do(req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitProfileErrorShowsMessage(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.api.On("Recommend", mock.Anything, mock.Anything).
		Return(nil, &client.RequestFailed{Op: "recommend", Status: http.StatusBadRequest, Message: "invalid goal"})

	w := f.postForm("/form", profileForm())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	doc := parse(t, w)
	assert.Equal(t, "invalid goal", doc.Find("#formError").Text())
	val, _ := doc.Find("#name").Attr("value")
	assert.Equal(t, "Ada", val)

	_, err := f.store.GetPayload(context.Background(), f.sessionID())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSubmitProfileTransportFailure(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.api.On("Recommend", mock.Anything, mock.Anything).
		Return(nil, &client.RequestFailed{Op: "recommend", Message: "The service is unavailable, please try again."})

	w := f.postForm("/form", profileForm())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "The service is unavailable, please try again.", parse(t, w).Find("#formError").Text())
}

func TestSubmitProfileStoresResultsAndRedirects(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	targets := `{"calories":2000,"protein_g":150,"carbs_g":250,"fat_g":67}`
	recs := `[{"name":"Oats","category":"Grains","cluster":1,"similarity":0.97,"calories":389}]`
	f.api.On("Recommend", mock.Anything, mock.Anything).
		Return(&client.RecommendResult{Targets: json.RawMessage(targets), Recommendations: json.RawMessage(recs)}, nil)

	w := f.postForm("/form", profileForm())

	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/results", loc.Path)

	stored, err := f.store.GetPayload(context.Background(), f.sessionID())
	require.NoError(t, err)
	assert.JSONEq(t, targets, string(stored.Targets))
	assert.JSONEq(t, recs, string(stored.Recommendations))
	assert.Equal(t, stored.ResultID, loc.Query().Get("rid"))

	page := f.get(loc.String())
	require.Equal(t, http.StatusOK, page.Code)
	doc := parse(t, page)
	assert.Empty(t, doc.Find(".alert-warning").Text())
	assert.Equal(t, "Oats", doc.Find("#recommendations li .fw-bold").Text())
}

func TestResultsSummary(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.seed(`{"calories":2000,"protein_g":150,"carbs_g":250,"fat_g":67}`, `[]`)

	doc := parse(t, f.get("/results"))

	var lines []string
	doc.Find("#targets .card > div").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, strings.TrimSpace(s.Text()))
	})
	assert.Equal(t, []string{"Calories: 2000 kcal", "Protein: 150 g", "Carbs: 250 g", "Fat: 67 g"}, lines)
}

func TestResultsSummaryPlaceholders(t *testing.T) {
	for name, targets := range map[string]string{"empty object": `{}`, "null": `null`} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil, Options{ChartEnabled: true})
			f.seed(targets, `[]`)

			doc := parse(t, f.get("/results"))
			doc.Find("#targets .card > div").Each(func(_ int, s *goquery.Selection) {
				assert.Contains(t, s.Text(), ": - ")
			})
			assert.Equal(t, 4, doc.Find("#targets .card > div").Length())
		})
	}
}

func TestResultsWithoutCache(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})

	doc := parse(t, f.get("/results"))

	assert.Equal(t, 0, doc.Find("#recommendations li").Length())
	assert.Equal(t, 4, doc.Find("#targets .card > div").Length())
	assert.Empty(t, doc.Find(".alert-warning").Text())
}

func TestResultsRecommendationList(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.seed(`{}`, `[
		{"name":"Oats","category":"Grains","cluster":1,"similarity":0.9731,"calories":389.5},
		{"name":"Salmon","category":"Seafood","cluster":"3","similarity":0.5,"calories":208.4},
		{"name":"Oats","category":"Grains","cluster":1,"similarity":0.9731,"calories":0}
	]`)

	doc := parse(t, f.get("/results"))
	items := doc.Find("#recommendations li")
	require.Equal(t, 3, items.Length())

	var names, meta, badges []string
	items.Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Find(".fw-bold").Text())
		meta = append(meta, s.Find("small").Text())
		badges = append(badges, s.Find(".badge").Text())
	})
	assert.Equal(t, []string{"Oats", "Salmon", "Oats"}, names)
	assert.Equal(t, "Grains · cluster 1 · sim 0.9731", meta[0])
	assert.Equal(t, "Seafood · cluster 3 · sim 0.5", meta[1])
	assert.Equal(t, []string{"390 kcal", "208 kcal", "0 kcal"}, badges)
}

func TestResultsEscapesNames(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.seed(`{}`, `[{"name":"<b>Bold</b>","category":"x","cluster":1,"similarity":1,"calories":1}]`)

	w := f.get("/results")
	assert.NotContains(t, w.Body.String(), "<b>Bold</b>")
	assert.Equal(t, "<b>Bold</b>", parse(t, w).Find("#recommendations .fw-bold").Text())
}

func TestResultsStaleLink(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	rid := f.seed(`{"calories":1800}`, `[]`)

	assert.Empty(t, parse(t, f.get("/results?rid="+rid)).Find(".alert-warning").Text())

	doc := parse(t, f.get("/results?rid=older-submission"))
	assert.Equal(t, NoticeStale, doc.Find(".alert-warning").Text())
	assert.Contains(t, doc.Find("#targets").Text(), "1800")
}

func TestResultsExpiredLink(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})

	doc := parse(t, f.get("/results?rid=gone"))
	assert.Equal(t, NoticeExpired, doc.Find(".alert-warning").Text())
}

func TestResultsMalformedPayload(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.seed(`{"calories":`, `[]`)

	w := f.get("/results")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, NoticeMalformed, doc.Find(".alert-warning").Text())
	assert.Equal(t, 0, doc.Find("#recommendations li").Length())
}

func TestResultsSessionsAreIsolated(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	a := newFixture(t, store, Options{ChartEnabled: true})
	a.seed(`{"calories":2500}`, `[{"name":"Oats","category":"Grains","cluster":1,"similarity":1,"calories":389}]`)

	b := &fixture{t: t, router: a.router, api: a.api, store: store, sessions: a.sessions}
	doc := parse(t, b.get("/results"))
	assert.Equal(t, 0, doc.Find("#recommendations li").Length())
	assert.NotContains(t, doc.Find("#targets").Text(), "2500")
}

type countingStore struct {
	session.Store
	reads int
}

func (s *countingStore) GetPayload(ctx context.Context, sid string) (*session.ResultsPayload, error) {
	s.reads++
	return s.Store.GetPayload(ctx, sid)
}

func TestResultsWithoutChartMountSkipsCache(t *testing.T) {
	store := &countingStore{Store: session.NewMemoryStore(time.Hour)}
	f := newFixture(t, store, Options{ChartEnabled: false})
	f.seed(`{"calories":2000}`, `[{"name":"Oats","category":"Grains","cluster":1,"similarity":1,"calories":389}]`)

	doc := parse(t, f.get("/results"))

	assert.Zero(t, store.reads)
	assert.Equal(t, 0, doc.Find("#nutrientChart").Length())
	assert.Equal(t, 0, doc.Find("#recommendations li").Length())
	assert.Equal(t, http.StatusNotFound, f.get("/results/chart.svg").Code)
}

func TestChartEndpoint(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	rid := f.seed(`{"protein_g":150,"carbs_g":250,"fat_g":67}`, `[]`)

	doc := parse(t, f.get("/results"))
	src, ok := doc.Find("#nutrientChart").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "/results/chart.svg?rid="+rid, src)

	w := f.get(src)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Daily Targets")
}

func TestExports(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true, Now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }})
	f.seed(`{"calories":2000}`, `[{"name":"Oats","category":"Grains","cluster":1,"similarity":1,"calories":389}]`)

	w := f.get("/results/export.xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "smartplate-results.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = f.get("/results/export.pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestSubmitFeedbackMessages(t *testing.T) {
	tests := []struct {
		name   string
		result *client.FeedbackResult
		want   string
	}{
		{"message", &client.FeedbackResult{Message: "feedback_recorded"}, "feedback_recorded"},
		{"error", &client.FeedbackResult{Error: "user_id, food_id, rating are required integers"}, "user_id, food_id, rating are required integers"},
		{"neither", &client.FeedbackResult{}, "Done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, Options{ChartEnabled: true})
			form := url.Values{"user_id": {"1"}, "food_id": {"4"}, "rating": {"5"}, "comment": {""}}
			f.api.On("SubmitFeedback", mock.Anything, map[string]string{"user_id": "1", "food_id": "4", "rating": "5", "comment": ""}).
				Return(tt.result, nil)

			w := f.postForm("/feedback", form)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			assert.Equal(t, tt.want, parse(t, w).Find("#feedbackMsg").Text())
		})
	}
}

func TestSubmitFeedbackTransportFailure(t *testing.T) {
	f := newFixture(t, nil, Options{ChartEnabled: true})
	f.api.On("SubmitFeedback", mock.Anything, mock.Anything).
		Return(nil, &client.RequestFailed{Op: "submit_feedback", Message: "The service is unavailable, please try again."})

	w := f.postForm("/feedback", url.Values{"rating": {"5"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "The service is unavailable, please try again.", parse(t, w).Find("#feedbackMsg").Text())
}
