package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sasamom-server/internal/app"
	"sasamom-server/internal/config"
	"sasamom-server/internal/sms"
	"sasamom-server/internal/testutil"
	"sasamom-server/internal/utils"
)

type stubGateway struct {
	validateErr error
	sent        int
}

func (g *stubGateway) Validate() error { return g.validateErr }

func (g *stubGateway) Send(ctx context.Context, to, body string) (*sms.SendResult, error) {
	g.sent++
	return &sms.SendResult{MessageID: "SM1", Status: "queued"}, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, gw sms.Gateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SMS:       config.SMSConfig{CountryCallingCode: "254"},
		Scheduler: config.SchedulerConfig{DuplicatePolicy: "active"},
	}
	log := testutil.Logger(t)
	a := app.Wire(cfg, log, testutil.DB(t), gw)
	router := gin.New()
	SetupRoutes(router, Dependencies{Repos: a.Repos, Scheduler: a.Scheduler, Runner: a.Runner, Log: log})
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data %s: %v", raw, err)
	}
}

func TestVaccinationLifecycleOverHTTP(t *testing.T) {
	gw := &stubGateway{}
	router := newRouter(t, gw)
	today := utils.Today().Format(utils.DateLayout)

	code, env := do(t, router, http.MethodPost, "/api/v1/vaccinations", map[string]interface{}{"name": "BCG", "recommendedAgeDays": 0})
	if code != http.StatusCreated {
		t.Fatalf("create vaccination: %d %s", code, env.Error)
	}
	var vac struct {
		ID        string `json:"id"`
		DoseOrder int    `json:"doseOrder"`
	}
	decode(t, env.Data, &vac)
	if vac.DoseOrder != 1 {
		t.Fatalf("expected default dose order, got %d", vac.DoseOrder)
	}
	if code, _ := do(t, router, http.MethodPost, "/api/v1/vaccinations", map[string]interface{}{"name": "BCG"}); code != http.StatusConflict {
		t.Fatalf("duplicate vaccination: expected 409, got %d", code)
	}

	if code, env := do(t, router, http.MethodPost, "/api/v1/mothers", map[string]interface{}{"name": "Amina", "phone": "12"}); code != http.StatusBadRequest {
		t.Fatalf("invalid phone: expected 400, got %d %+v", code, env)
	}
	code, env = do(t, router, http.MethodPost, "/api/v1/mothers", map[string]interface{}{
		"name": "Amina", "phone": "0712 345 678", "consent": true, "hospital": "Pumwani Maternity",
	})
	if code != http.StatusCreated {
		t.Fatalf("create mother: %d %s", code, env.Error)
	}
	var mother struct {
		ID       string `json:"id"`
		Consent  bool   `json:"consent"`
		Language string `json:"language"`
	}
	decode(t, env.Data, &mother)
	if !mother.Consent || mother.Language != "en" {
		t.Fatalf("unexpected mother %+v", mother)
	}

	code, env = do(t, router, http.MethodPost, "/api/v1/children", map[string]interface{}{
		"motherId": mother.ID, "name": "Baraka", "dateOfBirth": today, "gender": "Male",
	})
	if code != http.StatusCreated {
		t.Fatalf("create child: %d %s", code, env.Error)
	}
	var created struct {
		Child    struct{ ID string `json:"id"` } `json:"child"`
		Schedule struct {
			Created int `json:"created"`
			Doses   []struct {
				ID string `json:"id"`
			} `json:"doses"`
		} `json:"schedule"`
	}
	decode(t, env.Data, &created)
	if created.Schedule.Created != 1 || len(created.Schedule.Doses) != 1 {
		t.Fatalf("expected one scheduled dose, got %+v", created.Schedule)
	}
	doseID := created.Schedule.Doses[0].ID

	code, env = do(t, router, http.MethodGet, "/api/v1/children/"+created.Child.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("get child: %d", code)
	}
	var detail struct {
		Upcoming  []json.RawMessage `json:"upcoming"`
		Completed []json.RawMessage `json:"completed"`
	}
	decode(t, env.Data, &detail)
	if len(detail.Upcoming) != 1 || len(detail.Completed) != 0 {
		t.Fatalf("unexpected child detail %s", env.Data)
	}

	if code, _ := do(t, router, http.MethodDelete, "/api/v1/vaccinations/"+vac.ID, nil); code != http.StatusConflict {
		t.Fatalf("delete referenced vaccination: expected 409, got %d", code)
	}

	code, env = do(t, router, http.MethodGet, "/api/v1/mothers/"+mother.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("get mother: %d", code)
	}
	var motherDetail struct {
		Status string `json:"status"`
	}
	decode(t, env.Data, &motherDetail)
	if motherDetail.Status != "Child Born (Post-Natal Care)" {
		t.Fatalf("unexpected status %q", motherDetail.Status)
	}

	code, env = do(t, router, http.MethodPost, "/api/v1/jobs/reminders?date="+today, nil)
	if code != http.StatusOK {
		t.Fatalf("run reminders: %d %s", code, env.Error)
	}
	var sweep struct {
		Sent int `json:"sent"`
	}
	decode(t, env.Data, &sweep)
	if sweep.Sent != 1 || gw.sent != 1 {
		t.Fatalf("expected one reminder, got sweep=%d gateway=%d", sweep.Sent, gw.sent)
	}

	code, env = do(t, router, http.MethodGet, "/api/v1/doses/"+doseID+"/reminders", nil)
	if code != http.StatusOK {
		t.Fatalf("reminder history: %d", code)
	}
	var history []struct {
		Stage       string `json:"stage"`
		Status      string `json:"status"`
		Destination string `json:"destination"`
	}
	decode(t, env.Data, &history)
	if len(history) != 1 || history[0].Stage != "on_day" || history[0].Status != "sent" || history[0].Destination != "+254712345678" {
		t.Fatalf("unexpected reminder history %s", env.Data)
	}

	code, env = do(t, router, http.MethodGet, "/api/v1/doses/report?date="+today, nil)
	if code != http.StatusOK {
		t.Fatalf("report: %d", code)
	}
	var report struct {
		DueCount int `json:"dueCount"`
	}
	decode(t, env.Data, &report)
	if report.DueCount != 1 {
		t.Fatalf("expected one due dose, got %d", report.DueCount)
	}

	if code, _ := do(t, router, http.MethodPatch, "/api/v1/doses/"+doseID+"/complete", nil); code != http.StatusOK {
		t.Fatalf("complete dose: %d", code)
	}
	if code, _ := do(t, router, http.MethodPatch, "/api/v1/doses/"+doseID+"/complete", nil); code != http.StatusConflict {
		t.Fatalf("complete twice: expected 409, got %d", code)
	}

	code, env = do(t, router, http.MethodGet, "/api/v1/mothers/"+mother.ID+"/upcoming-vaccinations", nil)
	if code != http.StatusOK {
		t.Fatalf("upcoming: %d", code)
	}
	var upcoming []json.RawMessage
	decode(t, env.Data, &upcoming)
	if len(upcoming) != 0 {
		t.Fatalf("completed dose must not be upcoming, got %s", env.Data)
	}

	if code, _ := do(t, router, http.MethodDelete, "/api/v1/mothers/"+mother.ID, nil); code != http.StatusOK {
		t.Fatalf("delete mother: %d", code)
	}
	if code, _ := do(t, router, http.MethodGet, "/api/v1/children/"+created.Child.ID, nil); code != http.StatusNotFound {
		t.Fatalf("child must be deleted with mother, got %d", code)
	}
}

func TestRemindersRequireGatewayConfiguration(t *testing.T) {
	gw := &stubGateway{validateErr: sms.ErrNotConfigured}
	router := newRouter(t, gw)

	code, env := do(t, router, http.MethodPost, "/api/v1/jobs/reminders?date=2024-03-10", nil)
	if code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d %+v", code, env)
	}
	if gw.sent != 0 {
		t.Fatalf("no message may be sent")
	}
}

func TestBadInputs(t *testing.T) {
	router := newRouter(t, &stubGateway{})

	if code, _ := do(t, router, http.MethodGet, "/api/v1/doses/report?date=10-03-2024", nil); code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", code)
	}
	if code, _ := do(t, router, http.MethodGet, "/api/v1/mothers/missing", nil); code != http.StatusNotFound {
		t.Fatalf("missing mother: expected 404, got %d", code)
	}
	if code, _ := do(t, router, http.MethodPost, "/api/v1/children", map[string]interface{}{"motherId": "missing"}); code != http.StatusNotFound {
		t.Fatalf("child of missing mother: expected 404, got %d", code)
	}
	if code, _ := do(t, router, http.MethodPost, "/api/v1/children/missing/schedule", nil); code != http.StatusNotFound {
		t.Fatalf("schedule missing child: expected 404, got %d", code)
	}
	if code, _ := do(t, router, http.MethodPost, "/api/v1/mothers/missing/pregnancies", map[string]interface{}{"dueDate": "2024-13-01"}); code != http.StatusBadRequest {
		t.Fatalf("bad due date: expected 400, got %d", code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"UP"`)) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}
