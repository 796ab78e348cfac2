package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/campusbot/internal/answers"
	"github.com/i474232898/campusbot/internal/knowledge"
	"github.com/i474232898/campusbot/internal/resolver"
	"github.com/i474232898/campusbot/internal/temperature"
)

type fakeTemps struct{}

func (fakeTemps) Average(w temperature.Window) (float64, bool) {
	if w.Name == "morning" {
		return 21.4, true
	}
	return 0, false
}

func (fakeTemps) Compare() []temperature.DayDelta {
	d := 2.5
	return []temperature.DayDelta{{Date: "2025-05-10", SensorDelta: &d}}
}

func newTestApp(t *testing.T, temps resolver.Temperatures) (*fiber.App, *answers.Store) {
	t.Helper()
	kb, err := knowledge.Load()
	require.NoError(t, err)

	store := answers.NewStore(nil, answers.WithPicker(func(int) int { return 0 }))
	store.Replace(knowledge.AnswerTable(kb.Answers))

	app := NewApp(Deps{
		Resolver:     resolver.New(store, kb),
		Answers:      store,
		Temperatures: temps,
		Logger:       zap.NewNop(),
	})
	return app, store
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestAsk(t *testing.T) {
	app, _ := newTestApp(t, nil)

	code, body := do(t, app, http.MethodPost, "/api/v1/ask", `{"question":"Was ist dein Name?"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "answer", body["kind"])
	assert.Equal(t, "Ich bin dein freundlicher Chatbot.", body["text"])
	assert.Equal(t, "Ich bin dein freundlicher Chatbot.", body["rendered"])

	code, body = do(t, app, http.MethodPost, "/api/v1/ask", `{"question":"wie alt bist du?"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "no_answer", body["kind"])
	assert.Equal(t, resolver.NoAnswer, body["text"])
}

func TestAskValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)

	code, body := do(t, app, http.MethodPost, "/api/v1/ask", `{"interactive":true}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, true, body["error"])

	code, _ = do(t, app, http.MethodPost, "/api/v1/ask", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAskInteractiveCategoryAndSelect(t *testing.T) {
	app, _ := newTestApp(t, nil)

	code, body := do(t, app, http.MethodPost, "/api/v1/ask", `{"question":"semester","interactive":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "selection", body["kind"])
	sel, ok := body["selection"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, sel["options"], 3)

	code, body = do(t, app, http.MethodPost, "/api/v1/ask/select", `{"category":"semester","choice":"1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Das Semester beginnt am 1. Oktober.", body["text"])

	code, _ = do(t, app, http.MethodPost, "/api/v1/ask/select", `{"category":"semester","choice":"7"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodPost, "/api/v1/ask/select", `{"category":"mensa","choice":"1"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTemperatureEndpoints(t *testing.T) {
	app, _ := newTestApp(t, fakeTemps{})

	code, body := do(t, app, http.MethodGet, "/api/v1/temperature/average?window=morning", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "morning", body["window"])
	assert.Equal(t, true, body["available"])
	assert.InDelta(t, 21.4, body["average"], 1e-9)

	code, body = do(t, app, http.MethodGet, "/api/v1/temperature/average", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "all", body["window"])
	assert.Equal(t, false, body["available"])
	assert.NotContains(t, body, "average")

	code, _ = do(t, app, http.MethodGet, "/api/v1/temperature/average?window=night", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, app, http.MethodGet, "/api/v1/temperature/compare", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["days"], 1)
	assert.Contains(t, body["table"], "2025-05-10")
}

func TestTemperatureWithoutLog(t *testing.T) {
	app, _ := newTestApp(t, nil)

	code, _ := do(t, app, http.MethodGet, "/api/v1/temperature/average", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = do(t, app, http.MethodGet, "/api/v1/temperature/compare", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestAnswersCRUD(t *testing.T) {
	app, store := newTestApp(t, nil)

	code, _ := do(t, app, http.MethodPost, "/api/v1/answers", `{"question":"Wo ist die Mensa?","answer":"Im Erdgeschoss."}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, store.Has("wo ist die mensa"))

	code, body := do(t, app, http.MethodGet, "/api/v1/answers?question=wo%20ist%20die%20mensa", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Im Erdgeschoss."}, body["answers"])

	code, body = do(t, app, http.MethodGet, "/api/v1/answers", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["questions"], "wo ist die mensa")

	code, _ = do(t, app, http.MethodPost, "/api/v1/answers", `{"question":"Wo ist die Mensa?"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodDelete, "/api/v1/answers?question=wo%20ist%20die%20mensa&answer=Im%20Erdgeschoss.", "")
	assert.Equal(t, http.StatusNoContent, code)
	assert.False(t, store.Has("wo ist die mensa"))

	code, _ = do(t, app, http.MethodDelete, "/api/v1/answers?question=wo%20ist%20die%20mensa", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/answers?question=wo%20ist%20die%20mensa", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, http.MethodDelete, "/api/v1/answers", "")
	assert.Equal(t, http.StatusBadRequest, code)
}
