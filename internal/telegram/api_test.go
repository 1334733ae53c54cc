package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:abc"

type recordedCall struct {
	Method string
	Body   map[string]any
	Query  string
}

type fakeTelegram struct {
	mu    sync.Mutex
	calls []recordedCall
	// handle returns the status and JSON body for a Bot API method.
	handle func(method string, body map[string]any) (int, string)
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: method, Body: body, Query: r.URL.RawQuery})
	f.mu.Unlock()

	status, payload := f.handle(method, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func (f *fakeTelegram) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newFakeAPI(t *testing.T, handle func(method string, body map[string]any) (int, string)) (*API, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{handle: handle}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewAPI(srv.Client(), srv.URL+"/", testToken), fake
}

func TestGetMe(t *testing.T) {
	api, _ := newFakeAPI(t, func(method string, _ map[string]any) (int, string) {
		require.Equal(t, "getMe", method)
		return http.StatusOK, `{"ok":true,"result":{"id":42,"is_bot":true,"username":"aanyaa_bot","first_name":"Aanyaa"}}`
	})

	me, err := api.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), me.ID)
	assert.Equal(t, "aanyaa_bot", me.Username)
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	api, fake := newFakeAPI(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"from":{"id":5,"first_name":"Asha"},"text":"hi"}},
			{"update_id":9,"message":{"message_id":2,"chat":{"id":5,"type":"private"},"from":{"id":5,"first_name":"Asha"},"text":"again"}}
		]}`
	})

	updates, next, err := api.GetUpdates(context.Background(), 3, time.Second)
	require.NoError(t, err)
	assert.Len(t, updates, 2)
	assert.Equal(t, int64(10), next)

	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "timeout=1&offset=3", calls[0].Query)
}

func TestUnauthorizedIsFatal(t *testing.T) {
	api, _ := newFakeAPI(t, func(string, map[string]any) (int, string) {
		return http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`
	})

	_, _, err := api.GetUpdates(context.Background(), 0, time.Second)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, reqErr.Fatal())
	assert.Equal(t, 401, reqErr.HTTPStatus())
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestOKFalseIsAnError(t *testing.T) {
	api, _ := newFakeAPI(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"ok":false,"description":"chat not found"}`
	})
	err := api.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.False(t, IsMarkdownParseError(err))
}

func TestIsPollTimeoutError(t *testing.T) {
	assert.True(t, IsPollTimeoutError(context.DeadlineExceeded))
	assert.False(t, IsPollTimeoutError(errors.New("boom")))
	assert.False(t, IsPollTimeoutError(nil))
}
