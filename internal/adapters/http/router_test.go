package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/E1Shivank/whispr/internal/app/orch"
	"github.com/E1Shivank/whispr/internal/config"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/E1Shivank/whispr/internal/storage/links"
	"github.com/E1Shivank/whispr/internal/storage/links/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := mocks.NewMockStore(gomock.NewController(t))
	cfg := &config.Config{
		Mode:       "test",
		Secret:     "test-secret",
		SendBuffer: 8,
		ICEServers: []string{"stun:stun.example.org:3478"},
	}
	r, err := SetupRouter(context.Background(), cfg, Deps{Orch: orch.New(nil), Links: links.NewService(store)})
	require.NoError(t, err)
	return r, store
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Signaling server is healthy.", w.Body.String())
	require.NotEmpty(t, w.Result().Cookies(), "client token session cookie")
}

func TestCreateChatLink(t *testing.T) {
	req := require.New(t)
	r, store := newTestRouter(t)

	var stored domain.Link
	store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l domain.Link) error {
		stored = l
		return nil
	})

	w := do(r, http.MethodPost, "/api/chat-links")
	req.Equal(http.StatusOK, w.Code)

	var body struct {
		ChatID    string    `json:"chatId"`
		CreatedAt time.Time `json:"createdAt"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Regexp(`^[0-9a-f]{32}$`, body.ChatID)
	req.Equal(string(stored.ChatID), body.ChatID)
	req.True(stored.CreatedAt.Equal(body.CreatedAt))
}

func TestCreateChatLink_StoreFailure(t *testing.T) {
	r, store := newTestRouter(t)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	w := do(r, http.MethodPost, "/api/chat-links")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}

func TestGetChatLink(t *testing.T) {
	req := require.New(t)
	r, store := newTestRouter(t)
	link := domain.Link{ChatID: "abc123", CreatedAt: time.UnixMilli(1700000000000).UTC()}

	store.EXPECT().Get(gomock.Any(), domain.ChatID("abc123")).Return(link, nil)
	store.EXPECT().Get(gomock.Any(), domain.ChatID("missing")).Return(domain.Link{}, links.ErrNotFound)
	store.EXPECT().Get(gomock.Any(), domain.ChatID("broken")).Return(domain.Link{}, errors.New("io"))

	w := do(r, http.MethodGet, "/api/chat-links/abc123")
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"chatId":"abc123","createdAt":"2023-11-14T22:13:20Z"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/chat-links/missing")
	req.Equal(http.StatusNotFound, w.Code)
	req.JSONEq(`{"message":"Chat link not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/chat-links/broken")
	req.Equal(http.StatusInternalServerError, w.Code)
}

func TestICEServersEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/ice-servers")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ICEServers, 1)
	require.Equal(t, []string{"stun:stun.example.org:3478"}, body.ICEServers[0].URLs)
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"rooms":0,"members":0,"connections":0}`, w.Body.String())
}

func TestSetupRouter_RejectsBadICEServer(t *testing.T) {
	_, err := SetupRouter(context.Background(), &config.Config{Secret: "s", ICEServers: []string{"ftp://nope"}}, Deps{})
	require.Error(t, err)
}
