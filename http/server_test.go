package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wtfSocial/action"
	"wtfSocial/auth"
	"wtfSocial/cache"
	"wtfSocial/domain"
	"wtfSocial/testutil"
)

const testSecret = "http-test-secret-http-test-secret"

type testServer struct {
	*Server
	db    *gorm.DB
	acts  *action.Actions
	alice *domain.User
	bob   *domain.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, db := testutil.NewStore(t)
	pages, err := cache.New(64)
	require.NoError(t, err)
	verifier, err := auth.NewVerifier(context.Background(), auth.VerifierConfig{HMACSecret: testSecret})
	require.NoError(t, err)

	acts := action.New(store, action.WithInvalidator(pages))
	s, err := NewServer(acts, verifier, auth.NewResolver(store.Users()), pages, prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	return &testServer{
		Server: s,
		db:     db,
		acts:   acts,
		alice:  testutil.CreateUser(t, db, "alice"),
		bob:    testutil.CreateUser(t, db, "bob"),
	}
}

func token(t *testing.T, sub, username string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:    username + "@example.com",
		Username: username,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, body string, user *domain.User, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, user.ExternalID, user.Handle))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestServer_FeedCache(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.JSONEq(t, `{"success":true,"posts":[]}`, w.Body.String())

	w = ts.do(t, "GET", "/feed", "", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = ts.do(t, "POST", "/posts", `{"content":"first post"}`, ts.alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/feed", "", nil, "If-None-Match", etag)
	require.Equal(t, http.StatusOK, w.Code, "creating a post invalidates the feed")
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
	posts := decodeBody(t, w)["posts"].([]interface{})
	require.Len(t, posts, 1)
	post := posts[0].(map[string]interface{})
	assert.Equal(t, "first post", post["content"])
	assert.Equal(t, "alice", post["author"].(map[string]interface{})["handle"])
}

func TestServer_FeedCache_MutationDuringRender(t *testing.T) {
	ts := newTestServer(t)
	testutil.AfterQueryOn(t, ts.db, "posts", func() {
		_, err := ts.acts.CreatePost(context.Background(), domain.Actor{ExternalID: ts.alice.ExternalID, UserID: ts.alice.ID}, "written mid render", "")
		require.NoError(t, err)
	})

	w := ts.do(t, "GET", "/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["posts"], "the render read the posts before the insert")

	w = ts.do(t, "GET", "/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decodeBody(t, w)["posts"].([]interface{})
	require.Len(t, posts, 1, "the stale render must not be served from the cache")
	assert.Equal(t, "written mid render", posts[0].(map[string]interface{})["content"])
}

func TestServer_Engagement(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/posts", `{"content":"hi","image":"https://img.example.com/a.png"}`, ts.alice)
	require.Equal(t, http.StatusCreated, w.Code)
	postID := decodeBody(t, w)["post"].(map[string]interface{})["id"].(string)

	w = ts.do(t, "POST", "/posts/"+postID+"/like", "", ts.bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"liked":true}`, w.Body.String())

	w = ts.do(t, "POST", "/posts/"+postID+"/comments", `{"content":"nice"}`, ts.bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "POST", "/posts/"+postID+"/comments", `{"content":" "}`, ts.bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", "/posts/missing/like", "", ts.bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decodeBody(t, w)["error"])

	w = ts.do(t, "GET", "/notifications", "", ts.alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["notifications"], 2)

	w = ts.do(t, "POST", "/notifications/read", "", ts.alice)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "DELETE", "/posts/"+postID, "", ts.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to delete post","code":"unauthorized"}`, w.Body.String())

	w = ts.do(t, "DELETE", "/posts/"+postID, "", ts.alice)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Auth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/posts", `{"content":"hi"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])

	w = ts.do(t, "POST", "/posts", `{"content":"hi"}`, nil, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "invalid tokens are treated as anonymous")

	w = ts.do(t, "POST", "/posts", `not json`, ts.alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	newcomer := &domain.User{ExternalID: "ext|dave", Handle: "dave"}
	w = ts.do(t, "POST", "/posts", `{"content":"hi"}`, newcomer)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "identity without user record")

	w = ts.do(t, "POST", "/users/sync", "", newcomer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "dave", decodeBody(t, w)["user"].(map[string]interface{})["handle"])

	w = ts.do(t, "POST", "/posts", `{"content":"hi"}`, newcomer)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "POST", "/users/sync", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_Profile(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/posts", `{"content":"about me"}`, ts.alice)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "POST", "/users/"+ts.alice.ID+"/follow", "", ts.bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"following":true}`, w.Body.String())

	w = ts.do(t, "POST", "/users/"+ts.bob.ID+"/follow", "", ts.bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/profile/alice", "", ts.bob)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["is_following"])
	assert.Len(t, body["posts"], 1)
	assert.Len(t, body["liked_posts"], 0)
	counts := body["profile"].(map[string]interface{})["_count"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["followers"])

	w = ts.do(t, "GET", "/profile/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["is_following"], "cached per viewer")

	w = ts.do(t, "PUT", "/profile", `{"name":"Alice","bio":"new bio"}`, ts.alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/profile/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new bio", decodeBody(t, w)["profile"].(map[string]interface{})["bio"])

	w = ts.do(t, "PUT", "/profile", `{"website":"alice.dev"}`, ts.alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "alice.dev", decodeBody(t, w)["user"].(map[string]interface{})["website"])

	w = ts.do(t, "GET", "/profile/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, "GET", "/feed", "", nil)
	ts.do(t, "GET", "/feed", "", nil)

	w := ts.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `wtfsocial_http_requests_total{code="200",method="GET",route="/feed"} 2`)
	assert.Contains(t, w.Body.String(), `wtfsocial_http_page_cache_lookups_total{result="hit"} 1`)
}
