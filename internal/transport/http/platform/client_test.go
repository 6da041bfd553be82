package platform_test

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	DTO_http "skillogs_validator/internal/DTO/http"
	"skillogs_validator/internal/config"
	"skillogs_validator/internal/platformtest"
	"skillogs_validator/internal/transport/http/platform"
)

const sessionPath = "/api/user/cohort/C/module/M/session/S"

func newClient(t *testing.T, srv *platformtest.Server, password string) *platform.Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Email = platformtest.Email
	cfg.Password = password
	return platform.NewClient(cfg, srv.Client())
}

func payload() DTO_http.ValidationRequest {
	key := "g1"
	return DTO_http.ValidationRequest{Payload: DTO_http.ValidationPayload{
		Key:    &key,
		Layout: "flexible_content",
		Data: []DTO_http.ValidationEntry{
			{Key: "t1", Layout: "text", Data: DTO_http.ValidationData{Done: true, Time: 30}},
		},
	}}
}

func TestClient_TokenIsCachedForRun(t *testing.T) {
	srv := platformtest.New([]byte(`{"data": []}`))
	defer srv.Close()
	c := newClient(t, srv, platformtest.Password)
	ctx := context.Background()

	require.NoError(t, c.Authenticate(ctx))
	_, err := c.FetchSessionContent(ctx, sessionPath)
	require.NoError(t, err)
	_, err = c.FetchSessionContent(ctx, sessionPath)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.Logins())
	assert.Equal(t, 2, srv.SessionGets())
}

func TestClient_AuthFailure(t *testing.T) {
	srv := platformtest.New(nil)
	defer srv.Close()
	c := newClient(t, srv, "wrong")

	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, platform.ErrAuth)
	assert.True(t, platform.IsUnauthorized(err))
	assert.Equal(t, 0, srv.Logins())
}

func TestClient_UnauthorizedInvalidatesSession(t *testing.T) {
	srv := platformtest.New([]byte(`{"data": []}`))
	defer srv.Close()
	c := newClient(t, srv, platformtest.Password)
	ctx := context.Background()

	require.NoError(t, c.Authenticate(ctx))

	srv.ExpireToken()
	_, err := c.FetchSessionContent(ctx, sessionPath)
	require.Error(t, err)
	assert.True(t, platform.IsUnauthorized(err))
	assert.Equal(t, 1, srv.Logins())

	// следующий вызов логинится заново
	_, err = c.FetchSessionContent(ctx, sessionPath)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Logins())
}

func TestClient_SubmitValidation(t *testing.T) {
	srv := platformtest.New(nil)
	defer srv.Close()
	c := newClient(t, srv, platformtest.Password)

	resp, err := c.SubmitValidation(context.Background(), sessionPath+"/content/42/flexible_content", payload())
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusOK, resp.Status)
	assert.True(t, resp.IsJSON())
	assert.Contains(t, resp.Summary(), `"success": true`)

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "42", subs[0].ContentID)
	assert.Equal(t, "Bearer token-1", subs[0].Header.Get("Authorization"))
	assert.Equal(t, config.DefaultOrigin, subs[0].Header.Get("Origin"))
	assert.Equal(t, "fr", subs[0].Header.Get("X-Language"))
	assert.Equal(t, "g1", *subs[0].Body.Payload.Key)
}

func TestClient_SubmitValidation_HTMLError(t *testing.T) {
	srv := platformtest.New(nil)
	defer srv.Close()
	srv.FailContent("42", stdhttp.StatusInternalServerError)
	c := newClient(t, srv, platformtest.Password)

	resp, err := c.SubmitValidation(context.Background(), sessionPath+"/content/42/flexible_content", payload())
	require.Error(t, err)

	var se *platform.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, stdhttp.StatusInternalServerError, se.Code)
	assert.False(t, resp.IsJSON())
	assert.Contains(t, resp.Summary(), "response is not JSON")
	assert.Contains(t, resp.Summary(), "<h1>Server Error</h1>")
}

func TestClient_SubmitValidation_EmptyDataRejected(t *testing.T) {
	srv := platformtest.New(nil)
	defer srv.Close()
	c := newClient(t, srv, platformtest.Password)

	body := payload()
	body.Payload.Data = nil
	resp, err := c.SubmitValidation(context.Background(), sessionPath+"/content/42/flexible_content", body)
	require.Error(t, err)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, resp.Status)
	assert.True(t, resp.IsJSON())
	assert.Contains(t, resp.Summary(), "The payload.data field is required.")
}

func TestClient_FetchContentDetails(t *testing.T) {
	srv := platformtest.New(nil)
	defer srv.Close()
	srv.SetDetails("42", []byte(`{"key": "q"}`))
	c := newClient(t, srv, platformtest.Password)
	ctx := context.Background()

	raw, err := c.FetchContentDetails(ctx, sessionPath+"/content/42/flexible_content")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "q"}`, string(raw))

	_, err = c.FetchContentDetails(ctx, sessionPath+"/content/7/flexible_content")
	var se *platform.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, stdhttp.StatusMethodNotAllowed, se.Code)
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, platform.IsTimeout(nil))
	assert.False(t, platform.IsTimeout(errors.New("boom")))
	assert.True(t, platform.IsTimeout(&net.DNSError{IsTimeout: true}))
}

func TestSession_LazyOnce(t *testing.T) {
	calls := 0
	s := platform.NewSession(func(context.Context) (string, error) {
		calls++
		return "tok", nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tok, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok", tok)
	}
	assert.Equal(t, 1, calls)

	s.Invalidate()
	_, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
