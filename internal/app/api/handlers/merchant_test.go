package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	"github.com/fatflowers/notemarket/pkg/response"
)

func merchantRouter(links *stubLinks, auth *stubAuthorizer) http.Handler {
	r := newRouter(seller)
	RegisterMerchantRoutes(r, links, auth, testSettings, nopLog)
	RegisterMerchantAPIRoutes(r.Group("/api/v1"), links)
	return r
}

func callback(t *testing.T, r http.Handler, query, cookieState string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/merchant/oauth/callback"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMerchantConnect_IssuesState(t *testing.T) {
	auth := &stubAuthorizer{}
	w := serve(t, merchantRouter(&stubLinks{}, auth), http.MethodGet, "/merchant/connect", "")

	require.Equal(t, http.StatusFound, w.Code)
	require.NotEmpty(t, auth.state)
	assert.Equal(t, "https://auth.test/authorization?state="+auth.state, w.Header().Get("Location"))

	var stateCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == oauthStateCookie {
			stateCookie = ck
		}
	}
	require.NotNil(t, stateCookie)
	assert.Equal(t, auth.state, stateCookie.Value)
	assert.True(t, stateCookie.HttpOnly)
}

func TestMerchantCallback_Linked(t *testing.T) {
	links := &stubLinks{}
	w := callback(t, merchantRouter(links, &stubAuthorizer{}), "?code=abc&state=s1", "s1")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/profile?notice=merchant_linked", w.Header().Get("Location"))
	assert.Equal(t, "seller-1", links.gotSeller)
	assert.Equal(t, "abc", links.gotCode)
}

func TestMerchantCallback_Failures(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		cookie string
		links  *stubLinks
	}{
		{"state mismatch", "?code=abc&state=s2", "s1", &stubLinks{}},
		{"no state cookie", "?code=abc&state=s1", "", &stubLinks{}},
		{"missing code", "?state=s1", "s1", &stubLinks{}},
		{"exchange failed", "?code=abc&state=s1", "s1", &stubLinks{connectErr: errors.New("invalid_grant")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := callback(t, merchantRouter(tc.links, &stubAuthorizer{}), tc.query, tc.cookie)

			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "https://notes.test/profile?notice=merchant_link_failed", w.Header().Get("Location"))
		})
	}
}

func TestMerchantDisconnect(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		links := &stubLinks{}
		w := serve(t, merchantRouter(links, &stubAuthorizer{}), method, "/merchant/disconnect", "")

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://notes.test/profile?notice=merchant_unlinked", w.Header().Get("Location"))
		assert.Equal(t, []string{"seller-1"}, links.unlinked)
	}
}

func TestMerchantLinkStatus(t *testing.T) {
	links := &stubLinks{status: &merchantlink.Status{Linked: true, MPUserID: "mp-1"}}
	w := serve(t, merchantRouter(links, &stubAuthorizer{}), http.MethodGet, "/api/v1/merchant/link", "")

	var resp response.APIResponse[merchantlink.Status]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Linked)
	assert.Equal(t, "mp-1", resp.Data.MPUserID)
}

func TestMerchantRoutes_RequireLogin(t *testing.T) {
	r := newRouter(nil)
	links := &stubLinks{}
	RegisterMerchantRoutes(r, links, &stubAuthorizer{}, testSettings, nopLog)

	w := serve(t, r, http.MethodPost, "/merchant/disconnect", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, links.unlinked)
}
