package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/types"
)

// documentID reads the :document_id path parameter. On failure a 404
// envelope is written and ok is false.
func documentID(c *gin.Context) (uint64, bool) {
	return uintParam(c, "document_id")
}

func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "invalid "+name))
		return 0, false
	}
	return id, true
}

// redirectWithNotice sends the browser to target, carrying a stable
// message code for the UI in the "notice" query parameter.
func redirectWithNotice(c *gin.Context, target string, notice types.Notice) {
	if notice != types.NoticeNone {
		if u, err := url.Parse(target); err == nil {
			q := u.Query()
			q.Set("notice", string(notice))
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	c.Redirect(http.StatusFound, target)
}

// flashCookie carries a notice from /buy across the provider checkout to
// the return page, which consumes it.
const (
	flashCookie     = "nm_notice"
	flashCookiePath = "/payment/return"
	flashMaxAge     = 3600
)

func setFlash(c *gin.Context, notice types.Notice) {
	if notice == types.NoticeNone {
		return
	}
	c.SetCookie(flashCookie, string(notice), flashMaxAge, flashCookiePath, "", c.Request.TLS != nil, true)
}

// takeFlash returns and clears a pending notice. Unknown codes are dropped.
func takeFlash(c *gin.Context) types.Notice {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return types.NoticeNone
	}
	c.SetCookie(flashCookie, "", -1, flashCookiePath, "", c.Request.TLS != nil, true)
	if n := types.Notice(raw); n.Known() {
		return n
	}
	return types.NoticeNone
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
