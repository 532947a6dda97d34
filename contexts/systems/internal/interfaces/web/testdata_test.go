package web_test

import (
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/interfaces/web"
	"github.com/go-arrower/mirrorhub/mw"
)

const (
	userID   = "00000000-0000-0000-0000-000000000001"
	systemID = "00000000-0000-0000-0000-000000000000"
)

// newTestRouter registers all routes the way the systems Context does.
func newTestRouter(app application.SystemsApplication) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = mw.ErrorHandler(alog.NewNoop())
	e.Use(mw.ActingUser)

	sc := web.NewSystemController(app)
	rc := web.NewResourceController(app)

	e.GET("/systems", sc.Index())
	e.GET("/systems/preview", sc.Preview())
	e.POST("/systems", sc.Store(), mw.RequireUser)
	e.GET("/systems/:id", sc.Show()).Name = "systems.show"
	e.PUT("/systems/:id", sc.Update(), mw.RequireUser)
	e.DELETE("/systems/:id", sc.Delete(), mw.RequireUser)
	e.POST("/systems/:id/resources", rc.Store(), mw.RequireUser)
	e.DELETE("/systems/:id/resources/:resourceID", rc.Delete(), mw.RequireUser)
	e.GET("/projects/:label/mirrors", rc.MirrorList())

	return e
}

func serve(e *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(mw.HeaderUserID, userID)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func serveAnonymous(e *echo.Echo, method string, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func serveWithHeader(e *echo.Echo, method string, target string, key string, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(key, value)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}
