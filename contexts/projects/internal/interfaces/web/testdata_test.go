package web_test

import (
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/web"
	"github.com/go-arrower/mirrorhub/mw"
)

const (
	userID    = "00000000-0000-0000-0000-000000000001"
	projectID = "10000000-0000-0000-0000-000000000000"
)

// newTestRouter registers all routes the way the projects Context does.
func newTestRouter(app application.ProjectsApplication) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = mw.ErrorHandler(alog.NewNoop())
	e.Use(mw.ActingUser)

	pc := web.NewProjectController(app)

	e.GET("/projects", pc.Index())
	e.POST("/projects", pc.Store(), mw.RequireUser)
	e.GET("/projects/:id", pc.Show()).Name = "projects.show"
	e.PUT("/projects/:id", pc.Update(), mw.RequireUser)
	e.DELETE("/projects/:id", pc.Delete(), mw.RequireUser)

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
