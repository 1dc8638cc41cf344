package net

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"arenasrv/internal/session"
)

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a listener", t, func() {
		l := NewListener("127.0.0.1:0", session.NewManager())

		Convey("GET /health returns 200 with an empty body", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			l.router.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.Len(), ShouldEqual, 0)
		})
	})
}
