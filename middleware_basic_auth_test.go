package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BasicAuthTestSuite struct {
	suite.Suite

	handler http.Handler
}

func (suite *BasicAuthTestSuite) SetupTest() {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	suite.handler = newBasicAuthMiddleware(handler, configBasicAuth{
		User:     "user",
		Password: "password",
	})
}

func (suite *BasicAuthTestSuite) serve(user, password string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/self", nil)
	if user != "" || password != "" {
		req.SetBasicAuth(user, password)
	}

	rec := httptest.NewRecorder()

	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *BasicAuthTestSuite) TestNoCredentials() {
	rec := suite.serve("", "")

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.NotEmpty(rec.Header().Get("WWW-Authenticate"))
}

func (suite *BasicAuthTestSuite) TestWrongPassword() {
	suite.Equal(http.StatusUnauthorized, suite.serve("user", "pass").Code)
}

func (suite *BasicAuthTestSuite) TestOk() {
	suite.Equal(http.StatusNoContent, suite.serve("user", "password").Code)
}

func (suite *BasicAuthTestSuite) TestDisabled() {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	wrapped := newBasicAuthMiddleware(handler, configBasicAuth{})
	_, ok := wrapped.(*basicAuthMiddleware)

	suite.False(ok)

	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/self", nil))
	suite.Equal(http.StatusNoContent, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	suite.Run(t, &BasicAuthTestSuite{})
}
