package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/service"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/catalog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	form jobconfig.Form
	page *service.Page
	err  error
}

func (f *fakeSubmitter) Submit(ctx context.Context, form jobconfig.Form) (*service.Page, error) {
	f.form = form
	return f.page, f.err
}

func serve(register func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/x", register)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, values map[string]string, upload string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	if upload != "" {
		fw, err := mw.CreateFormFile(jobconfig.UploadField, upload)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/x", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestJobHandler_MultipartWithUpload(t *testing.T) {
	sub := &fakeSubmitter{page: &service.Page{Status: http.StatusOK, HTML: "<html>results</html>"}}
	h := NewJobHandler(sub)

	rec := serve(h.RegisterRoutes, multipartRequest(t, map[string]string{"algorithm": "ga"}, "mystar.dat", []byte("star data")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=UTF-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html>results</html>", rec.Body.String())
	assert.Equal(t, []string{"ga"}, sub.form.Values["algorithm"])
	require.NotNil(t, sub.form.Upload)
	assert.Equal(t, "mystar.dat", sub.form.Upload.Filename)
	assert.Equal(t, []byte("star data"), sub.form.Upload.Content)
}

func TestJobHandler_UploadPresence(t *testing.T) {
	sub := &fakeSubmitter{page: &service.Page{Status: http.StatusOK}}
	h := NewJobHandler(sub)

	serve(h.RegisterRoutes, multipartRequest(t, map[string]string{"algorithm": "ga", jobconfig.UploadField: ""}, "", nil))
	require.NotNil(t, sub.form.Upload)
	assert.Empty(t, sub.form.Upload.Filename)

	serve(h.RegisterRoutes, multipartRequest(t, map[string]string{"algorithm": "ga"}, "", nil))
	assert.Nil(t, sub.form.Upload)
}

func TestJobHandler_URLEncodedForm(t *testing.T) {
	sub := &fakeSubmitter{page: &service.Page{Status: http.StatusAccepted, HTML: "queued", JobID: "job-1"}}
	h := NewJobHandler(sub)
	body := url.Values{"algorithm": {"multi"}, "database": {"a", "b"}, jobconfig.UploadField: {""}}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(h.RegisterRoutes, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "job-1", rec.Header().Get("X-Job-ID"))
	assert.Equal(t, []string{"a", "b"}, sub.form.Values["database"])
	assert.NotNil(t, sub.form.Upload)
}

func TestJobHandler_SchemaErrorIsBadRequest(t *testing.T) {
	sub := &fakeSubmitter{err: jobconfig.ErrMissingUpload}
	h := NewJobHandler(sub)

	rec := serve(h.RegisterRoutes, multipartRequest(t, map[string]string{"algorithm": "ga"}, "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "stardata")
}

func TestJobHandler_UnparsableBody(t *testing.T) {
	h := NewJobHandler(&fakeSubmitter{})
	// the part is never terminated
	body := "--nothing\r\nContent-Disposition: form-data; name=\"algorithm\"\r\n\r\nga"
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=nothing")

	rec := serve(h.RegisterRoutes, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeUnsubscriber struct {
	token string
	err   error
}

func (f *fakeUnsubscriber) Unsubscribe(ctx context.Context, token string) (string, error) {
	f.token = token
	if f.err != nil {
		return "", f.err
	}
	return "user@example.com", nil
}

func TestUnsubscribeHandler(t *testing.T) {
	us := &fakeUnsubscriber{}
	h := NewUnsubscribeHandler(us)

	rec := serve(h.RegisterRoutes, httptest.NewRequest(http.MethodGet, "/x?token=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", us.token)
	assert.Contains(t, rec.Body.String(), "user@example.com")

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("token=def"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(h.RegisterRoutes, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "def", us.token)
}

func TestUnsubscribeHandler_BadToken(t *testing.T) {
	h := NewUnsubscribeHandler(&fakeUnsubscriber{err: common.ErrBadRequest})

	rec := serve(h.RegisterRoutes, httptest.NewRequest(http.MethodGet, "/x?token=zzz", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAuth struct {
	err error
}

func (f *fakeAuth) Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.AuthResponse{Username: req.Username, Role: "operator", Token: "tok"}, nil
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{})
	req := httptest.NewRequest(http.MethodPost, "/x/login", strings.NewReader(`{"username":"operator","password":"pw"}`))

	rec := serve(h.RegisterRoutes, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	rec := serve(NewAuthHandler(&fakeAuth{}).RegisterRoutes,
		httptest.NewRequest(http.MethodPost, "/x/login", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(NewAuthHandler(&fakeAuth{err: common.ErrUnauthorized}).RegisterRoutes,
		httptest.NewRequest(http.MethodPost, "/x/login", strings.NewReader(`{"username":"a","password":"b"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogHandler(t *testing.T) {
	cat, err := catalog.Parse([]byte("databases:\n  - id: znuc2012.S4.star.el.y.stardb.gz\n    name: znuc2012\n    default: true\n"))
	require.NoError(t, err)

	rec := serve(NewCatalogHandler(cat).RegisterRoutes, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"databases":[{"id":"znuc2012.S4.star.el.y.stardb.gz","name":"znuc2012","default":true}]}`, rec.Body.String())
}

func TestCatalogHandler_NoCatalog(t *testing.T) {
	rec := serve(NewCatalogHandler(nil).RegisterRoutes, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"databases":[]}`, rec.Body.String())
}
