// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package userid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/page"
	"github.com/xmidt-org/quantcastid/storage"
	"github.com/xmidt-org/quantcastid/store/inmem"
	"go.uber.org/zap/zaptest"
)

// fakeSubmodule reports the stored "fake" cookie and writes one once the
// document loads.
type fakeSubmodule struct {
	name string

	doc    *page.Document
	config Config
	signal *consent.Signal
}

func (f *fakeSubmodule) Name() string {
	return f.name
}

func (f *fakeSubmodule) Decode(value string) string {
	return "decoded:" + value
}

func (f *fakeSubmodule) GetID(ctx context.Context, doc *page.Document, config Config, signal *consent.Signal) Response {
	f.doc, f.config, f.signal = doc, config, signal

	var resp Response
	if v, ok := doc.Storage().GetCookie(ctx, "fake"); ok {
		resp.ID = IDs{f.name: v}
	}
	doc.Ready().OnReady(func() {
		doc.Storage().SetCookie(ctx, storage.Cookie{
			Name:    "fake",
			Value:   "written",
			Expires: time.Now().Add(time.Hour),
			Path:    "/",
			Domain:  doc.RootDomain(),
		})
	})
	return resp
}

func newTestRouter(t *testing.T, config TransportConfig, f *fakeSubmodule) *mux.Router {
	r := NewRegistry()
	require.NoError(t, r.Register(Category, f))
	h, err := NewHandler(r, inmem.NewInMem(), config, zaptest.NewLogger(t))
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Handle("/api/v1/userId/{name}", h).Methods(http.MethodGet, http.MethodPost)
	return router
}

func TestHandlerCookieStorage(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	f := &fakeSubmodule{name: "fakeId"}
	router := newTestRouter(t, TransportConfig{}, f)

	body := `{
		"params": {"expires": 30},
		"consent": {"gdprApplies": true, "consentString": "CO", "apiVersion": 2},
		"timeZone": "America/New_York",
		"screen": "1920x1080x24"
	}`
	req := httptest.NewRequest(http.MethodPost, "https://www.example.com/api/v1/userId/fakeId", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(http.StatusOK, rec.Code)
	assert.JSONEq(`{"id": null}`, rec.Body.String())
	assert.Equal("application/json", rec.Header().Get("Content-Type"))

	cookies := rec.Result().Cookies()
	require.Len(cookies, 1)
	assert.Equal("fake", cookies[0].Name)
	assert.Equal("written", cookies[0].Value)
	assert.Equal("example.com", cookies[0].Domain)

	require.NotNil(f.doc)
	assert.True(f.doc.Loaded())
	assert.Equal("www.example.com", f.doc.Host())
	assert.Equal("America/New_York", f.doc.Location().String())
	screen, ok := f.doc.Screen()
	assert.True(ok)
	assert.Equal(1920, screen.Width)
	assert.Equal("fakeId", f.config.Name)
	assert.EqualValues(30, f.config.Params["expires"])
	require.NotNil(f.signal)
	assert.True(f.signal.Applies())
	assert.Equal(2, f.signal.APIVersion)

	req = httptest.NewRequest(http.MethodGet, "https://www.example.com/api/v1/userId/fakeId", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(http.StatusOK, rec.Code)
	assert.JSONEq(`{"id": {"fakeId": "decoded:written"}}`, rec.Body.String())
}

func TestHandlerItemStorage(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	f := &fakeSubmodule{name: "fakeId"}
	router := newTestRouter(t, TransportConfig{Storage: ItemStorage}, f)

	send := func(device string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "https://www.example.com/api/v1/userId/fakeId?measureTag=true", nil)
		if len(device) > 0 {
			req.Header.Set(DeviceHeaderKey, device)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send("device-1234")
	require.Equal(http.StatusOK, rec.Code)
	assert.Empty(rec.Result().Cookies())
	assert.True(f.doc.MeasureTagPresent())

	rec = send("device-1234")
	assert.JSONEq(`{"id": {"fakeId": "decoded:written"}}`, rec.Body.String())

	rec = send("device-5678")
	assert.JSONEq(`{"id": null}`, rec.Body.String())

	rec = send("")
	assert.JSONEq(`{"id": null}`, rec.Body.String())
	assert.Equal(storage.Unavailable, f.doc.Storage())
}

func TestHandlerNoStorage(t *testing.T) {
	f := &fakeSubmodule{name: "fakeId"}
	router := newTestRouter(t, TransportConfig{Storage: NoStorage}, f)

	req := httptest.NewRequest(http.MethodGet, "https://www.example.com/api/v1/userId/fakeId", nil)
	req.AddCookie(&http.Cookie{Name: "fake", Value: "ignored"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": null}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandlerForwardedHost(t *testing.T) {
	f := &fakeSubmodule{name: "fakeId"}
	router := newTestRouter(t, TransportConfig{}, f)

	req := httptest.NewRequest(http.MethodGet, "http://internal:8080/api/v1/userId/fakeId", nil)
	req.Header.Set(ForwardedHostHeaderKey, "news.example.org, proxy.internal")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "news.example.org", f.doc.Host())
	assert.Equal(t, "example.org", f.doc.RootDomain())
}

func TestHandlerErrors(t *testing.T) {
	tcs := []struct {
		Description  string
		Path         string
		Body         string
		ExpectedCode int
	}{
		{Description: "Unknown submodule", Path: "/api/v1/userId/missing", ExpectedCode: http.StatusNotFound},
		{Description: "Malformed json", Path: "/api/v1/userId/fakeId", Body: `{"params":`, ExpectedCode: http.StatusBadRequest},
		{Description: "Bad time zone", Path: "/api/v1/userId/fakeId", Body: `{"timeZone": "Mars/Olympus"}`, ExpectedCode: http.StatusBadRequest},
		{Description: "Bad screen", Path: "/api/v1/userId/fakeId?screen=big", ExpectedCode: http.StatusBadRequest},
		{Description: "Body too large", Path: "/api/v1/userId/fakeId", Body: `{"params": {"x": "` + strings.Repeat("a", 128) + `"}}`, ExpectedCode: http.StatusBadRequest},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			router := newTestRouter(t, TransportConfig{MaxBodyBytes: 64}, &fakeSubmodule{name: "fakeId"})
			req := httptest.NewRequest(http.MethodPost, "https://www.example.com"+tc.Path, strings.NewReader(tc.Body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.ExpectedCode, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(XmidtErrorHeaderKey))
		})
	}
}

func TestNewTransportConfig(t *testing.T) {
	assert := assert.New(t)
	c, err := newTransportConfig(TransportConfig{})
	require.NoError(t, err)
	assert.Equal(CookieStorage, c.Storage)
	assert.Equal(DeviceHeaderKey, c.DeviceHeader)
	assert.Equal(int64(defaultMaxBodyBytes), c.MaxBodyBytes)

	_, err = newTransportConfig(TransportConfig{Storage: "disk"})
	assert.Error(err)
}

func TestEncodeIDResponseCasting(t *testing.T) {
	err := encodeIDResponse(context.Background(), httptest.NewRecorder(), "wrong")
	assert.ErrorIs(t, err, ErrCasting)
}

func TestIDResponseJSON(t *testing.T) {
	data, err := json.Marshal(&idResponse{ID: IDs{"quantcastId": "B0-1-2"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": {"quantcastId": "B0-1-2"}}`, string(data))
}
