// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package quantcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/quantcastid/beacon"
	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/identifier"
	"github.com/xmidt-org/quantcastid/page"
	"github.com/xmidt-org/quantcastid/storage"
	"github.com/xmidt-org/quantcastid/store/inmem"
	"github.com/xmidt-org/quantcastid/userid"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	urls []string
}

func (r *recordingSender) Send(u string) {
	r.urls = append(r.urls, u)
}

func (r *recordingSender) queries(t *testing.T) []url.Values {
	var out []url.Values
	for _, raw := range r.urls {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		out = append(out, u.Query())
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

func newTestSubmodule(t *testing.T, config Config, opts ...Option) (*Submodule, *recordingSender, Measures) {
	sender := new(recordingSender)
	m := NewMeasures()
	opts = append([]Option{WithMeasures(m), WithLogger(zaptest.NewLogger(t))}, opts...)
	s, err := New(config, sender, opts...)
	require.NoError(t, err)
	return s, sender, m
}

func reports(m Measures, outcome string) float64 {
	return testutil.ToFloat64(m.Reports.With(prometheus.Labels{OutcomeLabel: outcome}))
}

func TestSubmoduleIdentity(t *testing.T) {
	s, _, _ := newTestSubmodule(t, Config{})
	assert.Equal(t, "quantcastId", s.Name())
	assert.Equal(t, "P0-TestFPA", s.Decode("P0-TestFPA"))
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s, sender, m := newTestSubmodule(t, Config{})

	jar := storage.NewJar(nil)
	doc := page.NewDocument(jar,
		page.WithHost("www.example.com"),
		page.WithLocation(time.FixedZone("EST", -5*60*60)),
	)

	start := time.Now()
	resp := s.GetID(context.Background(), doc, userid.Config{Name: Name}, nil)
	assert.Nil(resp.ID)
	assert.Empty(sender.urls)
	assert.Empty(jar.Cookies())

	doc.Load()

	queries := sender.queries(t)
	require.Len(queries, 1)
	q := queries[0]
	cookies := jar.Cookies()
	require.Len(cookies, 1)

	assert.Equal("1", q.Get("fpan"))
	assert.Equal(cookies[0].Value, q.Get("fpa"))
	assert.True(identifier.Valid(q.Get("fpa")))
	assert.Equal("example.com", q.Get("d"))
	assert.Equal("300", q.Get("tzo"))
	assert.Equal("p-prebid", q.Get("a"))
	assert.Empty(q.Get("uh"))
	assert.Empty(q.Get("sr"))

	assert.Equal(identifier.CookieName, cookies[0].Name)
	assert.Equal("/", cookies[0].Path)
	assert.Equal("example.com", cookies[0].Domain)
	assert.WithinDuration(start.Add(identifier.DefaultExpiry), cookies[0].Expires, 5*time.Second)

	created, ok := identifier.Timestamp(q.Get("fpa"))
	require.True(ok)
	assert.WithinDuration(start, created, 5*time.Second)

	assert.Equal(1.0, reports(m, SentOutcome))
	assert.Equal(1.0, testutil.ToFloat64(m.IdentifiersCreated.With(prometheus.Labels{PersistedLabel: "true"})))
}

func TestExistingIdentifier(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s, sender, _ := newTestSubmodule(t, Config{})

	r := httptest.NewRequest(http.MethodGet, "https://www.example.com/", nil)
	r.AddCookie(&http.Cookie{Name: identifier.CookieName, Value: "P0-TestFPA"})
	jar := storage.NewJar(r)
	doc := page.NewDocument(jar, page.WithHost("www.example.com"))

	// reading twice performs no writes and returns the same value
	for i := 0; i < 2; i++ {
		resp := s.GetID(context.Background(), doc, userid.Config{}, nil)
		assert.Equal(userid.IDs{Name: "P0-TestFPA"}, resp.ID)
	}
	doc.Load()

	queries := sender.queries(t)
	require.Len(queries, 1)
	assert.Equal("0", queries[0].Get("fpan"))
	assert.Equal("P0-TestFPA", queries[0].Get("fpa"))
	assert.Empty(jar.Cookies())
}

func TestSecondLifecycleReportsExisting(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s, sender, _ := newTestSubmodule(t, Config{})
	st := storage.NewItemJar(inmem.NewInMem(), "device-1234", nil)

	for i := 0; i < 2; i++ {
		doc := page.NewDocument(st, page.WithHost("example.com"))
		s.GetID(context.Background(), doc, userid.Config{}, nil)
		doc.Load()
	}

	queries := sender.queries(t)
	require.Len(queries, 2)
	assert.Equal("1", queries[0].Get("fpan"))
	assert.Equal("0", queries[1].Get("fpan"))
	assert.Equal(queries[0].Get("fpa"), queries[1].Get("fpa"))
}

func TestAlreadyLoadedDocument(t *testing.T) {
	s, sender, _ := newTestSubmodule(t, Config{})
	doc := page.NewDocument(storage.NewJar(nil), page.WithHost("example.com"))
	doc.Load()

	s.GetID(context.Background(), doc, userid.Config{}, nil)
	assert.Len(t, sender.urls, 1)

	s.GetID(context.Background(), doc, userid.Config{}, nil)
	doc.Load()
	assert.Len(t, sender.urls, 1)
}

func TestSuppressed(t *testing.T) {
	s, sender, m := newTestSubmodule(t, Config{})
	jar := storage.NewJar(nil)
	doc := page.NewDocument(jar,
		page.WithHost("example.com"),
		page.WithMeasureTag(func() bool { return true }),
	)

	s.GetID(context.Background(), doc, userid.Config{}, nil)
	doc.Load()

	assert.Empty(t, sender.urls)
	assert.Empty(t, jar.Cookies())
	assert.Equal(t, 1.0, reports(m, SuppressedOutcome))
}

func TestConsent(t *testing.T) {
	denied := &consent.Signal{
		GDPRApplies:   boolPtr(true),
		ConsentString: "CO",
		APIVersion:    2,
		VendorData: map[string]any{
			"purpose": map[string]any{
				"consents":            map[string]any{"1": false},
				"legitimateInterests": map[string]any{"10": true},
			},
		},
	}

	tcs := []struct {
		Description  string
		Rule         string
		Signal       *consent.Signal
		ExpectedSent bool
	}{
		{Description: "No signal", ExpectedSent: true},
		{Description: "Legitimate interest under any rule", Signal: denied, ExpectedSent: true},
		{Description: "Legitimate interest under strict rule", Rule: consent.RuleStrict, Signal: denied},
		{
			Description: "Missing consent string",
			Signal:      &consent.Signal{GDPRApplies: boolPtr(true), APIVersion: 2},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			s, sender, m := newTestSubmodule(t, Config{ConsentRule: tc.Rule})
			jar := storage.NewJar(nil)
			doc := page.NewDocument(jar, page.WithHost("example.com"))

			s.GetID(context.Background(), doc, userid.Config{}, tc.Signal)
			doc.Load()

			if tc.ExpectedSent {
				assert.Len(t, sender.urls, 1)
				assert.Len(t, jar.Cookies(), 1)
			} else {
				assert.Empty(t, sender.urls)
				assert.Empty(t, jar.Cookies())
				assert.Equal(t, 1.0, reports(m, DeniedOutcome))
			}
		})
	}
}

func TestConsentEvaluatedAtFireTime(t *testing.T) {
	s, sender, _ := newTestSubmodule(t, Config{})
	doc := page.NewDocument(storage.NewJar(nil), page.WithHost("example.com"))
	deny := &consent.Signal{GDPRApplies: boolPtr(true), APIVersion: 2}

	s.GetID(context.Background(), doc, userid.Config{}, nil)
	s.GetID(context.Background(), doc, userid.Config{}, deny)
	doc.Load()

	assert.Empty(t, sender.urls)
}

func TestParams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	now := time.UnixMilli(1900000000000)
	s, sender, _ := newTestSubmodule(t,
		Config{PixelURL: "https://collector.example.net/pixel", PartnerCode: "p-custom"},
		WithNow(func() time.Time { return now }),
		WithGenerator(identifier.GeneratorFunc(func(time.Time) string { return "B0-7-1900000000000" })),
	)
	jar := storage.NewJar(nil)
	doc := page.NewDocument(jar,
		page.WithHost("shop.example.co.uk"),
		page.WithScreen(page.Screen{Width: 1920, Height: 1080, ColorDepth: 24}),
	)

	s.GetID(context.Background(), doc, userid.Config{Params: map[string]any{
		ExpiresParam:      "30",
		HashedUserIDParam: "abc123",
	}}, nil)
	doc.Load()

	require.Len(sender.urls, 1)
	u, err := url.Parse(sender.urls[0])
	require.NoError(err)
	assert.Equal("collector.example.net", u.Host)

	q := u.Query()
	assert.Equal("B0-7-1900000000000", q.Get("fpa"))
	assert.Equal("example.co.uk", q.Get("d"))
	assert.Equal("1900000000000", q.Get("et"))
	assert.Equal("0", q.Get("tzo"))
	assert.Equal("1920x1080x24", q.Get("sr"))
	assert.Equal("abc123", q.Get("uh"))
	assert.Equal("1", q.Get("uht"))
	assert.Equal("p-custom", q.Get("a"))

	cookies := jar.Cookies()
	require.Len(cookies, 1)
	assert.Equal(now.Add(30*24*time.Hour).UnixMilli(), cookies[0].Expires.UnixMilli())
}

func TestStorageUnavailable(t *testing.T) {
	assert := assert.New(t)
	s, sender, m := newTestSubmodule(t, Config{})
	doc := page.NewDocument(storage.Unavailable, page.WithHost("example.com"))

	resp := s.GetID(context.Background(), doc, userid.Config{}, nil)
	assert.Nil(resp.ID)
	doc.Load()

	queries := sender.queries(t)
	assert.Len(queries, 1)
	assert.Equal("1", queries[0].Get("fpan"))
	assert.True(identifier.Valid(queries[0].Get("fpa")))
	assert.Equal(1.0, testutil.ToFloat64(m.IdentifiersCreated.With(prometheus.Labels{PersistedLabel: "false"})))
}

func TestNewInvalidConfig(t *testing.T) {
	tcs := []struct {
		Description string
		Config      Config
	}{
		{Description: "Negative expiry", Config: Config{ExpiryDays: -1}},
		{Description: "Expiry beyond cap", Config: Config{ExpiryDays: 10000000}},
		{Description: "Bad pixel url", Config: Config{PixelURL: "not a url"}},
		{Description: "Bad same site", Config: Config{SameSite: "sometimes"}},
		{Description: "Bad consent rule", Config: Config{ConsentRule: "purposeConsent &&"}},
		{Description: "Negative timeout", Config: Config{Sender: beacon.SenderConfig{Timeout: -time.Second}}},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			s, err := New(tc.Config, beacon.SenderFunc(func(string) {}))
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}
