// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package userid

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/page"
	"github.com/xmidt-org/quantcastid/storage"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// request URL path keys
const (
	nameVarKey = "name"
)

const nameVarMissingMsg = "{name} URL path parameter missing"

// Request and Response Headers
const (
	DeviceHeaderKey        = "X-Midt-Device-Id"
	ForwardedHostHeaderKey = "X-Forwarded-Host"
	XmidtErrorHeaderKey    = "X-Midt-Error"
)

// Storage modes
const (
	CookieStorage = "cookie"
	ItemStorage   = "store"
	NoStorage     = "none"
)

const defaultMaxBodyBytes = 64 * 1024

// TransportConfig configures how requests are mapped to documents.
type TransportConfig struct {
	// Storage selects where identifiers are kept: browser cookies, the item
	// store partitioned by device, or nowhere.
	Storage string `validate:"omitempty,oneof=cookie store none"`

	// DeviceHeader carries the partition key in store mode.
	DeviceHeader string

	MaxBodyBytes int64 `validate:"gte=0"`
}

type idRequestBody struct {
	Params     map[string]any  `json:"params"`
	Consent    *consent.Signal `json:"consent"`
	MeasureTag bool            `json:"measureTag"`
	TimeZone   string          `json:"timeZone"`
	Screen     string          `json:"screen"`
}

type idRequest struct {
	name   string
	doc    *page.Document
	jar    *storage.Jar
	config Config
	signal *consent.Signal
}

type idResponse struct {
	ID      IDs `json:"id"`
	cookies []*http.Cookie
}

type transport struct {
	config TransportConfig
	store  store.S
}

func (t transport) documentStorage(ctx context.Context, r *http.Request) (storage.Storage, *storage.Jar) {
	switch t.config.Storage {
	case NoStorage:
		return storage.Unavailable, nil
	case ItemStorage:
		device := r.Header.Get(t.config.DeviceHeader)
		if len(device) == 0 || t.store == nil {
			return storage.Unavailable, nil
		}
		return storage.NewItemJar(t.store, device, sallust.Get(ctx)), nil
	default:
		jar := storage.NewJar(r)
		return jar, jar
	}
}

func (t transport) decodeBody(r *http.Request) (idRequestBody, error) {
	var body idRequestBody
	if r.Body == nil {
		return body, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, t.config.MaxBodyBytes+1))
	if err != nil {
		return body, BadRequestErr{Message: "failed to read body"}
	}
	if int64(len(data)) > t.config.MaxBodyBytes {
		return body, BadRequestErr{Message: "body too large"}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return body, BadRequestErr{Message: "failed to unmarshal json"}
	}
	return body, nil
}

// queryOverrides lets GET callers pass the document attributes without a body.
func queryOverrides(r *http.Request, body *idRequestBody) {
	q := r.URL.Query()
	if v := q.Get("measureTag"); len(v) > 0 {
		body.MeasureTag = cast.ToBool(v)
	}
	if v := q.Get("timeZone"); len(v) > 0 {
		body.TimeZone = v
	}
	if v := q.Get("screen"); len(v) > 0 {
		body.Screen = v
	}
}

func documentHost(r *http.Request) string {
	if h := r.Header.Get(ForwardedHostHeaderKey); len(h) > 0 {
		return strings.TrimSpace(strings.Split(h, ",")[0])
	}
	return r.Host
}

func (t transport) decodeIDRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	name, ok := mux.Vars(r)[nameVarKey]
	if !ok {
		return nil, BadRequestErr{Message: nameVarMissingMsg}
	}

	body, err := t.decodeBody(r)
	if err != nil {
		return nil, err
	}
	queryOverrides(r, &body)

	opts := []page.Option{
		page.WithHost(documentHost(r)),
		page.WithLogger(sallust.Get(ctx)),
	}
	if body.MeasureTag {
		opts = append(opts, page.WithMeasureTag(func() bool { return true }))
	}
	if len(body.TimeZone) > 0 {
		loc, err := time.LoadLocation(body.TimeZone)
		if err != nil {
			return nil, BadRequestErr{Message: "invalid timeZone"}
		}
		opts = append(opts, page.WithLocation(loc))
	}
	if len(body.Screen) > 0 {
		s, err := page.ParseScreen(body.Screen)
		if err != nil {
			return nil, BadRequestErr{Message: err.Error()}
		}
		opts = append(opts, page.WithScreen(s))
	}

	st, jar := t.documentStorage(ctx, r)
	return &idRequest{
		name:   name,
		doc:    page.NewDocument(st, opts...),
		jar:    jar,
		config: Config{Name: name, Params: body.Params},
		signal: body.Consent,
	}, nil
}

func encodeIDResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*idResponse)
	if !ok {
		return ErrCasting
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	for _, c := range r.cookies {
		http.SetCookie(rw, c)
	}
	rw.Header().Set("Cache-Control", "no-store")
	rw.Header().Add("Content-Type", "application/json")
	rw.Write(data)
	return nil
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(XmidtErrorHeaderKey, err.Error())
	var headerer kithttp.Headerer
	if errors.As(err, &headerer) {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	w.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return sallust.With(ctx, logger.With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		))
	}
}
