// Package predict es el cliente HTTP del motor de predicción.
//
// Una llamada = un POST multipart a <base>/predict con el campo "file".
// Los status remotos se traducen a *Error con un Kind estable; no se
// reintenta por status, solo (opcionalmente) ante errores de transporte.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/dropDatabas3/imageguard/internal/metrics"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
)

type Kind string

const (
	KindBadInput          Kind = "bad_input"
	KindForbidden         Kind = "forbidden"
	KindUnprocessable     Kind = "unprocessable"
	KindRemoteFailure     Kind = "remote_failure"
	KindResponseMalformed Kind = "malformed"
)

// Error lleva el tipo de falla y el status HTTP remoto (0 si no hubo respuesta).
type Error struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("predict: %s (%d): %s: %v", e.Kind, e.HTTPStatus, e.Message, e.Err)
	}
	return fmt.Sprintf("predict: %s (%d): %s", e.Kind, e.HTTPStatus, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// OutcomeStatus es el status que se reporta al cliente final.
func (e *Error) OutcomeStatus() int {
	switch e.Kind {
	case KindBadInput:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindResponseMalformed:
		return http.StatusBadGateway
	default:
		if e.HTTPStatus == 0 {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

// AsError extrae un *Error de la cadena.
func AsError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}

// Result es la respuesta del motor.
type Result struct {
	PredictedClass   int     `json:"class"`
	ClassDescription string  `json:"class_description"`
	FakeProbability  float64 `json:"fake_probability"`
	ImageName        string  `json:"image_name"`
}

// File es la imagen a enviar.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Predictor es lo que consume el pipeline.
type Predictor interface {
	Predict(ctx context.Context, f File) (*Result, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	// Backoff entre reintentos de transporte (default 200ms * intento).
	Backoff time.Duration
}

type Client struct {
	url     string
	http    *http.Client
	retries int
	backoff time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Client{
		url:     strings.TrimRight(cfg.BaseURL, "/") + "/predict",
		http:    &http.Client{Timeout: cfg.Timeout},
		retries: cfg.Retries,
		backoff: cfg.Backoff,
	}
}

func (c *Client) Predict(ctx context.Context, f File) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("client"),
		logger.Component("predict"),
		logger.Filename(f.Name),
	)

	body, contentType, err := encode(f)
	if err != nil {
		return nil, &Error{Kind: KindBadInput, Message: "could not encode upload", Err: err}
	}

	start := time.Now()
	defer func() { metrics.PredictLatency.Observe(time.Since(start).Seconds()) }()

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, c.fail(&Error{Kind: KindRemoteFailure, Message: "build request", Err: err})
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err = c.http.Do(req)
		if err == nil {
			break
		}
		if attempt >= c.retries || ctx.Err() != nil {
			log.Warn("prediction transport error", logger.Int("attempt", attempt+1), logger.Err(err))
			return nil, c.fail(&Error{Kind: KindRemoteFailure, Message: "prediction service unreachable", Err: err})
		}
		log.Debug("retrying prediction", logger.Int("attempt", attempt+1), logger.Err(err))
		select {
		case <-ctx.Done():
			return nil, c.fail(&Error{Kind: KindRemoteFailure, Message: "prediction service unreachable", Err: ctx.Err()})
		case <-time.After(c.backoff * time.Duration(attempt+1)):
		}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if perr := statusError(resp.StatusCode); perr != nil {
		log.Warn("prediction rejected",
			logger.Status(resp.StatusCode),
			logger.String("body", truncate(string(raw), 256)),
		)
		return nil, c.fail(perr)
	}

	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Error("prediction response malformed", logger.Status(resp.StatusCode), logger.Err(err))
		return nil, c.fail(&Error{
			Kind:       KindResponseMalformed,
			HTTPStatus: resp.StatusCode,
			Message:    "failed to parse response from prediction service",
			Err:        err,
		})
	}

	metrics.PredictResults.WithLabelValues("ok").Inc()
	return &out, nil
}

func (c *Client) fail(e *Error) *Error {
	metrics.PredictResults.WithLabelValues(string(e.Kind)).Inc()
	return e
}

// statusError: nil para 2xx.
func statusError(status int) *Error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return &Error{Kind: KindBadInput, HTTPStatus: status, Message: "invalid data provided to the prediction service"}
	case status == http.StatusForbidden:
		return &Error{Kind: KindForbidden, HTTPStatus: status, Message: "access to the prediction service is denied"}
	case status == http.StatusUnprocessableEntity:
		return &Error{Kind: KindUnprocessable, HTTPStatus: status, Message: "the prediction service could not process the image"}
	case status == http.StatusInternalServerError:
		return &Error{Kind: KindRemoteFailure, HTTPStatus: status, Message: "prediction service failed"}
	default:
		return &Error{Kind: KindRemoteFailure, HTTPStatus: status, Message: fmt.Sprintf("unexpected status %d from prediction service", status)}
	}
}

func encode(f File) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := f.Name
	if name == "" {
		name = "image.png"
	}
	ct := f.MIME
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
