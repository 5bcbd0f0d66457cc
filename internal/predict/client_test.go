package predict

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile() File {
	return File{Name: "cat.png", MIME: "image/png", Data: []byte("\x89PNG fake")}
}

func TestPredict_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "\x89PNG fake", string(b))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"class":1,"class_description":"real","fake_probability":0.12,"image_name":"cat.png"}`)
	}))
	defer srv.Close()

	res, err := NewClient(Config{BaseURL: srv.URL + "/"}).Predict(context.Background(), testFile())
	require.NoError(t, err)
	assert.Equal(t, 1, res.PredictedClass)
	assert.Equal(t, "real", res.ClassDescription)
	assert.InDelta(t, 0.12, res.FakeProbability, 1e-9)
	assert.Equal(t, "cat.png", res.ImageName)
}

func TestPredict_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		kind    Kind
		outcome int
	}{
		{http.StatusBadRequest, KindBadInput, 400},
		{http.StatusForbidden, KindForbidden, 403},
		{http.StatusUnprocessableEntity, KindUnprocessable, 422},
		{http.StatusInternalServerError, KindRemoteFailure, 500},
		{http.StatusServiceUnavailable, KindRemoteFailure, 500},
		{http.StatusNotFound, KindRemoteFailure, 500},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL, Retries: 3}).Predict(context.Background(), testFile())
			pe, ok := AsError(err)
			require.True(t, ok, "expected *Error, got %v", err)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.status, pe.HTTPStatus)
			assert.Equal(t, tt.outcome, pe.OutcomeStatus())
			assert.Equal(t, int32(1), calls.Load(), "status codes are never retried")
		})
	}
}

func TestPredict_MalformedKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Predict(context.Background(), testFile())
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindResponseMalformed, pe.Kind)
	assert.Equal(t, http.StatusCreated, pe.HTTPStatus)
}

func TestPredict_TransportErrorAndRetries(t *testing.T) {
	// puerto cerrado
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewClient(Config{BaseURL: "http://" + addr, Retries: 2, Backoff: time.Millisecond})
	_, err = c.Predict(context.Background(), testFile())
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRemoteFailure, pe.Kind)
	assert.Equal(t, 0, pe.HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, pe.OutcomeStatus())
}

func TestPredict_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Predict(context.Background(), testFile())
	pe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindRemoteFailure, pe.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPredict_DefaultFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "image.png", hdr.Filename)
		}
		_, _ = io.WriteString(w, `{"class":0,"class_description":"fake","fake_probability":0.9,"image_name":"image.png"}`)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Predict(context.Background(), File{Data: []byte("x")})
	require.NoError(t, err)
}
