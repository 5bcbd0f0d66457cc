package images

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/dropDatabas3/imageguard/internal/http/middlewares"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/verify"
)

type recordingUploader struct {
	calls    int
	data     []byte
	filename string
	user     string
}

func (u *recordingUploader) HandleUpload(_ context.Context, id session.Identity, data []byte, filename string) (*verify.Outcome, error) {
	u.calls++
	u.data, u.filename, u.user = data, filename, id.Username
	return verify.Success(map[string]string{"ok": "yes"}), nil
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)
	fw, err := mp.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mp.Close())
	return &buf, mp.FormDataContentType()
}

func upload(t *testing.T, c *Controller, id *session.Identity, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, "cat.png", data)
	req := httptest.NewRequest(http.MethodPost, "/images/upload", body)
	req.Header.Set("Content-Type", ct)
	if id != nil {
		req = req.WithContext(mw.WithIdentity(req.Context(), id))
	}
	rec := httptest.NewRecorder()
	c.Upload(rec, req)
	return rec
}

func TestUpload_PassesFileToPipeline(t *testing.T) {
	u := &recordingUploader{}
	c := NewController(u, nil, 1024)

	rec := upload(t, c, &session.Identity{UserID: 1, Username: "alice"}, "file", []byte("payload"))
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, http.StatusOK, out["statusCode"])

	assert.Equal(t, 1, u.calls)
	assert.Equal(t, []byte("payload"), u.data)
	assert.Equal(t, "cat.png", u.filename)
	assert.Equal(t, "alice", u.user)
}

func TestUpload_Rejections(t *testing.T) {
	id := &session.Identity{UserID: 1, Username: "alice"}

	tests := []struct {
		name     string
		id       *session.Identity
		field    string
		data     []byte
		wantCode int
		wantErr  string
	}{
		{"no identity", nil, "file", []byte("x"), http.StatusUnauthorized, "TOKEN_MISSING"},
		{"wrong field", id, "image", []byte("x"), http.StatusBadRequest, "MISSING_FILE"},
		{"file over limit", id, "file", bytes.Repeat([]byte("a"), 64), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &recordingUploader{}
			c := NewController(u, nil, 16)

			rec := upload(t, c, tt.id, tt.field, tt.data)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
			assert.Zero(t, u.calls)
		})
	}
}
