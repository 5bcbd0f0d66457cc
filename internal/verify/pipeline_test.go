package verify

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/imageguard/internal/blob"
	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/predict"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/sniff"
	"github.com/dropDatabas3/imageguard/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPredictor struct{ mock.Mock }

func (m *mockPredictor) Predict(ctx context.Context, f predict.File) (*predict.Result, error) {
	args := m.Called(ctx, f)
	res, _ := args.Get(0).(*predict.Result)
	return res, args.Error(1)
}

type failingBlobs struct{ blob.Store }

func (failingBlobs) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	return buf.Bytes()
}

type env struct {
	store    *memory.Store
	dir      string
	pipeline *Pipeline
	identity session.Identity
}

func newEnv(t *testing.T, p predict.Predictor) *env {
	t.Helper()
	st := memory.New()
	u := &repository.User{Username: "alice", Email: "a@x.io", Role: repository.RoleUser}
	require.NoError(t, st.Users().Save(context.Background(), u))

	dir := filepath.Join(t.TempDir(), "store")
	ids := []string{"img-1", "hist-1", "img-2", "hist-2"}
	next := 0
	pl := NewPipeline(PipelineDeps{
		Sniffer:   sniff.New(),
		Blobs:     blob.NewFS(dir),
		Images:    st.Images(),
		History:   st.History(),
		Users:     st.Users(),
		Predictor: p,
		Now:       func() time.Time { return time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC) },
		NewID: func() string {
			id := ids[next%len(ids)]
			next++
			return id
		},
	})
	return &env{store: st, dir: dir, pipeline: pl, identity: session.Identity{UserID: u.ID, Username: "alice", Role: repository.RoleUser}}
}

func predictServer(t *testing.T, status int, body string) *predict.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return predict.NewClient(predict.Config{BaseURL: srv.URL})
}

func TestHandleUpload_Success(t *testing.T) {
	client := predictServer(t, http.StatusOK, `{"class":1,"class_description":"real","fake_probability":0.1234,"image_name":"cat.jpg"}`)
	e := newEnv(t, client)
	ctx := context.Background()

	out, err := e.pipeline.HandleUpload(ctx, e.identity, jpegBytes(t), "my cat!.jpg")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, "Success", out.Message)
	res, ok := out.Data.(*predict.Result)
	require.True(t, ok)
	assert.Equal(t, "real", res.ClassDescription)

	img, err := e.store.Images().FindByID(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, "img-1_my_cat_.jpg", filepath.Base(img.Filepath))
	_, err = os.Stat(img.Filepath)
	require.NoError(t, err)

	all, _ := e.store.History().FindAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "hist-1", all[0].ID)
	assert.Equal(t, "img-1", all[0].ImageID)
	assert.Equal(t, e.identity.UserID, all[0].UserID)
	assert.Equal(t, "class_description: real, fake_probability: 0.123", all[0].Result)
}

func TestHandleUpload_NotAnImage(t *testing.T) {
	p := &mockPredictor{}
	e := newEnv(t, p)

	out, err := e.pipeline.HandleUpload(context.Background(), e.identity, []byte("just some text"), "evil.png")
	assert.ErrorIs(t, err, ErrInvalidUpload)
	assert.Equal(t, http.StatusBadRequest, out.StatusCode)

	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	imgs, _ := e.store.Images().FindAll(context.Background())
	assert.Empty(t, imgs)
	_, statErr := os.Stat(e.dir)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestHandleUpload_UnprocessableKeepsImage(t *testing.T) {
	client := predictServer(t, http.StatusUnprocessableEntity, `{"detail":"no face"}`)
	e := newEnv(t, client)
	ctx := context.Background()

	out, err := e.pipeline.HandleUpload(ctx, e.identity, jpegBytes(t), "x.jpg")
	pe, ok := predict.AsError(err)
	require.True(t, ok)
	assert.Equal(t, predict.KindUnprocessable, pe.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, out.StatusCode)

	imgs, _ := e.store.Images().FindAll(ctx)
	assert.Len(t, imgs, 1)
	hist, _ := e.store.History().FindAll(ctx)
	assert.Empty(t, hist)
}

func TestHandleUpload_StorageFailure(t *testing.T) {
	p := &mockPredictor{}
	e := newEnv(t, p)
	e.pipeline.deps.Blobs = failingBlobs{}

	out, err := e.pipeline.HandleUpload(context.Background(), e.identity, jpegBytes(t), "x.jpg")
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, http.StatusInternalServerError, out.StatusCode)
	p.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestHandleUpload_UnknownUserIsInternal(t *testing.T) {
	p := &mockPredictor{}
	p.On("Predict", mock.Anything, mock.MatchedBy(func(f predict.File) bool {
		return f.MIME == "image/jpeg" && f.Name == "image.png"
	})).Return(&predict.Result{ClassDescription: "fake", FakeProbability: 0.9}, nil).Once()
	e := newEnv(t, p)

	ghost := session.Identity{UserID: 999, Username: "ghost"}
	out, err := e.pipeline.HandleUpload(context.Background(), ghost, jpegBytes(t), "")
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, out.StatusCode)
	p.AssertExpectations(t)

	imgs, _ := e.store.Images().FindAll(context.Background())
	require.Len(t, imgs, 1)
	assert.True(t, strings.HasSuffix(imgs[0].Filepath, "img-1_image.png"))
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"":                 "image.png",
		"cat.png":          "cat.png",
		"../../etc/passwd": ".._.._etc_passwd",
		"mi foto (1).JPG":  "mi_foto__1_.JPG",
		"a-b_c.d":          "a-b_c.d",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeFilename(in), in)
	}
	assert.Equal(t, "_and_.png", SafeFilename("\u00f1and\u00fa.png"))
}
