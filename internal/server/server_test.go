package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/dims"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
)

type fixture struct {
	cfg     config.Config
	store   *storage.Store
	tracker *dims.Tracker
	srv     *Server
	handler http.Handler
}

func newFixture(t *testing.T, renderer Renderer) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.FrameDir = t.TempDir()
	cfg.DownloadImages = true
	cfg.ScreenshotSize = config.Size{Width: 3840, Height: 2160}

	store := storage.New(cfg)
	tracker := dims.New()
	if renderer == nil {
		renderer = pipeline.New(cfg, store, tracker)
	}
	srv, err := New(cfg, store, renderer, tracker, "run-test")
	require.NoError(t, err)
	return &fixture{cfg: cfg, store: store, tracker: tracker, srv: srv, handler: srv.Handler()}
}

func (f *fixture) frame(t *testing.T, n, w, h int) {
	t.Helper()
	require.NoError(t, imaging.Save(imaging.New(w, h, color.Black), f.store.FramePath(n)))
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return payload
}

func uploadRequest(t *testing.T, filename string, content []byte, frame string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "-" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	if frame != "" {
		require.NoError(t, mw.WriteField("frame", frame))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), imaging.PNG))
	return buf.Bytes()
}

func TestQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.frame(t, 1, 32, 24)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/?frame=0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":[]}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// frame index == number of files
	rec = f.do(httptest.NewRequest(http.MethodGet, "/?frame=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":null}`, rec.Body.String())

	w, h := f.tracker.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 24, h)
}

func TestQueryBadIndex(t *testing.T) {
	f := newFixture(t, nil)
	for _, q := range []string{"/", "/?frame=", "/?frame=abc", "/?frame=-1", "/?frame=1.5"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, decode(t, rec), "error")
	}
}

type brokenRenderer struct{}

func (brokenRenderer) Frame(idx int) ([]pipeline.Expression, error) {
	return nil, &storage.DecodeError{Path: "frames/frame1.png", Err: errors.New("unexpected EOF")}
}

func TestQueryRendererError(t *testing.T) {
	f := newFixture(t, brokenRenderer{})
	f.frame(t, 1, 4, 4)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/?frame=0", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "frame1.png")
}

func TestUploadRejectsText(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(uploadRequest(t, "photo.txt", []byte("hello"), ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, storage.ErrInvalidType.Error(), decode(t, rec)["error"])

	entries, err := os.ReadDir(f.cfg.FrameDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	w, h := f.tracker.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		name string
		req  *http.Request
		want error
	}{
		{"no file", uploadRequest(t, "-", nil, "2"), storage.ErrNoFile},
		{"frame zero", uploadRequest(t, "a.png", pngBytes(t, 2, 2), "0"), storage.ErrFrameNumber},
		{"negative frame", uploadRequest(t, "a.png", pngBytes(t, 2, 2), "-4"), storage.ErrFrameNumber},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x")), storage.ErrNoFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want.Error(), decode(t, rec)["error"])
		})
	}
}

func TestUpload(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(uploadRequest(t, "Cat.PNG", pngBytes(t, 40, 30), "3"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"filename":"frame3.png","frame":3}`, rec.Body.String())

	_, err := os.Stat(filepath.Join(f.cfg.FrameDir, "frame3.png"))
	require.NoError(t, err)

	w, h := f.tracker.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Equal(t, 0, f.tracker.Frames())
}

func TestUploadDefaultFrame(t *testing.T) {
	f := newFixture(t, nil)

	for _, frame := range []string{"", "abc"} {
		rec := f.do(uploadRequest(t, "a.jpg", []byte("not really a jpeg"), frame))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "frame1.png", decode(t, rec)["filename"])
	}
	// undecodable content is stored but leaves the dimensions alone
	w, _ := f.tracker.Size()
	assert.Zero(t, w)
}

func TestFrames(t *testing.T) {
	f := newFixture(t, nil)
	f.frame(t, 2, 2, 2)
	f.frame(t, 1, 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.FrameDir, ".hidden"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.FrameDir, "other.png"), nil, 0o644))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/frames", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"frames":["frame1.png","frame2.png"],"total":2}`, rec.Body.String())
}

func TestFramesEmpty(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/frames", nil))
	assert.JSONEq(t, `{"frames":[],"total":0}`, rec.Body.String())
}

func TestCalculator(t *testing.T) {
	f := newFixture(t, nil)
	f.frame(t, 1, 2, 2)
	f.tracker.Update(640, 480)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/calculator", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, config.DefaultDesmosAPIKey)
	assert.Regexp(t, `\bwidth:\s*640\b`, body)
	assert.Regexp(t, `\bheight:\s*480\b`, body)
	assert.Regexp(t, `totalFrames:\s*1\b`, body)
	assert.Regexp(t, `downloadImages:\s*true\b`, body)
	assert.Regexp(t, `screenshotWidth:\s*3840\b`, body)
}

func TestStatusAndHealth(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.Observe(10, 20)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, "run-test", payload["run_id"])
	assert.EqualValues(t, 1, payload["frames_processed"])
	assert.EqualValues(t, 10, payload["width"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(httptest.NewRequest(http.MethodOptions, "/upload", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUploadBroadcast(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.srv.hub.run(ctx)

	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "config", hello["type"])

	req := uploadRequest(t, "a.png", pngBytes(t, 8, 6), "2")
	resp, err := http.Post(ts.URL+"/upload", req.Header.Get("Content-Type"), req.Body)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event map[string]any
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "upload", event["type"])
	assert.EqualValues(t, 2, event["frame"])
	assert.Equal(t, "frame2.png", event["filename"])
	assert.EqualValues(t, 8, event["width"])
}

func TestBroadcastDoesNotBlockHub(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))

	clients := f.srv.hub.snapshot()
	require.Len(t, clients, 1)

	// a write in progress on the only client
	clients[0].writeMu.Lock()
	sent := make(chan struct{})
	go func() {
		f.srv.hub.broadcast([]byte(`{"type":"ping"}`))
		close(sent)
	}()
	time.Sleep(50 * time.Millisecond)

	counted := make(chan int, 1)
	go func() { counted <- f.srv.hub.clientCount() }()
	select {
	case n := <-counted:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("clientCount blocked behind a pending write")
	}

	clients[0].writeMu.Unlock()
	<-sent

	var event map[string]any
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "ping", event["type"])
}

func TestAddr(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, "0.0.0.0:5000", f.srv.Addr())
}
