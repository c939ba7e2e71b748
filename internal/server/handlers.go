package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/1F47E/go-bezier-renderer/internal/metrics"
	"github.com/1F47E/go-bezier-renderer/internal/pipeline"
	"github.com/1F47E/go-bezier-renderer/internal/storage"
)

type queryResponse struct {
	// nil encodes as null: past the last frame
	Result []pipeline.Expression `json:"result"`
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Frame    int    `json:"frame"`
}

type framesResponse struct {
	Frames []string `json:"frames"`
	Total  int      `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type calculatorPage struct {
	APIKey           string
	Width            int
	Height           int
	TotalFrames      int
	DownloadImages   bool
	ShowGrid         bool
	ScreenshotWidth  any
	ScreenshotHeight any
	ScreenshotFormat string
	WSPath           string
}

// GET /?frame=<i> recomputes frame i from disk on every request.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("frame")
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "frame must be a non-negative integer"})
		return
	}

	total, err := s.store.Count()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if idx >= total {
		writeJSON(w, http.StatusOK, queryResponse{})
		return
	}

	exprs, err := s.renderer.Frame(idx)
	if err != nil {
		log.Warnf("frame %d: %v", idx, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if exprs == nil {
		exprs = []pipeline.Expression{}
	}
	writeJSON(w, http.StatusOK, queryResponse{Result: exprs})
}

// POST /upload stores a multipart "file" as frame<frame>.<ext>.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, err error) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, status, errorResponse{Error: err.Error()})
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		fail(http.StatusBadRequest, storage.ErrNoFile)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		// a "file" part without a file name arrives as a plain value
		if _, ok := r.MultipartForm.Value["file"]; ok {
			fail(http.StatusBadRequest, storage.ErrNoFilename)
			return
		}
		fail(http.StatusBadRequest, storage.ErrNoFile)
		return
	}
	defer file.Close()

	frame := 1
	if v := r.FormValue("frame"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			frame = n
		}
	}

	if err := storage.ValidateUpload(header.Filename, frame); err != nil {
		fail(http.StatusBadRequest, err)
		return
	}

	name, err := s.store.Save(frame, file)
	if err != nil {
		log.Errorf("upload: %v", err)
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	// the stored file may still be undecodable, that only shows on query
	width, height := 0, 0
	if img, err := storage.DecodeFile(s.store.FramePath(frame)); err == nil {
		width, height = img.Bounds().Dx(), img.Bounds().Dy()
		s.dims.Update(width, height)
	} else {
		log.Warnf("upload %s: %v", name, err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	log.Infof("Stored %s from %s", name, header.Filename)
	s.hub.publish(map[string]any{
		"type":     "upload",
		"frame":    frame,
		"filename": name,
		"width":    width,
		"height":   height,
	})
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Filename: name, Frame: frame})
}

func (s *Server) handleFrames(w http.ResponseWriter, _ *http.Request) {
	names, err := s.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, framesResponse{Frames: names, Total: len(names)})
}

func (s *Server) handleCalculator(w http.ResponseWriter, _ *http.Request) {
	total, err := s.store.Count()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	width, height := s.dims.Size()
	page := calculatorPage{
		APIKey:           s.cfg.Server.DesmosAPIKey,
		Width:            width,
		Height:           height,
		TotalFrames:      total,
		DownloadImages:   s.cfg.DownloadImages,
		ShowGrid:         s.cfg.ShowGrid,
		ScreenshotFormat: s.cfg.ScreenshotFormat,
		WSPath:           "/ws",
	}
	if size := s.cfg.ScreenshotSize; size.IsSet() {
		page.ScreenshotWidth, page.ScreenshotHeight = size.Width, size.Height
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, page); err != nil {
		log.Errorf("calculator page: %v", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	width, height := s.dims.Size()
	total, err := s.store.Count()
	if err != nil {
		total = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"width":            width,
		"height":           height,
		"frames_processed": s.dims.Frames(),
		"total_frames":     total,
		"run_id":           s.runID,
		"ws_clients":       s.hub.clientCount(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Debugf("writing response: %v", err)
	}
}
