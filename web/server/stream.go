package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/df07/go-scene-viewer/pkg/renderer"
)

// FrameUpdate represents a single rendered frame sent via SSE
type FrameUpdate struct {
	Frame     uint64 `json:"frame"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	Pending   int    `json:"pending"`
	ElapsedMs int64  `json:"elapsedMs"` // Since the stream was opened
}

// Stats represents render statistics of one frame
type Stats struct {
	Nodes     int     `json:"nodes"`
	Lights    int     `json:"lights"`
	Triangles int     `json:"triangles"`
	Drawn     int     `json:"drawn"`
	Culled    int     `json:"culled"`
	RenderMs  float64 `json:"renderMs"`
}

// handleStream streams rendered frames and console messages with SSE until
// the client disconnects or the server shuts down. The fps parameter caps
// the rate at which frames are sent.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	fps, err := parseIntParam(r.URL.Query(), "fps", 10, 1, 60)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	frames, unsubFrames := s.frames.subscribe(1)
	defer unsubFrames()
	console, unsubConsole := s.console.subscribe(50)
	defer unsubConsole()

	start := time.Now()
	interval := time.Second / time.Duration(fps)
	var last time.Time

	// Let the client know it is connected before the first frame
	if err := s.sendSSEEvent(w, "ready", fmt.Sprintf(`{"fps":%d}`, fps)); err != nil {
		return
	}

	for {
		select {
		case stats := <-frames:
			if time.Since(last) < interval {
				continue
			}
			last = time.Now()
			if err := s.sendFrame(w, stats, start); err != nil {
				s.logger.Debugf("stream closed: %v", err)
				return
			}

		case msg := <-console:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Warningf("Error marshaling console message: %v", err)
				continue
			}
			if err := s.sendSSEEvent(w, "console", string(data)); err != nil {
				return
			}

		case <-ctx.Done():
			// Client disconnected or server shutting down
			return
		}
	}
}

// sendFrame encodes the latest completed frame and sends it as a "frame"
// event
func (s *Server) sendFrame(w http.ResponseWriter, stats renderer.FrameStats, start time.Time) error {
	img, frame := s.renderer.Snapshot()
	imageData, err := s.imageToBase64PNG(img)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	update := FrameUpdate{
		Frame:     frame,
		ImageData: imageData,
		Stats: Stats{
			Nodes:     stats.Nodes,
			Lights:    stats.Lights,
			Triangles: stats.Triangles,
			Drawn:     stats.Drawn,
			Culled:    stats.Culled,
			RenderMs:  float64(stats.Duration.Microseconds()) / 1000,
		},
		Pending:   s.app.Pending(),
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "frame", string(data))
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEEvent writes one SSE event and flushes it to the client
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
