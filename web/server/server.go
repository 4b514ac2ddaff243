// Package server serves the viewer to a browser: frames stream over
// Server-Sent Events and pointer input comes back through a small JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/loaders"
	"github.com/df07/go-scene-viewer/pkg/log"
	"github.com/df07/go-scene-viewer/pkg/renderer"
)

//go:embed static
var staticFiles embed.FS

// Server handles web requests for the scene viewer
type Server struct {
	port     int
	app      *app.App
	renderer *renderer.Software
	logger   log.Logger

	consoleChan chan ConsoleMessage
	console     *hub[ConsoleMessage]
	frames      *hub[renderer.FrameStats]

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server around a new App. Its log messages are
// mirrored to every connected browser console.
func NewServer(port int, cfg app.Config, source loaders.Source) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		port:        port,
		renderer:    renderer.NewSoftware(cfg.Width, cfg.Height, cfg.RenderJobs),
		logger:      log.New("server"),
		consoleChan: make(chan ConsoleMessage, 100),
		console:     newHub[ConsoleMessage](),
		frames:      newHub[renderer.FrameStats](),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.app = app.New(cfg, source, s.renderer,
		app.WithLogger(NewWebLogger(log.New("app"), s.consoleChan)),
		app.WithFrameHook(s.frames.publish),
	)
	go s.forwardConsole()
	return s
}

// App returns the application the server drives
func (s *Server) App() *app.App {
	return s.app
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/orbit", s.handleOrbit)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/assets", s.handleAssets)
	mux.HandleFunc("/api/load", s.handleLoad)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

// RunLoop runs the render loop at the configured frame rate until ctx is
// cancelled
func (s *Server) RunLoop(ctx context.Context) error {
	sched := app.NewTickerScheduler(s.app.Config().FPS)
	defer sched.Stop()
	return s.app.Run(ctx, sched)
}

// Start requests the configured assets, runs the render loop and serves
// HTTP until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	s.app.LoadAll()
	go func() {
		if err := s.RunLoop(ctx); err != nil {
			s.logger.Errorf("render loop: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
			// Closed after a listen error
			return
		}
		// End open streams first so Shutdown does not wait on them
		s.cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warningf("shutdown: %v", err)
		}
	}()

	s.logger.Noticef("Starting web server on http://localhost:%d", s.port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close ends open streams and stops asset loading
func (s *Server) Close() {
	s.cancel()
	s.app.Close()
}

// forwardConsole copies messages from the web logger to every stream
func (s *Server) forwardConsole() {
	for {
		select {
		case msg := <-s.consoleChan:
			s.console.publish(msg)
		case <-s.ctx.Done():
			return
		}
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NodeInfo describes one top-level scene node
type NodeInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Children  int    `json:"children"`
	Triangles int    `json:"triangles"`
}

// CameraInfo is the camera state reported by the scene endpoint
type CameraInfo struct {
	Position [3]float32 `json:"position"`
	Target   [3]float32 `json:"target"`
	Distance float64    `json:"distance"`
}

// SceneResponse represents the JSON response of the scene endpoint
type SceneResponse struct {
	Nodes   []NodeInfo `json:"nodes"`
	Pending int        `json:"pending"`
	Loaded  int        `json:"loaded"`
	Failed  int        `json:"failed"`
	Frame   uint64     `json:"frame"`
	Camera  CameraInfo `json:"camera"`
}

// handleScene reports the scene's top-level nodes and the loading state
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	resp := SceneResponse{Nodes: []NodeInfo{}, Pending: s.app.Pending(), Frame: s.renderer.Frame()}
	resp.Loaded, resp.Failed = s.app.Loaded()

	for _, n := range s.app.Scene.Children() {
		resp.Nodes = append(resp.Nodes, NodeInfo{
			Name:      n.Name,
			Kind:      n.Kind.String(),
			Children:  len(n.Children),
			Triangles: n.Triangles(),
		})
	}

	pos, target := s.app.Controls.State()
	resp.Camera = CameraInfo{Position: pos, Target: target, Distance: float64(pos.Sub(target).Len())}

	writeJSON(w, http.StatusOK, resp)
}

// handleOrbit queues orbit input: a drag of (dx, dy) pixels, zoom steps or
// a reset. The camera moves on the next frame.
func (s *Server) handleOrbit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	dx, err := parseFloatParam(r.Form, "dx", 0, -10000, 10000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dy, err := parseFloatParam(r.Form, "dy", 0, -10000, 10000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	zoom, err := parseFloatParam(r.Form, "zoom", 0, -100, 100)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	controls := s.app.Controls
	if r.Form.Get("reset") == "true" {
		controls.Reset()
	}
	if dx != 0 || dy != 0 {
		_, height := s.renderer.Size()
		controls.RotatePixels(dx, dy, height)
	}
	if zoom != 0 {
		controls.Zoom(zoom)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit   bool    `json:"hit"`
	Node  string  `json:"node,omitempty"`
	Color string  `json:"color,omitempty"`
	Depth float32 `json:"depth,omitempty"`
	Frame uint64  `json:"frame"`
}

// handleInspect reports the front-most triangle at pixel (x, y) of the
// latest frame
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	width, height := s.renderer.Size()
	x, err := parseIntParam(r.URL.Query(), "x", width/2, 0, width-1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	y, err := parseIntParam(r.URL.Query(), "y", height/2, 0, height-1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := InspectResponse{Frame: s.renderer.Frame()}
	if tri, ok := s.renderer.Pick(x, y); ok {
		resp.Hit = true
		resp.Node = tri.Node
		resp.Color = fmt.Sprintf("#%02x%02x%02x", tri.Color.R, tri.Color.G, tri.Color.B)
		resp.Depth = tri.Depth
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAssets lists the assets available in the asset directory
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := loaders.ListAssets(s.app.Config().AssetBase)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// handleLoad requests another asset. It returns immediately; the asset
// appears in the scene once loaded and failures are reported on the console.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	asset := r.Form.Get("asset")
	if asset == "" || !filepath.IsLocal(asset) || strings.Contains(asset, "://") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid asset: %q", asset)})
		return
	}

	s.app.Load(asset)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading", "asset": asset})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
