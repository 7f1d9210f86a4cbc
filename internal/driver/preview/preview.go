// Package preview streams frames to browsers over a websocket and accepts
// trigger signals over HTTP.
package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-spatialeds/internal/render"
	"github.com/coreman2200/funtimes-spatialeds/internal/trigger"
)

// Health is the /health payload.
type Health struct {
	FrameID uint64  `json:"frame_id"`
	Pattern string  `json:"pattern"`
	UptimeS float64 `json:"uptime_s"`
	FPS     int     `json:"fps"`
	Points  int     `json:"points"`
	Clients int     `json:"clients"`
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Pattern string `json:"pattern"`
	RGB     []byte `json:"rgb"`
}

type hello struct {
	Points  int    `json:"points"`
	Pattern string `json:"pattern"`
}

// Server is both a render.Driver (frames go out to every /ws client) and
// the HTTP front end for triggers and health.
type Server struct {
	Throttle time.Duration

	trig *trigger.Chan
	fps  int

	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	frameID   uint64
	pattern   string
	points    int
	lastEmit  time.Time
	startTime time.Time

	// serialises websocket writes
	wmu sync.Mutex

	up  websocket.Upgrader
	now func() time.Time
}

// New builds a preview server. trig may be nil, in which case trigger
// requests are accepted and ignored.
func New(trig *trigger.Chan, fps int) *Server {
	return &Server{
		Throttle:  50 * time.Millisecond, // ~20 FPS to the browser
		trig:      trig,
		fps:       fps,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
		up:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		now:       time.Now,
	}
}

// Observe records the frame counter and active pattern; it is the engine's
// per-frame hook.
func (s *Server) Observe(frameID uint64, pattern string) {
	s.mu.Lock()
	s.frameID = frameID
	s.pattern = pattern
	s.mu.Unlock()
}

func (s *Server) Write(buf []render.Color) error {
	s.mu.Lock()
	now := s.now()
	s.points = len(buf)
	if s.Throttle > 0 && s.lastEmit.Add(s.Throttle).After(now) {
		s.mu.Unlock()
		return nil
	}
	s.lastEmit = now
	f := frame{T: now.UnixNano(), FrameID: s.frameID, Pattern: s.pattern, RGB: pack(buf)}
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if len(conns) == 0 {
		return nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for _, c := range conns {
		_ = c.SetWriteDeadline(now.Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("write frame")
		}
	}
	return nil
}

func pack(buf []render.Color) []byte {
	rgb := make([]byte, len(buf)*3)
	for i, c := range buf {
		rgb[i*3+0] = byte(render.Clamp(c.R, 0, 255))
		rgb[i*3+1] = byte(render.Clamp(c.G, 0, 255))
		rgb[i*3+2] = byte(render.Clamp(c.B, 0, 255))
	}
	return rgb
}

// Handler routes /ws, /trigger and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/trigger", s.HandleTrigger)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	h := hello{Points: s.points, Pattern: s.pattern}
	s.mu.Unlock()

	b, _ := json.Marshal(h)
	s.wmu.Lock()
	_ = conn.WriteMessage(websocket.TextMessage, b)
	s.wmu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleTrigger fires once per HTTP POST, or once per message on a
// websocket. The body is ignored.
func (s *Server) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		conn, err := s.up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
				s.fire("ws")
			}
		}()
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	s.fire("http")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fire(via string) {
	log.Debug().Str("via", via).Msg("preview trigger")
	if s.trig != nil {
		s.trig.Fire()
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := Health{
		FrameID: s.frameID,
		Pattern: s.pattern,
		UptimeS: time.Since(s.startTime).Seconds(),
		FPS:     s.fps,
		Points:  s.points,
		Clients: len(s.clients),
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Close disconnects every frame client.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	return nil
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
