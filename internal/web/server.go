// Package web serves a shared controller to browsers: JSON snapshots over
// HTTP and live updates over a websocket.
//
// A views message carries the sampled curve, the cobweb, the orbit and the
// defined ranges. With the default configuration it is a little over 32 KiB,
// which is above the default read limit of github.com/coder/websocket, so Go
// clients must call Conn.SetReadLimit before reading (1 MiB is ample).
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

const (
	writeTimeout = 5 * time.Second
	clientBuffer = 8
)

// Command is a control change sent by a websocket client. Exactly the fields
// that are set are applied, Param before Start.
type Command struct {
	Param *float64 `json:"param,omitempty"`
	Start *float64 `json:"start,omitempty"`
	Probe *float64 `json:"probe,omitempty"`
}

// Message is what the server sends to websocket clients.
type Message struct {
	Type  string           `json:"type"`
	Views *viewstate.Views `json:"views,omitempty"`
	Probe *dynamo.Point    `json:"probe,omitempty"`
	Error string           `json:"error,omitempty"`
}

const (
	TypeViews = "views"
	TypeProbe = "probe"
	TypeError = "error"
)

type client struct {
	out chan Message
}

// Server shares one controller between HTTP and websocket clients. Every
// snapshot the controller publishes is pushed to all connected clients.
type Server struct {
	mu      sync.Mutex
	ctrl    *viewstate.Controller
	clients map[*client]struct{}
	log     *slog.Logger
}

func NewServer(ctrl *viewstate.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctrl:    ctrl,
		clients: make(map[*client]struct{}),
		log:     logger,
	}
	ctrl.AddRenderer(viewstate.RendererFunc(s.broadcast))
	return s
}

// Handler routes the JSON API and the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /api/bifurcation", s.handleBifurcation)
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.ctrl.Views()
	s.mu.Unlock()
	writeJSON(w, v)
}

func (s *Server) handleBifurcation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b := s.ctrl.Bifurcations()
	s.mu.Unlock()
	writeJSON(w, struct {
		analysis.Bifurcations
		Feigenbaum []float64 `json:"feigenbaum"`
	}{b, analysis.FeigenbaumRatios(b.Points)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		s.log.Warn("websocket accept", "err", err)
		return
	}
	defer c.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cl := &client{out: make(chan Message, clientBuffer)}
	s.mu.Lock()
	s.clients[cl] = struct{}{}
	cl.out <- Message{Type: TypeViews, Views: s.ctrl.Views()}
	s.mu.Unlock()
	s.log.Debug("client connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, cl)
		s.mu.Unlock()
		s.log.Debug("client disconnected", "remote", r.RemoteAddr)
	}()

	go s.writeLoop(ctx, c, cl)

	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				s.log.Debug("websocket read", "err", err)
			}
			return
		}
		if typ != websocket.MessageText {
			s.reply(cl, Message{Type: TypeError, Error: "expected a text message"})
			continue
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reply(cl, Message{Type: TypeError, Error: fmt.Sprintf("bad command: %v", err)})
			continue
		}
		s.apply(cl, cmd)
	}
}

// apply runs cmd against the controller. View changes reach the sender
// through the broadcast; probe results are sent to the sender only.
func (s *Server) apply(cl *client, cmd Command) {
	if cmd.Param == nil && cmd.Start == nil && cmd.Probe == nil {
		s.reply(cl, Message{Type: TypeError, Error: "empty command"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Param != nil {
		s.ctrl.SetParameter(*cmd.Param)
	}
	if cmd.Start != nil {
		s.ctrl.SetStartingPoint(*cmd.Start)
	}
	if cmd.Probe != nil {
		p := s.ctrl.Probe(*cmd.Probe)
		s.send(cl, Message{Type: TypeProbe, Probe: &p})
	}
	s.log.Debug("command applied", "a", s.ctrl.Param(), "x0", s.ctrl.Start())
}

func (s *Server) reply(cl *client, m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send(cl, m)
}

// broadcast is the controller's renderer. It runs with s.mu held.
func (s *Server) broadcast(v *viewstate.Views) {
	for cl := range s.clients {
		s.send(cl, Message{Type: TypeViews, Views: v})
	}
}

// send queues m for cl without blocking. A client that falls behind loses
// messages rather than stalling the controller. Callers hold s.mu.
func (s *Server) send(cl *client, m Message) {
	select {
	case cl.out <- m:
	default:
		s.log.Warn("client too slow, dropping message", "type", m.Type)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *websocket.Conn, cl *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-cl.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, m)
			cancel()
			if err != nil {
				s.log.Debug("websocket write", "err", err)
				c.CloseNow()
				return
			}
		}
	}
}
