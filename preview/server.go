// Package preview renders the current document in a browser: a local HTTP
// server wraps it in a sandboxed iframe and pushes live reloads over a
// websocket whenever the document changes.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"atelier/app"
)

// wrapperPage hosts the sandboxed iframe and the reload socket. The sandbox
// allows embedded scripts and forms but denies escalation to the hosting
// origin beyond that. Chrome background and iframe width come from the
// persisted theme and panel-width preferences.
const wrapperPage = `<!DOCTYPE html>
<html>
<head>
<title>atelier preview</title>
<style>
html, body { margin: 0; height: 100%%; background: %s; }
iframe { display: block; margin: 0 auto; height: 100%%; width: %s; border: 0; }
</style>
</head>
<body>
<iframe id="doc" src="/doc" sandbox="allow-scripts allow-forms allow-modals allow-popups"></iframe>
<script>
(function connect() {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function () { document.getElementById("doc").src = "/doc?t=" + Date.now(); };
  ws.onclose = function () { setTimeout(connect, 1000); };
})();
</script>
</body>
</html>`

// Server serves the current document with live reload.
type Server struct {
	app    *app.App
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a preview server over the controller.
func NewServer(a *app.App, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		app:     a,
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the preview routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWrapper)
	mux.HandleFunc("/doc", s.handleDocument)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleWrapper(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	bg := "#ffffff"
	if s.app.Theme() == "dark" {
		bg = "#111111"
	}
	fmt.Fprintf(w, wrapperPage, bg, s.app.PanelWidth())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	code := s.app.Code()
	if code == "" {
		code = `<html><body><p style="font-family: sans-serif; padding: 2rem;">Nothing to preview yet. Generate or import an app first.</p></body></html>`
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, code)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The preview is same-machine only.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Reads are discarded; the socket exists only for server pushes.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}

// NotifyReload pushes a reload to every connected preview.
func (s *Server) NotifyReload() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Write(ctx, websocket.MessageText, []byte("reload")); err != nil {
			s.logger.Debug("reload push failed", "error", err)
		}
		cancel()
	}
}

// ListenAndServe runs the preview server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("preview server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
