package livereload

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pv/singlebundle/internal/logger"
)

const (
	writeTimeout = 5 * time.Second
	clientBuffer = 8
)

// Event событие для браузера
type Event struct {
	Type      string    `json:"type"` // "bundle"
	Output    string    `json:"output"`
	Bytes     int       `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// BundleEvent событие о перезаписи артефакта
func BundleEvent(output string, bytes int) Event {
	return Event{Type: "bundle", Output: output, Bytes: bytes, Timestamp: time.Now()}
}

// Hub управляет websocket подключениями клиентов live reload
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}
}

// NewHub создаёт новый hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// live reload работает на localhost со страниц любого dev сервера
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]bool),
	}
}

// ServeHTTP апгрейдит соединение и держит его до отключения клиента
// GET /livereload
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Live reload upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		events: make(chan Event, clientBuffer),
		done:   make(chan struct{}),
	}
	h.add(c)
	defer h.remove(c)

	go c.readLoop()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("Live reload write failed", "error", err)
				return
			}
		}
	}
}

// readLoop нужен для обработки control frames и обнаружения закрытия
func (c *client) readLoop() {
	defer close(c.done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	logger.Debug("Live reload client connected", "total_clients", total)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	c.conn.Close()
	logger.Debug("Live reload client disconnected", "total_clients", total)
}

// Broadcast отправляет событие всем клиентам
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.events <- ev:
		default:
			// Канал переполнен, пропускаем событие
			logger.Warn("Live reload client buffer full, dropping event", "output", ev.Output)
		}
	}
}

// ClientCount возвращает количество подключённых клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Server http сервер live reload
type Server struct {
	hub  *Hub
	http *http.Server
	ln   net.Listener
}

// Listen открывает addr и регистрирует hub на /livereload
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("GET /livereload", hub)
	return &Server{
		hub:  hub,
		http: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
	}, nil
}

// Addr фактический адрес (полезно при ":0")
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve блокируется до Shutdown
func (s *Server) Serve() error {
	logger.Info("Live reload listening", "addr", s.Addr())
	if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает сервер. Открытые websocket соединения hijacked
// и не закрываются http.Server, поэтому закрываем их явно.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.hub.closeAll()
	return err
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
