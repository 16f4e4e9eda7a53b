package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/usecase"
	"txapp-service/pkg/logger"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedBuffer     = 16
)

// feedMessage is pushed to oversight clients after every projection change
type feedMessage struct {
	Event   *entity.ChangeEvent      `json:"event,omitempty"`
	Refresh bool                     `json:"refresh,omitempty"`
	Shifts  []entity.ActiveShiftView `json:"shifts"`
	Metrics entity.FleetMetrics      `json:"metrics"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan feedMessage
}

// LiveFeed pushes the oversight projection to websocket clients
type LiveFeed struct {
	oversight *usecase.OversightAggregator
	resolver  IdentityResolver
	upgrader  websocket.Upgrader
	logger    logger.Logger

	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

// NewLiveFeed creates a feed and subscribes it to the aggregator
func NewLiveFeed(oversight *usecase.OversightAggregator, resolver IdentityResolver, allowedOrigins []string, logger logger.Logger) *LiveFeed {
	f := &LiveFeed{
		oversight: oversight,
		resolver:  resolver,
		logger:    logger,
		clients:   make(map[*feedClient]struct{}),
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	oversight.OnUpdate(f.broadcast)
	return f
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (f *LiveFeed) snapshot(event *entity.ChangeEvent) feedMessage {
	return feedMessage{
		Event:   event,
		Refresh: event == nil,
		Shifts:  f.oversight.ListActiveShifts(),
		Metrics: f.oversight.ComputeFleetMetrics(),
	}
}

// broadcast never blocks the aggregator; slow clients are dropped
func (f *LiveFeed) broadcast(event *entity.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clients) == 0 {
		return
	}

	msg := f.snapshot(event)
	for client := range f.clients {
		select {
		case client.send <- msg:
		default:
			f.logger.Warn("Dropping slow oversight client", "remote", client.conn.RemoteAddr().String())
			delete(f.clients, client)
			close(client.send)
		}
	}
}

// Clients returns the number of connected clients
func (f *LiveFeed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Serve upgrades the connection; browsers pass the token as ?token=
func (f *LiveFeed) Serve(c *gin.Context) {
	identity, err := f.resolver.Resolve(c.Query("token"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if !identity.Can(entity.ActionViewOversight) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": entity.ErrForbidden.Error()})
		return
	}

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	client := &feedClient{conn: conn, send: make(chan feedMessage, feedBuffer)}
	client.send <- f.snapshot(nil)

	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()
	f.logger.Info("Oversight client connected", "userID", identity.UserID)

	go f.writePump(client)
	f.readPump(client)
}

func (f *LiveFeed) remove(client *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[client]; ok {
		delete(f.clients, client)
		close(client.send)
	}
}

// readPump only services control frames; clients do not send data
func (f *LiveFeed) readPump(client *feedClient) {
	defer func() {
		f.remove(client)
		client.conn.Close()
	}()
	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *LiveFeed) writePump(client *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				f.logger.Debug("Oversight client write failed", "error", err)
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
