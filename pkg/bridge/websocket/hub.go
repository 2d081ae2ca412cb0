// Package websocket bridges frames to websocket clients.
//
// Each websocket message is one encoded bridge.Frame. Frames received from
// the link are broadcasted to all clients, frames from clients are sent to
// the link.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/websocket"

	"github.com/robotalks/serialpacket/pkg/bridge"
)

// Hub manages websocket clients.
type Hub struct {
	Sender bridge.FrameSender

	clients map[*websocket.Conn]struct{}
	lock    sync.RWMutex
}

// NewHub creates a Hub.
func NewHub(sender bridge.FrameSender) *Hub {
	return &Hub{Sender: sender, clients: make(map[*websocket.Conn]struct{})}
}

// Handler returns the http.Handler accepting websocket clients.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// PublishFrame implements bridge.Publisher.
func (h *Hub) PublishFrame(ctx context.Context, f *bridge.Frame) error {
	data, err := bridge.EncodeFrame(f)
	if err != nil {
		return err
	}
	var errs *multierror.Error
	h.lock.RLock()
	defer h.lock.RUnlock()
	for conn := range h.clients {
		errs = multierror.Append(errs, websocket.Message.Send(conn, data))
	}
	return errs.ErrorOrNil()
}

func (h *Hub) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	h.lock.Lock()
	h.clients[conn] = struct{}{}
	h.lock.Unlock()
	glog.V(1).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	defer func() {
		h.lock.Lock()
		delete(h.clients, conn)
		h.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			return
		}
		f, err := bridge.DecodeFrame(data)
		if err != nil {
			glog.Warningf("bad frame from %s: %v", conn.Request().RemoteAddr, err)
			continue
		}
		if err = h.Sender.SendFrame(f); err != nil {
			glog.Errorf("send frame error: %v", err)
		}
	}
}
