package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kasilami/kasilami/cache"
	"github.com/kasilami/kasilami/models"
	"github.com/kasilami/kasilami/realtime"
	"github.com/kasilami/kasilami/utils"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
	wsReadTimeout  = 2 * wsPingInterval
	wsSendBuffer   = 16
)

// PushMessage tells a browser that a cached read went stale.
type PushMessage struct {
	Type  string         `json:"type"`
	Key   cache.Key      `json:"key"`
	Event realtime.Event `json:"event"`
}

// RealtimeController upgrades to a WebSocket and pushes invalidations for
// one kasi/section or one post until the browser goes away.
type RealtimeController struct {
	bridge   *realtime.Bridge
	upgrader websocket.Upgrader
}

func NewRealtimeController(bridge *realtime.Bridge, allowedOrigins []string) *RealtimeController {
	return &RealtimeController{
		bridge: bridge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Watch serves GET /realtime?post_id= or ?kasi=&section=.
func (rc *RealtimeController) Watch(ctx *gin.Context) {
	send := make(chan PushMessage, wsSendBuffer)
	notify := func(key cache.Key, ev realtime.Event) {
		select {
		case send <- PushMessage{Type: "invalidate", Key: key, Event: ev}:
		default:
			// a slow browser misses pushes; its next read still refetches
			utils.Sugar.Debugf("realtime: dropping push for %s", key.String())
		}
	}

	var (
		sub *realtime.Subscription
		err error
	)
	if postID := strings.TrimSpace(ctx.Query("post_id")); postID != "" {
		sub, err = rc.bridge.WatchComments(ctx.Request.Context(), postID, notify)
	} else {
		section := models.Section(strings.ToLower(strings.TrimSpace(ctx.Query("section"))))
		if section != "" && !section.Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40030, "unknown section")
			return
		}
		sub, err = rc.bridge.WatchPosts(ctx.Request.Context(), ctx.Query("kasi"), string(section), notify)
	}
	if err != nil {
		utils.Sugar.Errorw("realtime subscribe failed", "error", err)
		utils.Error(ctx, http.StatusServiceUnavailable, 50330, "change feed unavailable")
		return
	}
	defer sub.Unsubscribe()

	ws, err := rc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		utils.Sugar.Debugf("realtime: upgrade failed: %v", err)
		return
	}
	defer ws.Close()
	utils.Sugar.Debugf("realtime: watching %s", sub.Scope().Name())

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		writePushes(ws, send, quit)
	}()

	// reading keeps pong handling alive and tells us when the browser leaves
	ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	sub.Unsubscribe()
	// send stays open: a delivery already in progress may still call notify
	close(quit)
	<-done
}

func writePushes(ws *websocket.Conn, send <-chan PushMessage, quit <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-send:
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
