package handlers

import (
	"bytes"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cargo-route-service/internal/api/dto"
	"cargo-route-service/internal/platform/obs"
	"cargo-route-service/internal/services"

	"github.com/gorilla/websocket"
)

const wsReadTimeout = 30 * time.Second

// Stream handles GET /searches/ws. The client sends one invocation message;
// the server streams progress events, then exactly one terminal event, and
// closes the connection. A client that goes away cancels the search.
func (h *SearchHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rank, limit, err := parseRanking(r.URL.Query())
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxSearchBody)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := h.searchContext(r.Context())
	defer cancel()

	// Only control frames are expected from here on; a read error means the
	// peer is gone.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	var writeErr error
	send := func(e services.SearchEvent) {
		if writeErr != nil {
			return
		}
		out := dto.SearchEvent{Status: e.Status, Progress: e.Progress, Error: e.Error}
		if e.Status == services.StatusFinished {
			ranked, err := services.RankCandidates(e.Results, rank, limit)
			if err != nil {
				out = dto.SearchEvent{Status: services.StatusError, Error: err.Error()}
			} else {
				out.Results = dto.FromCandidates(ranked)
			}
		}
		if writeErr = conn.WriteJSON(out); writeErr != nil {
			cancel()
		}
	}

	in, err := decodeSearchRequest(bytes.NewReader(msg))
	if err != nil {
		send(services.SearchEvent{Status: services.StatusError, Error: err.Error()})
	} else if _, err := h.run(ctx, in, send); err != nil && statusFor(err) == http.StatusInternalServerError {
		log.Printf("ws search failed: req_id=%s err=%v", obs.RequestID(ctx), err)
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}

func (h *SearchHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), u.Scheme+"://"+u.Host) {
			return true
		}
	}
	log.Printf("ws origin rejected: req_id=%s origin=%s", obs.RequestID(r.Context()), origin)
	return false
}
