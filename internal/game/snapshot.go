package game

import "sync/atomic"

// Stats describes outbound traffic since the world was created
type Stats struct {
	Players    int64 `json:"players"`
	Broadcasts int64 `json:"broadcasts"`
	Bytes      int64 `json:"bytes"`
	Dropped    int64 `json:"dropped"`
}

type worldStats struct {
	players    atomic.Int64
	broadcasts atomic.Int64
	bytes      atomic.Int64
	dropped    atomic.Int64
}

// Stats returns the current broadcast statistics. Safe to call from any goroutine.
func (w *World) Stats() Stats {
	return Stats{
		Players:    w.stats.players.Load(),
		Broadcasts: w.stats.broadcasts.Load(),
		Bytes:      w.stats.bytes.Load(),
		Dropped:    w.stats.dropped.Load(),
	}
}

// broadcast sends a message to every connected client
func (w *World) broadcast(msgType string, payload any) {
	w.broadcastExcept("", msgType, payload)
}

// broadcastExcept sends a message to every client but skip. Frames are
// encoded once per codec.
func (w *World) broadcastExcept(skip, msgType string, payload any) {
	frames := make(map[string][]byte, 2)

	for id, client := range w.clients {
		if id == skip {
			continue
		}

		name := client.Codec.Name()
		data, ok := frames[name]
		if !ok {
			var err error
			data, err = client.Codec.Encode(msgType, payload)
			if err != nil {
				w.logger.Error("marshal broadcast failed", "type", msgType, "codec", name, "error", err)
				continue
			}
			frames[name] = data
		}

		if !client.deliver(data) {
			w.stats.dropped.Add(1)
			w.logger.Debug("send buffer full, frame dropped", "type", msgType, "player_id", id)
			continue
		}
		w.stats.bytes.Add(int64(len(data)))
	}

	w.stats.broadcasts.Add(1)
}
