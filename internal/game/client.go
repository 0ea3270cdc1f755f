package game

// deliver queues a frame for the client without blocking the game loop
func (client *Client) deliver(frame []byte) bool {
	select {
	case client.Send <- frame:
		return true
	default:
		// Channel full, skip
		return false
	}
}

// sendState sends the full game state to a single client
func (w *World) sendState(client *Client, msgType string) {
	data, err := client.Codec.Encode(msgType, w.store.Snapshot())
	if err != nil {
		w.logger.Error("marshal state failed", "type", msgType, "error", err)
		return
	}

	if !client.deliver(data) {
		w.stats.dropped.Add(1)
		w.logger.Warn("could not send state to client", "type", msgType, "player_id", client.ID)
		return
	}
	w.stats.bytes.Add(int64(len(data)))
}
