package game

// overlaps checks if a player box and a collectible box intersect. Boxes are
// anchored at their top-left corner; touching edges do not count.
func overlaps(p Player, c Collectible, t Tuning) bool {
	return p.X < c.X+t.CollectibleSize && p.X+t.PlayerSize > c.X &&
		p.Y < c.Y+t.CollectibleSize && p.Y+t.PlayerSize > c.Y
}

// Collect credits the player with every collectible it overlaps and removes
// those collectibles. Each collectible is visited exactly once, in sequence
// order. Returns the collected items.
func (s *Store) Collect(id string) []Collectible {
	p, ok := s.players[id]
	if !ok {
		return nil
	}

	var collected []Collectible
	kept := s.collectibles[:0]
	for _, item := range s.collectibles {
		if overlaps(*p, item, s.tuning) {
			p.Score += item.Value
			collected = append(collected, item)
			continue
		}
		kept = append(kept, item)
	}
	clear(s.collectibles[len(kept):])
	s.collectibles = kept
	return collected
}

// EnsureCollectibles regenerates the batch when the sequence is empty and
// reports whether it did
func (s *Store) EnsureCollectibles() bool {
	if len(s.collectibles) > 0 {
		return false
	}
	s.RegenerateCollectibles()
	return true
}
