package cart

import "storefront-cart/model"

// Subscribe returns a channel that immediately holds the current cart and is
// refreshed after every commit. The buffer holds one value, so a slow reader
// only ever sees the newest cart. Call the returned func to unsubscribe.
func (s *Store) Subscribe() (<-chan model.Cart, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan model.Cart, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.cart.Clone()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// broadcastLocked replaces whatever each subscriber has not read yet with
// the current cart. Only called with s.mu held.
func (s *Store) broadcastLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.cart.Clone()
	}
}

// Close ends every subscription. The store stays usable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.closed = true
}
