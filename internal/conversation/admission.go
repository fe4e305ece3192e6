package conversation

import "context"

// acquire takes the single turn slot for id, waiting until it frees up or
// ctx ends. The returned func releases the slot.
func (m *Manager) acquire(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	slot, ok := m.slots[id]
	if !ok {
		slot = make(chan struct{}, 1)
		m.slots[id] = slot
	}
	m.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}
