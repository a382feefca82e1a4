package calculation

// awardQueue is a FIFO of member ids with O(1) pop and lazy removal.
// Removed entries stay in the backing slice as tombstones and are skipped on pop.
type awardQueue struct {
	entries []queueEntry
	head    int
	pos     map[string]int
	live    int
}

type queueEntry struct {
	id      string
	removed bool
}

func newAwardQueue(ids ...string) *awardQueue {
	q := &awardQueue{pos: make(map[string]int, len(ids))}
	for _, id := range ids {
		q.Push(id)
	}
	return q
}

// Push appends id at the tail. Ids already waiting are left where they are.
func (q *awardQueue) Push(id string) bool {
	if _, ok := q.pos[id]; ok {
		return false
	}
	q.pos[id] = len(q.entries)
	q.entries = append(q.entries, queueEntry{id: id})
	q.live++
	return true
}

// Pop removes and returns the head of the queue
func (q *awardQueue) Pop() (string, bool) {
	for q.head < len(q.entries) {
		e := q.entries[q.head]
		q.head++
		if e.removed {
			continue
		}
		delete(q.pos, e.id)
		q.live--
		return e.id, true
	}
	return "", false
}

// Remove drops id from the queue; it reports whether id was waiting
func (q *awardQueue) Remove(id string) bool {
	i, ok := q.pos[id]
	if !ok {
		return false
	}
	q.entries[i].removed = true
	delete(q.pos, id)
	q.live--
	return true
}

func (q *awardQueue) Contains(id string) bool {
	_, ok := q.pos[id]
	return ok
}

func (q *awardQueue) Len() int { return q.live }

// Pending lists waiting ids in queue order
func (q *awardQueue) Pending() []string {
	out := make([]string, 0, q.live)
	for _, e := range q.entries[q.head:] {
		if !e.removed {
			out = append(out, e.id)
		}
	}
	return out
}
