package dispense

// Queue holds each magazine's pending-pill counter. Enqueue is called
// from the Supervisor while draining the mailbox; Decrement/NextPending
// are called by DispenseMachine.tick(). Both run on the single
// cooperative executor, so no locking is needed, but the split keeps
// the "who may increment, who may decrement" invariant explicit.
type Queue struct {
	pending [3]int32 // indexed by MagazineID; index 0 (None) is unused
}

// NewQueue returns a Queue with both counters at zero.
func NewQueue() *Queue { return &Queue{} }

// Enqueue adds amount to id's pending count. Unknown IDs (None, or
// anything out of range) are ignored, matching spec's "unknown IDs are
// ignored" and tolerating protocol drift. amount must already be
// non-negative and clamped by the caller.
func (q *Queue) Enqueue(id MagazineID, amount int) {
	if id != Magazine1 && id != Magazine2 {
		return
	}
	if amount <= 0 {
		return
	}
	q.pending[id] += int32(amount)
}

// NextPending returns Magazine1 if it has pending work, else Magazine2,
// else None.
func (q *Queue) NextPending() MagazineID {
	if q.pending[Magazine1] > 0 {
		return Magazine1
	}
	if q.pending[Magazine2] > 0 {
		return Magazine2
	}
	return None
}

// Decrement decreases id's pending count by one; a no-op if already zero.
func (q *Queue) Decrement(id MagazineID) {
	if id != Magazine1 && id != Magazine2 {
		return
	}
	if q.pending[id] > 0 {
		q.pending[id]--
	}
}

// Pending returns id's current pending count.
func (q *Queue) Pending(id MagazineID) int32 {
	if id != Magazine1 && id != Magazine2 {
		return 0
	}
	return q.pending[id]
}

// Empty reports whether both counters are zero.
func (q *Queue) Empty() bool {
	return q.pending[Magazine1] == 0 && q.pending[Magazine2] == 0
}
