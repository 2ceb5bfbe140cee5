package scheduler

// txn accumulates the undo actions for every allocation made while
// scheduling a flight plan and its refuelers/transit ferries, so a
// failure anywhere in a recursive DetermineSchedule call rolls back
// every allocation it made.
type txn struct {
	undo []func()
}

func newTxn() *txn { return &txn{} }

// record appends an undo action, run in reverse order on rollback.
func (t *txn) record(fn func()) { t.undo = append(t.undo, fn) }

// rollback runs every recorded undo action, most recent first.
func (t *txn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// merge folds another txn's undo actions into this one, used when a
// nested attempt succeeds and its allocations should be owned by the
// caller's transaction.
func (t *txn) merge(other *txn) {
	t.undo = append(t.undo, other.undo...)
}
