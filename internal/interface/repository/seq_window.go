package repository

import "time"

// seqGrace is how long a missing sequence number may still be in flight.
// Allocation and insert are two round trips, so seq N+1 can land before N.
const seqGrace = 10 * time.Second

type seqStamp struct {
	seq        int64
	insertedAt time.Time
}

// readableRun returns how many of stamps, sorted by seq, can be handed out
// after the given offset. It stops at the first hole unless the record behind
// the hole was stored more than grace ago, in which case the hole is final.
func readableRun(after int64, stamps []seqStamp, now time.Time, grace time.Duration) int {
	next := after + 1
	for i, s := range stamps {
		if s.seq != next && now.Sub(s.insertedAt) < grace {
			return i
		}
		next = s.seq + 1
	}
	return len(stamps)
}
