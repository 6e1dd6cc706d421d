// Package team simulates the message-passing communicator the distributed
// recursive phase runs over. No MPI binding exists anywhere in the example
// corpus this repository was grown from, so a "team" is implemented as a
// fixed-size group of goroutines (one per simulated rank) that exchange
// data exclusively through channel-based collectives: broadcast, gather,
// scatter, all-to-all, and tagged point-to-point sends. This is a
// deliberate substitution for the external message-passing runtime named
// as out of scope in the specification, not a change to the algorithm:
// every collective below has the same synchronization contract an MPI
// communicator would give it.
package team

import (
	"sync"

	"github.com/ballalg/ballalg/pkg/errors"
)

// envelope is one message in flight between ranks.
type envelope struct {
	from    int
	tag     int
	payload any
}

// Team is one rank's view of a communicator of Size() peer ranks. All
// views sharing the same underlying mailbox set were produced together by
// New or Split and must be driven collectively: every rank must call the
// same collective operation, in the same order, for the round to
// complete.
type Team struct {
	rank   int
	size   int
	boxes  []chan envelope
	closed *sync.Once
}

// New creates a fresh communicator of the given size and returns one Team
// view per rank, indexed by rank.
func New(size int) []*Team {
	boxes := make([]chan envelope, size)
	for i := range boxes {
		// Buffered deep enough for a full gather/all-to-all round without
		// a send blocking on a receiver that hasn't reached the
		// collective yet.
		boxes[i] = make(chan envelope, size)
	}
	views := make([]*Team, size)
	for i := 0; i < size; i++ {
		views[i] = &Team{rank: i, size: size, boxes: boxes, closed: &sync.Once{}}
	}
	return views
}

// Rank returns this view's rank within the team, in [0, Size()).
func (t *Team) Rank() int { return t.rank }

// Size returns the number of ranks in the team.
func (t *Team) Size() int { return t.size }

// Alone reports whether this team holds a single rank, the condition that
// hands control to the shared-memory builder.
func (t *Team) Alone() bool { return t.size == 1 }

// Close releases this rank's own mailbox once the rank has redistributed
// its shard into a sub-team and has no further use for the parent team's
// collectives. Each rank closes only its own box, so Close is safe to call
// independently on every view sharing the same mailbox set.
func (t *Team) Close() {
	t.closed.Do(func() {
		close(t.boxes[t.rank])
	})
}

func (t *Team) recv(tag int) (envelope, error) {
	e, ok := <-t.boxes[t.rank]
	if !ok {
		return envelope{}, errors.Wrap(errors.CodeTransportError, "mailbox closed before receive", nil)
	}
	if tag >= 0 && e.tag != tag {
		return envelope{}, errors.Wrap(errors.CodeTransportError, "unexpected message tag", nil)
	}
	return e, nil
}

func (t *Team) send(dst, tag int, payload any) {
	t.boxes[dst] <- envelope{from: t.rank, tag: tag, payload: payload}
}

// Broadcast sends payload from root to every other rank, and returns the
// value every rank (including root) should use going forward.
func (t *Team) Broadcast(root int, payload any) (any, error) {
	if t.rank == root {
		for i := 0; i < t.size; i++ {
			if i == root {
				continue
			}
			t.send(i, tagBroadcast, payload)
		}
		return payload, nil
	}
	e, err := t.recv(tagBroadcast)
	if err != nil {
		return nil, err
	}
	return e.payload, nil
}

// Gather sends payload from every rank to root. On root it returns a
// slice of length Size() ordered by rank; on non-root ranks it returns
// nil.
func (t *Team) Gather(root int, payload any) ([]any, error) {
	if t.rank != root {
		t.send(root, tagGather, payload)
		return nil, nil
	}
	out := make([]any, t.size)
	out[root] = payload
	for i := 0; i < t.size-1; i++ {
		e, err := t.recv(tagGather)
		if err != nil {
			return nil, err
		}
		out[e.from] = e.payload
	}
	return out, nil
}

// Scatter sends payloads[i] from root to rank i and returns this rank's
// share. payloads must have length Size() and is only read on root.
func (t *Team) Scatter(root int, payloads []any) (any, error) {
	if t.rank == root {
		for i := 0; i < t.size; i++ {
			if i == root {
				continue
			}
			t.send(i, tagScatter, payloads[i])
		}
		return payloads[root], nil
	}
	e, err := t.recv(tagScatter)
	if err != nil {
		return nil, err
	}
	return e.payload, nil
}

// AllToAll sends payloads[j] from this rank to rank j, for every j, and
// returns the Size()-length slice of what every rank sent to this one,
// ordered by sender rank.
func (t *Team) AllToAll(payloads []any) ([]any, error) {
	for j := 0; j < t.size; j++ {
		if j == t.rank {
			continue
		}
		t.send(j, tagAllToAll, payloads[j])
	}
	out := make([]any, t.size)
	out[t.rank] = payloads[t.rank]
	for i := 0; i < t.size-1; i++ {
		e, err := t.recv(tagAllToAll)
		if err != nil {
			return nil, err
		}
		out[e.from] = e.payload
	}
	return out, nil
}

// SendTo sends a tagged point-to-point message to dst. Used by the median
// locator's left-to-right chain of cumulative-offset messages (§4.7).
func (t *Team) SendTo(dst, tag int, payload any) {
	t.send(dst, tagPointToPoint+tag, payload)
}

// RecvFrom blocks for a tagged point-to-point message. src is accepted
// for documentation at call sites but not verified, since the simulated
// mailbox is per-destination rather than per-link.
func (t *Team) RecvFrom(src, tag int) (any, error) {
	e, err := t.recv(tagPointToPoint + tag)
	if err != nil {
		return nil, err
	}
	return e.payload, nil
}

// splitBoxes carries both halves' freshly allocated mailbox sets from the
// split root to every other rank in one broadcast; each rank keeps only
// the half it belongs to.
type splitBoxes struct {
	left  []chan envelope
	right []chan envelope
}

const splitRoot = 0

// Split partitions this team in half by rank: ranks [0, size/2) become the
// left sub-team, ranks [size/2, size) the right. Every rank must call
// Split; the returned Team view is only valid for the half this rank
// belongs to, with a fresh, independent mailbox set so the two halves'
// subsequent collectives never interfere with each other or with the
// parent team, matching the ordering guarantee in §5.
func (t *Team) Split() (*Team, error) {
	half := t.size / 2
	left := t.rank < half

	var newSize, newRank int
	if left {
		newSize, newRank = half, t.rank
	} else {
		newSize, newRank = t.size-half, t.rank-half
	}

	var sb splitBoxes
	if t.rank == splitRoot {
		sb = splitBoxes{left: freshBoxes(half), right: freshBoxes(t.size - half)}
	}
	payload, err := t.Broadcast(splitRoot, sb)
	if err != nil {
		return nil, err
	}
	sb = payload.(splitBoxes)

	boxes := sb.right
	if left {
		boxes = sb.left
	}
	return &Team{rank: newRank, size: newSize, boxes: boxes, closed: &sync.Once{}}, nil
}

func freshBoxes(size int) []chan envelope {
	boxes := make([]chan envelope, size)
	for i := range boxes {
		boxes[i] = make(chan envelope, size)
	}
	return boxes
}

const (
	tagBroadcast = -1 - iota
	tagGather
	tagScatter
	tagAllToAll
	tagPointToPoint = 1000000
)
