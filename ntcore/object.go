package ntcore

import "sync/atomic"

// Object is the polymorphic, refcounted base every waitable/APC-owning
// entity in the server implements: mutexes, events, semaphores, async I/O
// handles, and the Thread object itself. New object kinds are added by
// implementing this interface; the core never switches on a closed set of
// kinds (spec section 9, "Polymorphic object vtable").
type Object interface {
	// Signaled reports whether the object is currently in a signaled
	// state for thread t, without side effects.
	Signaled(t *Thread) bool

	// Satisfied is invoked exactly once when a wait on the object is
	// granted to thread t. It performs any side effect satisfying the
	// wait implies (e.g. decrementing a semaphore, taking mutex
	// ownership) and reports whether the object was abandoned (a mutex
	// whose previous owner died without releasing it).
	Satisfied(t *Thread) bool

	// Signal implements the "signal" half of select's signal-and-wait
	// primitive (spec section 4.3, "Entering a wait"): releasing a
	// semaphore count, setting an event, or releasing a mutex owned by t.
	// It reports whether the signal took effect; objects with no release
	// operation (e.g. a thread handle) report false.
	Signal(e *Engine, t *Thread) bool

	// AddQueue links entry into the object's wait queue, taking a
	// strong reference to the object on the entry's behalf.
	AddQueue(entry *WaitEntry)

	// RemoveQueue unlinks entry from the object's wait queue, releasing
	// the reference AddQueue took.
	RemoveQueue(entry *WaitEntry)

	// Destroy releases any resources the object owns. It is called
	// once the refcount reaches zero.
	Destroy()

	// Dump renders a diagnostic, machine-parseable representation of
	// the object, appending to dst (spec section 4.9).
	Dump(dst []byte) []byte

	// Ref returns the object's embedded refcount, used by handles, wait
	// entries, APC queue membership, and nested waits to share
	// ownership (spec section 3, "Ownership").
	Ref() *RefCount
}

// RefCount is a single atomic reference counter shared by every strong
// holder of an Object: handles, wait entries, APC queue membership, and
// nested waits. When the count reaches zero Release invokes destroy
// exactly once.
type RefCount struct {
	n atomic.Int32
}

// InitRefCount initializes (or resets) the counter to one strong reference.
func (r *RefCount) InitRefCount() { r.n.Store(1) }

// AddRef takes an additional strong reference.
func (r *RefCount) AddRef() { r.n.Add(1) }

// Release drops a strong reference, invoking destroy exactly once when the
// count reaches zero.
func (r *RefCount) Release(destroy func()) {
	if r.n.Add(-1) == 0 {
		destroy()
	}
}

// Count returns the current reference count, for diagnostics/tests only.
func (r *RefCount) Count() int32 { return r.n.Load() }

// WaitEntry links one waiting thread's WaitBlock to one waited Object. It
// is the bipartite cross-reference named in spec section 9: the object's
// wait queue is an intrusive doubly linked list of *WaitEntry, each
// carrying a strong reference to the object and a back-reference to the
// owning WaitBlock (which in turn reaches the thread) -- never a raw
// pointer cycle through the thread itself.
type WaitEntry struct {
	obj        Object
	block      *WaitBlock
	index      int
	prev, next *WaitEntry
}

// Thread returns the thread this entry's wait belongs to.
func (e *WaitEntry) Thread() *Thread { return e.block.thread }

// ObjectBase is embedded by concrete Object implementations to provide the
// refcount and wait-queue bookkeeping shared by every waitable object,
// matching spec section 3 ("Object (base) — owns a refcount ... and a
// wait-queue head"). Concrete types must still implement Signaled,
// Satisfied, Destroy, and Dump themselves: ObjectBase deliberately does
// not default those, since they are the per-kind behaviour the vtable
// exists to vary.
type ObjectBase struct {
	RefCount
	head *WaitEntry // intrusive doubly linked list, nil when queue empty
}

// Ref implements Object.
func (b *ObjectBase) Ref() *RefCount { return &b.RefCount }

// AddQueue implements Object: appends entry to the tail of the queue and
// takes a strong reference on the object's behalf.
func (b *ObjectBase) AddQueue(entry *WaitEntry) {
	entry.obj.Ref().AddRef()
	if b.head == nil {
		b.head = entry
		entry.prev, entry.next = entry, entry
		return
	}
	tail := b.head.prev
	entry.prev = tail
	entry.next = b.head
	tail.next = entry
	b.head.prev = entry
}

// RemoveQueue implements Object: unlinks entry and releases the reference
// AddQueue took.
func (b *ObjectBase) RemoveQueue(entry *WaitEntry) {
	if entry.prev == nil && entry.next == nil && b.head != entry {
		return // not queued (defensive: double-remove)
	}
	if entry.next == entry {
		b.head = nil
	} else {
		entry.prev.next = entry.next
		entry.next.prev = entry.prev
		if b.head == entry {
			b.head = entry.next
		}
	}
	entry.prev, entry.next = nil, nil
	entry.obj.Ref().Release(entry.obj.Destroy)
}

// Entries returns a snapshot slice of the queue in insertion (wake) order,
// matching the ordering guarantee in spec section 5(a). Safe to call while
// holding no other locks: the dispatcher is single-threaded cooperative
// (spec section 5), so no concurrent mutation can occur.
func (b *ObjectBase) Entries() []*WaitEntry {
	if b.head == nil {
		return nil
	}
	var out []*WaitEntry
	e := b.head
	for {
		out = append(out, e)
		e = e.next
		if e == b.head {
			break
		}
	}
	return out
}

// Empty reports whether the wait queue has no entries.
func (b *ObjectBase) Empty() bool { return b.head == nil }
