package ntcore

// Strategy selects how Get behaves on a miss (Open Question (i), resolved
// in DESIGN.md): StrategyNoDup is the correct default (reports failure on
// miss); StrategyDup additionally synthesizes a server fd by duplicating
// the client fd locally, appropriate only when client and server share an
// fd table.
type Strategy int

const (
	StrategyNoDup Strategy = iota
	StrategyDup
)

// dupFunc duplicates a client-namespace fd into the server's namespace.
// Indirected so tests can substitute a deterministic fake; the real
// implementation (dupFD in fd_unix.go) calls unix.Dup.
var dupFunc = func(clientFD int) (int, error) { return dupFD(clientFD) }

// inflightSlot holds one (client fd, server fd) pair (spec section 4.6).
type inflightSlot struct {
	inUse      bool
	client     int
	server     int
}

// inflightTable is the fixed-capacity per-thread in-flight fd cache named
// in spec section 4.6 and DESIGN.md's "In-flight fd cache" entry.
type inflightTable struct {
	slots    []inflightSlot
	strategy Strategy
}

func newInflightTable(capacity int) *inflightTable {
	if capacity <= 0 {
		capacity = 1
	}
	return &inflightTable{slots: make([]inflightSlot, capacity)}
}

// Add implements spec section 4.6 "add": replaces an existing entry for
// the same client fd (closing the old server fd), or claims the first
// free slot. Returns the slot index, or -1 if the table is full.
func (c *inflightTable) Add(client, server int) int {
	for i := range c.slots {
		if c.slots[i].inUse && c.slots[i].client == client {
			if c.slots[i].server != server {
				_ = closeFD(c.slots[i].server)
			}
			c.slots[i].server = server
			return i
		}
	}
	for i := range c.slots {
		if !c.slots[i].inUse {
			c.slots[i] = inflightSlot{inUse: true, client: client, server: server}
			return i
		}
	}
	return -1
}

// Get implements spec section 4.6 "get": removes and returns the server
// fd paired with client, or on miss, per Strategy, either fails
// (StrategyNoDup) or synthesizes one by duplicating the client fd and
// reinserting it (StrategyDup).
func (c *inflightTable) Get(client int) (server int, ok bool) {
	for i := range c.slots {
		if c.slots[i].inUse && c.slots[i].client == client {
			server = c.slots[i].server
			c.slots[i] = inflightSlot{}
			return server, true
		}
	}
	if c.strategy != StrategyDup {
		return -1, false
	}
	dup, err := dupFunc(client)
	if err != nil {
		return -1, false
	}
	c.Add(client, dup)
	return dup, true
}

// Remove clears the slot paired with client, if any, closing its server
// fd. Used by thread cleanup (lifecycle.go).
func (c *inflightTable) Remove(client int) {
	for i := range c.slots {
		if c.slots[i].inUse && c.slots[i].client == client {
			_ = closeFD(c.slots[i].server)
			c.slots[i] = inflightSlot{}
			return
		}
	}
}

// Clear drains every slot, closing each server fd. Used by cleanupThread.
func (c *inflightTable) Clear() {
	for i := range c.slots {
		if c.slots[i].inUse {
			_ = closeFD(c.slots[i].server)
			c.slots[i] = inflightSlot{}
		}
	}
}


