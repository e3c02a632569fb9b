package ntcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalAndWaitSelfSatisfy(t *testing.T) {
	e, _ := newTestEngine()
	th := newTestThread(e)
	s := NewSemaphore(0, 1)

	wb, status := e.SelectOn(th, []Object{s}, 0, time.Time{}, true, 0x1234, s)
	require.NotNil(t, wb)
	assert.Equal(t, WaitIndexStatus(0, false), status)
	e.EndWait(th)
	assert.Equal(t, int32(0), s.count)
}

func TestWaitAllAbandon(t *testing.T) {
	e, tr := newTestEngine()
	owner := newTestThread(e)
	waiter := newTestThread(e)

	m := NewMutex(owner)
	ev := NewEvent(EventManualReset, true)

	wb, status := e.SelectOn(waiter, []Object{m, ev}, WaitAll, time.Time{}, true, 0x99, nil)
	require.NotNil(t, wb)
	assert.Equal(t, StatusPending, status)

	e.KillThread(owner, false, 7)

	require.Len(t, tr.wakes, 1)
	abandoned := tr.wakes[0].status
	idx, isAbandoned, ok := abandoned.WaitIndex()
	require.True(t, ok)
	assert.True(t, isAbandoned)
	assert.Equal(t, 0, idx)
	assert.Equal(t, waiter, m.owner)
}

func TestSystemAPCPreemptsNonAlertableWait(t *testing.T) {
	e, tr := newTestEngine()
	th := newTestThread(e)
	ev := NewEvent(EventAutoReset, false)

	wb, status := e.SelectOn(th, []Object{ev}, WaitInterruptible, time.Time{}, true, 0xAAAA, nil)
	require.NotNil(t, wb)
	assert.Equal(t, StatusPending, status)

	_, apcStatus := e.QueueAPC(th, nil, APCCall{Kind: APCVirtualAlloc}, nil)
	assert.Equal(t, StatusSuccess, apcStatus)

	require.Len(t, tr.wakes, 1)
	assert.Equal(t, StatusUserAPC, tr.wakes[0].status)
	assert.Equal(t, uint64(0xAAAA), tr.wakes[0].cookie)

	apc := e.DequeueAPC(th, true)
	require.NotNil(t, apc)
	assert.Equal(t, APCVirtualAlloc, apc.Call.Kind)
}

func TestCoalescedAsyncIOAPC(t *testing.T) {
	e, tr := newTestEngine()
	th := newTestThread(e)
	owner := NewEvent(EventManualReset, false)

	first, status := e.QueueAPC(th, owner, APCCall{Kind: APCAsyncIO, Args: AsyncIOArgs{Status: 1}}, nil)
	require.Equal(t, StatusSuccess, status)

	joiner := newTestThread(e)
	jwb, jstatus := e.SelectOn(joiner, []Object{first}, 0, time.Time{}, true, 0x77, nil)
	require.NotNil(t, jwb)
	assert.Equal(t, StatusPending, jstatus)

	// Same owner, same kind: the second enqueue must coalesce the first
	// out of the queue before appending itself (spec section 4.4
	// "Enqueue"; scenario 4), so only the latest completion is delivered.
	second, status := e.QueueAPC(th, owner, APCCall{Kind: APCAsyncIO, Args: AsyncIOArgs{Status: 2}}, nil)
	require.Equal(t, StatusSuccess, status)

	assert.True(t, first.executed)
	assert.False(t, second.executed)

	require.Len(t, tr.wakes, 1)
	assert.Equal(t, uint64(0x77), tr.wakes[0].cookie)

	a := e.DequeueAPC(th, false)
	require.NotNil(t, a)
	assert.Equal(t, second, a)
	assert.Nil(t, e.DequeueAPC(th, false))
}

func TestTimeoutPrecedenceOverSignal(t *testing.T) {
	e, tr := newTestEngine()
	th := newTestThread(e)
	e1 := NewEvent(EventManualReset, false)
	e2 := NewEvent(EventManualReset, false)

	base := time.Unix(1000, 0)
	restore := setClock(base)
	defer restore()

	wb, status := e.SelectOn(th, []Object{e1, e2}, 0, base.Add(10*time.Millisecond), false, 1, nil)
	require.NotNil(t, wb)
	assert.Equal(t, StatusPending, status)

	now = func() time.Time { return base.Add(10 * time.Millisecond) }
	e.Tick(base.Add(10 * time.Millisecond))

	require.Len(t, tr.wakes, 1)
	assert.Equal(t, StatusTimeout, tr.wakes[0].status)

	// A later signal finds no wait installed; it is simply left signaled
	// on the object for the next waiter.
	e1.Set(e)
	assert.True(t, e1.Signaled(th))
}

func TestSuspendDefersLockButAllowsSystemAPC(t *testing.T) {
	e, tr := newTestEngine()
	th := newTestThread(e)
	m := NewMutex(nil)
	m.Satisfied(th) // pre-signal by giving it an owner, then release so it's free
	m.Release(e, th)

	e.SuspendThread(th, false)

	wb, status := e.SelectOn(th, []Object{m}, WaitInterruptible, time.Time{}, true, 5, nil)
	require.NotNil(t, wb)
	assert.Equal(t, StatusPending, status)

	_, apcStatus := e.QueueAPC(th, nil, APCCall{Kind: APCVirtualFree}, nil)
	assert.Equal(t, StatusSuccess, apcStatus)

	require.Len(t, tr.wakes, 1)
	assert.Equal(t, StatusUserAPC, tr.wakes[0].status)
	assert.Nil(t, m.owner)
}
