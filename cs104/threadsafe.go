// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import (
	"sync"
	"time"

	"github.com/lyxer123/myIEC60870-5-104/asdu"
)

// ThreadSafeConnection serializes the four cooperative entry points behind
// a mutex for hosts that want to call them from multiple goroutines,
// adapting cs101.Client's rwMux sync.RWMutex pattern (cs101/client.go) to
// this package's single-threaded-cooperative core rather than replacing
// it — the core stays cooperative; this wrapper supplies the
// serialization spec.md §5 says is the host's responsibility ("An
// implementation may host the engine on its own thread, but must
// serialize these four entry points with respect to each other").
type ThreadSafeConnection struct {
	mu sync.Mutex
	m  *Master
}

// NewThreadSafeMaster wraps a freshly built Master for concurrent use.
func NewThreadSafeMaster(trans Transport, handler Handler, opt *ClientOption) (*ThreadSafeConnection, error) {
	m, err := NewMaster(trans, handler, opt)
	if err != nil {
		return nil, err
	}
	return &ThreadSafeConnection{m: m}, nil
}

func (t *ThreadSafeConnection) OnConnectTCP() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.OnConnectTCP()
}

func (t *ThreadSafeConnection) OnDisconnectTCP() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.OnDisconnectTCP()
}

func (t *ThreadSafeConnection) OnTimerSecond() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.OnTimerSecond()
}

func (t *ThreadSafeConnection) PacketReadyTCP(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m.PacketReadyTCP(data)
}

func (t *ThreadSafeConnection) SolicitGI() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.SolicitGI()
}

func (t *ThreadSafeConnection) SolicitGroup(group int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.SolicitGroup(group)
}

func (t *ThreadSafeConnection) SolicitCounterInterrogation(request, freeze byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.SolicitCounterInterrogation(request, freeze)
}

func (t *ThreadSafeConnection) ClockSync(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.ClockSync(now)
}

func (t *ThreadSafeConnection) SendCommand(obj asdu.InformationObject, typeID asdu.TypeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.SendCommand(obj, typeID)
}

func (t *ThreadSafeConnection) TestCommand(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.TestCommand(now)
}

func (t *ThreadSafeConnection) Stats() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.Stats()
}

func (t *ThreadSafeConnection) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.State()
}
