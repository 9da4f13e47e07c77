package utils

import (
	"sync"
	"time"
)

// ConnState tracks connectivity to the external automation endpoint. It is
// only updated by the explicit health-check and heartbeat paths; ordinary
// fire-and-forget sends never touch it.
type ConnState struct {
	mutex     sync.RWMutex
	state     State
	lastCheck time.Time
	lastError error
}

type State int

const (
	StateUnknown State = iota
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func NewConnState() *ConnState {
	return &ConnState{state: StateUnknown}
}

func (c *ConnState) RecordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state = StateConnected
	c.lastCheck = time.Now()
	c.lastError = nil
}

func (c *ConnState) RecordFailure(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state = StateError
	c.lastCheck = time.Now()
	c.lastError = err
}

func (c *ConnState) State() State {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state
}

func (c *ConnState) LastChecked() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastCheck
}

func (c *ConnState) LastError() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastError
}
