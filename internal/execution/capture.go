package execution

import (
	"bytes"
	"sync"

	"jet/internal/domain"
)

// capture routes a unit's standard output into a buffer for the duration of one call
type capture struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	leave func()
	once  sync.Once
}

func openCapture(host domain.Host, mode domain.Mode) *capture {
	c := &capture{}
	c.leave = host.Enter(c, mode)
	return c
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Close restores the unit's idle output and returns what was written. It may be
// called more than once.
func (c *capture) Close() string {
	c.once.Do(c.leave)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
