package discovery

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// outputPipe gives a unit a real file to use as os.Stdout. The interpreter only
// rebinds os.Stdout to a *os.File, so writes through it would otherwise reach the
// process's own standard output.
type outputPipe struct {
	r, w   *os.File
	sink   io.Writer
	marker []byte
	synced chan struct{}
	done   chan struct{}
}

func newOutputPipe(sink io.Writer) (*outputPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open output pipe: %w", err)
	}

	p := &outputPipe{
		r:      r,
		w:      w,
		sink:   sink,
		marker: []byte("\x00jet-sync:" + uuid.NewString() + "\x00"),
		synced: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.pump()
	return p, nil
}

// File is the write end handed to the interpreter
func (p *outputPipe) File() *os.File {
	return p.w
}

// Sync returns once everything written before the call has reached the sink
func (p *outputPipe) Sync() {
	if _, err := p.w.Write(p.marker); err != nil {
		return
	}
	select {
	case <-p.synced:
	case <-p.done:
	}
}

// Close stops forwarding after the remaining output was delivered
func (p *outputPipe) Close() error {
	err := p.w.Close()
	<-p.done
	if rerr := p.r.Close(); err == nil {
		err = rerr
	}
	return err
}

func (p *outputPipe) pump() {
	defer close(p.done)

	buf := make([]byte, 32*1024)
	var pending []byte
	for {
		n, err := p.r.Read(buf)
		if n > 0 {
			pending = p.forward(append(pending, buf[:n]...))
		}
		if err != nil {
			p.emit(pending)
			return
		}
	}
}

// forward delivers data up to each sync marker and acknowledges it. A tail that
// could be the start of a marker is held back and returned.
func (p *outputPipe) forward(data []byte) []byte {
	for {
		i := bytes.Index(data, p.marker)
		if i < 0 {
			break
		}
		p.emit(data[:i])
		data = data[i+len(p.marker):]
		p.synced <- struct{}{}
	}

	keep := partialSuffix(data, p.marker)
	p.emit(data[:len(data)-keep])
	return append([]byte(nil), data[len(data)-keep:]...)
}

func (p *outputPipe) emit(data []byte) {
	if len(data) > 0 {
		_, _ = p.sink.Write(data)
	}
}

// partialSuffix returns the length of the longest proper prefix of marker that data ends with
func partialSuffix(data, marker []byte) int {
	for k := min(len(data), len(marker)-1); k > 0; k-- {
		if bytes.HasSuffix(data, marker[:k]) {
			return k
		}
	}
	return 0
}
