package discovery

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// lockedBuffer is written by the pump goroutine and read by the test
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestOutputPipe_SyncDeliversEarlierWrites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var sink lockedBuffer
	p, err := newOutputPipe(&sink)
	require.NoError(t, err)

	_, err = p.File().WriteString("first\n")
	require.NoError(t, err)
	p.Sync()
	assert.Equal(t, "first\n", sink.String())

	big := strings.Repeat("x", 200*1024)
	_, err = p.File().WriteString(big)
	require.NoError(t, err)
	p.Sync()
	assert.Equal(t, "first\n"+big, sink.String())

	require.NoError(t, p.Close())
}

func TestOutputPipe_CloseFlushes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var sink lockedBuffer
	p, err := newOutputPipe(&sink)
	require.NoError(t, err)

	_, err = p.File().WriteString("tail")
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Equal(t, "tail", sink.String())
}

func TestOutputPipe_Forward(t *testing.T) {
	var sink bytes.Buffer
	p := &outputPipe{
		sink:   &sink,
		marker: []byte("<sync>"),
		synced: make(chan struct{}, 4),
	}

	t.Run("marker split across reads", func(t *testing.T) {
		sink.Reset()
		rest := p.forward([]byte("abc<sy"))
		assert.Equal(t, "abc", sink.String())
		assert.Equal(t, []byte("<sy"), rest)

		rest = p.forward(append(rest, []byte("nc>def")...))
		assert.Equal(t, "abcdef", sink.String())
		assert.Empty(t, rest)
		assert.Len(t, p.synced, 1)
		<-p.synced
	})

	t.Run("look-alike is released", func(t *testing.T) {
		sink.Reset()
		rest := p.forward([]byte("a<s"))
		rest = p.forward(append(rest, []byte("x>")...))
		assert.Equal(t, "a<sx>", sink.String())
		assert.Empty(t, rest)
		assert.Len(t, p.synced, 0)
	})

	t.Run("two markers in one read", func(t *testing.T) {
		sink.Reset()
		rest := p.forward([]byte("1<sync>2<sync>"))
		assert.Equal(t, "12", sink.String())
		assert.Empty(t, rest)
		assert.Len(t, p.synced, 2)
		<-p.synced
		<-p.synced
	})
}

func TestPartialSuffix(t *testing.T) {
	marker := []byte("<sync>")

	tests := []struct {
		data string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abc<", 1},
		{"abc<syn", 4},
		{"<sync", 5},
		{"<sync>", 0},
		{"<", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, partialSuffix([]byte(tt.data), marker), tt.data)
	}
}
