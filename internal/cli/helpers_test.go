package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const validScore = `grid: [{numerator: 4, denominator: 4, measure_count: 2}]
line_breaks: [{time: 0}, {time: 1024}]
staves:
  - name: rh
    notes:
      - {time: 0, duration: 512, pitch: 40, hand: "<"}
      - {time: 512, duration: 768, pitch: 44, hand: "<"}
`

const outOfRangeScore = `grid: [{numerator: 4, denominator: 4, measure_count: 1}]
staves:
  - notes:
      - {time: 4096, duration: 256, pitch: 40, hand: "<"}
`

const schemaInvalidScore = `grid: [{numerator: 4, denominator: 4, measure_count: 1}]
staves:
  - notes:
      - {time: 0, duration: 256, pitch: 99, hand: "<"}
`

func writeTestScore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "score.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// lockedBuffer is a bytes.Buffer safe for a writer and a polling reader.
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
