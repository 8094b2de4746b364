package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// stderr receives spinner frames.
var stderr io.Writer = os.Stderr

var spinnerFrames = []string{"◴", "◷", "◶", "◵"}

const spinnerInterval = 100 * time.Millisecond

// spinner draws a turning circle and the elapsed time on stderr until it is
// stopped or its context ends.
type spinner struct {
	message string
	started time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	stopped atomic.Bool
	mu      sync.Mutex
}

func newSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{message: message, ctx: ctx, cancel: cancel}
}

// Start begins drawing in the background.
func (s *spinner) Start() {
	s.started = time.Now()
	s.wg.Add(1)
	go s.run()
}

func (s *spinner) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.write("\r\033[K")
			return
		case <-ticker.C:
			s.write("\r" + s.frame(i))
		}
	}
}

func (s *spinner) frame(i int) string {
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s",
		styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]),
		StyleDim.Render(s.message),
		StyleDim.Render(elapsed.String()))
}

func (s *spinner) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(stderr, text)
}

// Stop clears the line and waits for the drawing goroutine. It is safe to
// call more than once.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
	})
	s.wg.Wait()
}

// StopWithError stops the spinner and prints message as an error.
func (s *spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended before Stop.
func (s *spinner) Cancelled() bool {
	return !s.stopped.Load() && s.ctx.Err() != nil
}
