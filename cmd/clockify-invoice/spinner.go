package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// spinner is a cosmetic progress indicator shown while a sync runs. It
// carries no data and is always joined before the command returns.
type spinner struct {
	w    io.Writer
	done chan struct{}
	wg   sync.WaitGroup
}

func startSpinner(w io.Writer) *spinner {
	s := &spinner{w: w, done: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		frames := `|/-\`
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.done:
				fmt.Fprint(s.w, "\r \r")
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%c", frames[i%len(frames)])
			}
		}
	}()
	return s
}

func (s *spinner) stop() {
	close(s.done)
	s.wg.Wait()
}
