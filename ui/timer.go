package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the time since it was started. It can be restarted for every run or phase and
// keeps showing the final time after it is stopped
type timer struct {
	showMillis bool
	startTime  time.Time
	running    bool
	mtx        *sync.Mutex
	text       *canvas.Text
}

func newTimer(showMillis bool) *timer {
	return &timer{
		showMillis: showMillis,
		mtx:        &sync.Mutex{},
		text:       canvas.NewText(formatElapsed(0, showMillis), nil),
	}
}

// Start restarts the timer from start
func (t *timer) Start(start time.Time) {
	t.mtx.Lock()
	t.startTime = start
	t.running = true
	t.mtx.Unlock()
}

// Stop freezes the timer at its current value
func (t *timer) Stop() {
	t.mtx.Lock()
	t.running = false
	t.mtx.Unlock()
}

// Go refreshes the text until done is closed
func (t *timer) Go(done <-chan struct{}) {
	d := time.Second
	if t.showMillis {
		d = 64 * time.Millisecond
	}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			t.mtx.Lock()
			running, start := t.running, t.startTime
			t.mtx.Unlock()
			if !running {
				continue
			}

			text := formatElapsed(time.Since(start), t.showMillis)
			fyne.Do(func() {
				t.text.Text = text
				t.text.Refresh()
			})
		}
	}()
}

func formatElapsed(elapsed time.Duration, showMillis bool) string {
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	if showMillis {
		millis := int(elapsed.Milliseconds()) % 1000
		return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
