package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ExecRecorder captures audio by running an external command that writes
// raw PCM to stdout, such as arecord or sox. The command is interrupted
// on Stop.
type ExecRecorder struct {
	Command []string
}

func (r ExecRecorder) Start(ctx context.Context) (Capture, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("no record command configured")
	}

	// The capture outlives the key press that started it, so it is not
	// bound to ctx.
	cmd := exec.Command(r.Command[0], r.Command[1:]...)
	c := &execCapture{cmd: cmd, done: make(chan error, 1)}
	cmd.Stdout = &c.buf
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("run %s: %w", r.Command[0], err)
	}
	go func() {
		err := cmd.Wait()
		if err != nil && stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		c.done <- err
	}()
	return c, nil
}

type execCapture struct {
	cmd  *exec.Cmd
	done chan error
	buf  lockedBuffer

	once  sync.Once
	audio []byte
	err   error
}

// Stop is safe to call more than once; later calls return the first
// result.
func (c *execCapture) Stop() ([]byte, error) {
	c.once.Do(func() { c.audio, c.err = c.stop() })
	return c.audio, c.err
}

func (c *execCapture) stop() ([]byte, error) {
	interrupted := false
	if err := c.cmd.Process.Signal(os.Interrupt); err == nil {
		interrupted = true
	} else if !errors.Is(err, os.ErrProcessDone) {
		return nil, fmt.Errorf("interrupt recorder: %w", err)
	}

	err := <-c.done
	var exitErr *exec.ExitError
	if err != nil && !(interrupted && errors.As(err, &exitErr)) {
		return nil, err
	}
	return c.buf.Bytes(), nil
}

// lockedBuffer is written by the exec copy goroutine and read by Stop.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}
