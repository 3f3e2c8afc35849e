package engine

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// inflatePump adapts the flate reader's pull model to the engine contract's
// push model. The reader runs on its own goroutine and pulls compressed
// bytes from the input window of the current step; between steps it parks
// either starved (waiting for input) or backpressured (pending output at the
// limit), so decoding never runs ahead of the caller and memory stays
// bounded.
//
// The goroutine only touches the input window under the pump mutex and only
// while a step has the window installed; the window is detached before run
// returns, so caller buffers are never retained across calls.
type inflatePump struct {
	mu   sync.Mutex
	cond *sync.Cond

	win     []byte
	winOff  int
	feeding bool
	starved bool

	pending []byte
	limit   int

	finished bool
	err      error
	closed   bool

	fr io.ReadCloser
}

func newInflatePump(dict []byte, readChunk, pendingLimit int) *inflatePump {
	p := &inflatePump{limit: pendingLimit}
	p.cond = sync.NewCond(&p.mu)
	if dict != nil {
		p.fr = flate.NewReaderDict(p, dict)
	} else {
		p.fr = flate.NewReader(p)
	}
	go p.loop(readChunk)
	return p
}

// loop decodes until the stream ends, errors, or the pump is closed.
func (p *inflatePump) loop(readChunk int) {
	buf := make([]byte, readChunk)
	for {
		n, err := p.fr.Read(buf)

		p.mu.Lock()
		if n > 0 {
			for len(p.pending) >= p.limit && !p.closed {
				p.cond.Wait()
			}
			p.pending = append(p.pending, buf[:n]...)
		}
		if err != nil || p.closed {
			p.finished = true
			if err != nil && err != io.EOF {
				p.err = err
			}
			p.cond.Broadcast()
			p.mu.Unlock()
			return
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// Read implements the byte source the flate reader pulls from. It blocks
// until the current step window has bytes or the pump is closed.
func (p *inflatePump) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed {
			return 0, io.EOF
		}
		if p.feeding && p.winOff < len(p.win) {
			n := copy(b, p.win[p.winOff:])
			p.winOff += n
			return n, nil
		}
		p.starved = true
		p.cond.Broadcast()
		p.cond.Wait()
	}
}

// ReadByte keeps the flate reader from wrapping the source in a bufio.Reader
// that would read ahead past the deflate body.
func (p *inflatePump) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed {
			return 0, io.EOF
		}
		if p.feeding && p.winOff < len(p.win) {
			b := p.win[p.winOff]
			p.winOff++
			return b, nil
		}
		p.starved = true
		p.cond.Broadcast()
		p.cond.Wait()
	}
}

// run installs in as the step's input window, lets the decoder make as much
// progress as the out buffer allows, and reports honest byte accounting:
// consumed covers only bytes the decoder actually pulled, done is true once
// the deflate body ended and all pending output was delivered.
func (p *inflatePump) run(in, out []byte) (consumed, produced int, done bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.win = in
	p.winOff = 0
	p.feeding = true
	p.starved = false
	p.cond.Broadcast()

	for {
		if produced < len(out) && len(p.pending) > 0 {
			n := copy(out[produced:], p.pending)
			produced += n
			p.pending = p.pending[n:]
			if len(p.pending) == 0 {
				p.pending = nil
			}
			p.cond.Broadcast()
			continue
		}
		if p.finished && len(p.pending) == 0 {
			done = true
			err = p.err
			break
		}
		if produced == len(out) {
			break
		}
		if p.starved && len(p.pending) == 0 {
			break
		}
		p.cond.Wait()
	}

	consumed = p.winOff
	p.win = nil
	p.feeding = false
	return consumed, produced, done, err
}

// close unblocks the decoder goroutine and lets it exit. Any undelivered
// pending output is discarded.
func (p *inflatePump) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
