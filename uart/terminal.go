package uart

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// errInputClosed stops the terminal when the local input reaches EOF.
var errInputClosed = errors.New("input closed")

// RunTerminal bridges a local console to sess: every line read from in is
// sent with WriteLine and every line received from the port is written to
// out followed by a newline.
//
// RunTerminal returns nil when in reaches EOF or the port reaches EOF, and
// ctx.Err() when ctx is cancelled. A blocked read on in is abandoned rather
// than waited for, since most console readers cannot be interrupted.
func RunTerminal(ctx context.Context, sess *Session, in io.Reader, out io.Writer) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}

	g, gctx := errgroup.WithContext(ctx)
	lines := scanInput(gctx, in)

	g.Go(func() error {
		var writeErr error
		err := sess.ReadLines(gctx, func(line string) {
			if writeErr == nil {
				_, writeErr = fmt.Fprintln(out, line)
			}
		})
		if writeErr != nil {
			return errors.Wrap(writeErr, "failed to write to console")
		}
		if err == nil {
			// Port EOF ends the session.
			return errInputClosed
		}
		return err
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case l, ok := <-lines:
				if !ok {
					return errInputClosed
				}
				if l.err != nil {
					return errors.Wrap(l.err, "failed to read console input")
				}
				if err := sess.WriteLine(l.line); err != nil {
					return err
				}
			}
		}
	})

	sess.logInfo("terminal started")
	err := g.Wait()
	sess.logInfo("terminal stopped")

	if errors.Is(err, errInputClosed) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type inputLine struct {
	line string
	err  error
}

// scanInput reads lines from in on its own goroutine. The channel is closed
// at EOF or once ctx is done.
func scanInput(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	send := func(l inputLine) bool {
		select {
		case lines <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if !send(inputLine{line: strings.TrimRight(scanner.Text(), "\r")}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return lines
}
