package controler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer decides whether a planned transfer may start
type Confirmer interface {
	Confirm(ctx context.Context, plan *Plan) (bool, error)
}

// AutoConfirm answers every confirmation with its own value
type AutoConfirm bool

func (a AutoConfirm) Confirm(context.Context, *Plan) (bool, error) {
	return bool(a), nil
}

// PromptConfirmer asks on Out and reads the answer from In.
// An empty answer means yes.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p *PromptConfirmer) Confirm(ctx context.Context, plan *Plan) (bool, error) {
	fmt.Fprint(p.Out, "Proceed with download? [y]/n: ")

	// A blocked read cannot be interrupted. On cancellation the reader
	// goroutine outlives Confirm until In yields a line or is closed, and
	// the buffered channels let it exit without a receiver.
	answer := make(chan string, 1)
	failed := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			failed <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-failed:
		return false, err
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
