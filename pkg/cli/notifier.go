package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// notifierSeenLimit bounds the dedup window. watch sessions run for days;
// once the limit is hit the oldest tag becomes eligible again.
const notifierSeenLimit = 256

// terminalNotifier renders pushed notifications as highlighted terminal
// lines with a bell, deduplicated by notification tag.
type terminalNotifier struct {
	out io.Writer

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func newTerminalNotifier(out io.Writer) *terminalNotifier {
	return &terminalNotifier{
		out:  out,
		seen: make(map[string]struct{}),
	}
}

func (n *terminalNotifier) Show(ctx context.Context, notif *model.Notification) error {
	tag := notif.Tag()

	n.mu.Lock()
	if _, ok := n.seen[tag]; ok {
		n.mu.Unlock()
		return nil
	}
	n.seen[tag] = struct{}{}
	n.order = append(n.order, tag)
	if len(n.order) > notifierSeenLimit {
		delete(n.seen, n.order[0])
		n.order = n.order[1:]
	}
	n.mu.Unlock()

	title := color.New(color.Bold, color.FgYellow).Sprint(notif.Title)
	if _, err := fmt.Fprintf(n.out, "\a%s %s\n", title, notif.Message); err != nil {
		return err
	}
	return nil
}
