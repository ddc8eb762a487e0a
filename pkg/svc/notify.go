package svc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// Notifier is anything that can announce a new message
type Notifier interface {
	Notify(ctx context.Context, message chat.Message) error
}

// BellNotifier rings the terminal bell
type BellNotifier struct {
	Out io.Writer
}

// Notify writes BEL to Out
func (n *BellNotifier) Notify(ctx context.Context, message chat.Message) error {
	_, err := io.WriteString(n.Out, "\a")
	return err
}

// Notifiers fans a notification out to every notifier, in order
type Notifiers []Notifier

// Notify calls every notifier even if some fail and reports all failures
func (n Notifiers) Notify(ctx context.Context, message chat.Message) error {
	var failures []string
	for _, notifier := range n {
		if err := notifier.Notify(ctx, message); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("notifying message %s: %s", message.ID, strings.Join(failures, "; "))
	}
	return nil
}
