package mailer

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Dispatcher sends the pair of notification emails through the selected
// backend. Both sends run concurrently; they are independent at-most-once
// operations with no ordering dependency between them.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher wraps the backend selected at startup.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch verifies the transport, then sends the team notification and the
// user confirmation. Failures are aggregated into a single error: the caller
// sees all-or-nothing, and a partial delivery (one sent, one failed) is
// called out in the server log only.
func (d *Dispatcher) Dispatch(ctx context.Context, team, user *Message) error {
	if err := d.sender.Verify(ctx); err != nil {
		return fmt.Errorf("transport verify: %w", err)
	}

	var wg sync.WaitGroup
	var teamErr, userErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		teamErr = d.sender.Send(ctx, team)
	}()
	go func() {
		defer wg.Done()
		userErr = d.sender.Send(ctx, user)
	}()
	wg.Wait()

	switch {
	case teamErr != nil && userErr != nil:
		return fmt.Errorf("both sends failed: team: %v; user: %w", teamErr, userErr)
	case teamErr != nil:
		log.Printf("[Dispatcher] Partial delivery: user confirmation sent, team notification failed: %v", teamErr)
		return fmt.Errorf("team notification: %w", teamErr)
	case userErr != nil:
		log.Printf("[Dispatcher] Partial delivery: team notification sent, user confirmation failed: %v", userErr)
		return fmt.Errorf("user confirmation: %w", userErr)
	}
	return nil
}
