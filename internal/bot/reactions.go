package bot

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type reactionKey struct {
	MessageID string
	UserID    string
	Emoji     string
}

// reactionRegistry lets command handlers block until a specific user
// reacts to a specific message with a specific emoji.
type reactionRegistry struct {
	mu      sync.Mutex
	waiters map[reactionKey]chan struct{}
}

func newReactionRegistry() *reactionRegistry {
	return &reactionRegistry{waiters: map[reactionKey]chan struct{}{}}
}

// Wait blocks until the reaction arrives, the timeout passes, or the
// context is cancelled. It reports whether the reaction arrived.
func (r *reactionRegistry) Wait(ctx context.Context, key reactionKey, timeout time.Duration) bool {
	ch := make(chan struct{})

	r.mu.Lock()
	r.waiters[key] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.waiters, key)
		r.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Notify resolves a pending wait if one matches the event.
func (r *reactionRegistry) Notify(event *discordgo.MessageReactionAdd) {
	if event == nil || event.MessageReaction == nil {
		return
	}
	key := reactionKey{
		MessageID: event.MessageID,
		UserID:    event.UserID,
		Emoji:     event.Emoji.Name,
	}

	r.mu.Lock()
	ch, ok := r.waiters[key]
	if ok {
		delete(r.waiters, key)
	}
	r.mu.Unlock()

	if ok {
		close(ch)
	}
}
