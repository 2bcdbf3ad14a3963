package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	signOutKeyPrefix = "session:signout:" // sign-out stamp: session:signout:{uid} -> unix seconds
	eventsChannel    = "session:events"   // pub/sub channel for sign-out events

	// ID tokens live an hour; stamps are kept well past that.
	signOutStampTTL = 24 * time.Hour
)

// SignOutEvent is broadcast when an identity signs out. Watchers must treat
// it as "relinquish access", not as an error.
type SignOutEvent struct {
	UID         string    `json:"uid"`
	SignedOutAt time.Time `json:"signed_out_at"`
}

// SessionRevoker tears down the identity provider's refresh tokens.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, uid string) error
}

// Broker is the session gateway: it owns sign-out and the shared view of
// "is this identity still signed in". It is constructed at startup, injected
// into whatever needs session state, and closed on shutdown. Sign-out events
// fan out to in-process watchers and across instances over Redis pub/sub.
type Broker struct {
	rdb *redis.Client
	ids SessionRevoker
	now func() time.Time

	mu       sync.Mutex
	watchers map[string]map[int]chan SignOutEvent
	nextID   int

	sub  *redis.PubSub
	done chan struct{}
}

func NewBroker(rdb *redis.Client, ids SessionRevoker) *Broker {
	b := &Broker{
		rdb:      rdb,
		ids:      ids,
		now:      time.Now,
		watchers: make(map[string]map[int]chan SignOutEvent),
		done:     make(chan struct{}),
	}

	b.sub = rdb.Subscribe(context.Background(), eventsChannel)
	go b.listen()

	return b
}

// SignOut revokes the identity's refresh tokens, stamps the revocation and
// publishes the event. Every watcher of the identity, on any instance,
// observes the transition.
func (b *Broker) SignOut(ctx context.Context, uid string) error {
	if err := b.ids.RevokeSessions(ctx, uid); err != nil {
		return fmt.Errorf("sign out %s: %w", uid, err)
	}

	now := b.now()
	if err := b.rdb.Set(ctx, signOutKey(uid), now.Unix(), signOutStampTTL).Err(); err != nil {
		return fmt.Errorf("stamp sign-out for %s: %w", uid, err)
	}

	payload, err := json.Marshal(SignOutEvent{UID: uid, SignedOutAt: now})
	if err != nil {
		return fmt.Errorf("encode sign-out event: %w", err)
	}
	if err := b.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish sign-out for %s: %w", uid, err)
	}

	return nil
}

// SignedOutAfter reports whether the identity signed out after the given
// token issue time, i.e. whether a token with that issue time is stale.
func (b *Broker) SignedOutAfter(ctx context.Context, uid string, issuedAt int64) (bool, error) {
	val, err := b.rdb.Get(ctx, signOutKey(uid)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read sign-out stamp for %s: %w", uid, err)
	}

	stamp, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse sign-out stamp for %s: %w", uid, err)
	}

	return issuedAt < stamp, nil
}

// Watch subscribes to sign-out events for one identity. The returned cancel
// func must be called when the watcher goes away.
func (b *Broker) Watch(uid string) (<-chan SignOutEvent, func()) {
	ch := make(chan SignOutEvent, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.watchers[uid] == nil {
		b.watchers[uid] = make(map[int]chan SignOutEvent)
	}
	b.watchers[uid][id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.watchers[uid]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(b.watchers, uid)
			}
		}
	}

	return ch, cancel
}

// Close tears down the pub/sub subscription and stops the listener.
func (b *Broker) Close() error {
	close(b.done)
	return b.sub.Close()
}

// listen forwards published sign-out events to local watchers. Local
// watchers are notified through this path too, so a SignOut on this instance
// is observed exactly once.
func (b *Broker) listen() {
	ch := b.sub.Channel()
	for {
		select {
		case <-b.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var ev SignOutEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[warn] session: bad sign-out event: %v", err)
				continue
			}
			b.notify(ev)
		}
	}
}

func (b *Broker) notify(ev SignOutEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.watchers[ev.UID] {
		select {
		case ch <- ev:
		default: // watcher is behind; it re-checks on its next request anyway
		}
	}
}

func signOutKey(uid string) string {
	return signOutKeyPrefix + uid
}
