// Package bus provides a generic in-process pub/sub bus with keyed and
// global subscriptions.
package bus

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

type Message[K comparable, M any] struct {
	Key     K
	Message M
}

type Publisher[M any] func(ctx context.Context, msg M)
type Subscriber[K comparable, M any] func(ctx context.Context) <-chan Message[K, M]

// subscription pairs the delivery channel with a done signal. done lets the
// worker abandon a blocked delivery when the subscriber cancels; the data
// channel itself is closed by the worker only, so delivery never races a
// close.
type subscription[K comparable, M any] struct {
	ch   chan Message[K, M]
	keys []K
	done chan struct{}
}

type Bus[K comparable, M any] struct {
	log     *zap.Logger
	ready   chan struct{}
	stopped chan struct{}

	ch         chan Message[K, M]
	unsub      chan *subscription[K, M]
	keySubs    *xsync.MapOf[K, map[*subscription[K, M]]struct{}]
	globalSubs *xsync.MapOf[*subscription[K, M], struct{}]
}

func NewBus[K comparable, M any](logger *zap.Logger) *Bus[K, M] {
	return &Bus[K, M]{
		log:     logger,
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),

		ch:         make(chan Message[K, M]),
		unsub:      make(chan *subscription[K, M]),
		keySubs:    xsync.NewMapOf[K, map[*subscription[K, M]]struct{}](),
		globalSubs: xsync.NewMapOf[*subscription[K, M], struct{}](),
	}
}

// Start launches the delivery worker. It returns immediately; delivery stops
// when ctx is cancelled.
func (b *Bus[K, M]) Start(ctx context.Context) error {
	go func() {
		defer close(b.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-b.ch:
				b.process(ctx, msg)
			case sub := <-b.unsub:
				b.remove(sub)
				close(sub.ch)
			}
		}
	}()
	close(b.ready)
	return nil
}

func (b *Bus[K, M]) Ready() <-chan struct{} {
	return b.ready
}

func (b *Bus[K, M]) Publish(ctx context.Context, key K, msg M) {
	select {
	case <-ctx.Done():
		return
	case b.ch <- Message[K, M]{key, msg}:
	}
}

func (b *Bus[K, M]) CreatePublisher(key K) Publisher[M] {
	return func(ctx context.Context, msg M) {
		b.Publish(ctx, key, msg)
	}
}

func (b *Bus[K, M]) CreateSubscriber(key ...K) Subscriber[K, M] {
	return func(ctx context.Context) <-chan Message[K, M] {
		return b.Subscribe(ctx, key...)
	}
}

func (b *Bus[K, M]) process(ctx context.Context, msg Message[K, M]) {
	b.globalSubs.Range(func(sub *subscription[K, M], _ struct{}) bool {
		return b.deliver(ctx, sub, msg)
	})
	subs, ok := b.keySubs.Load(msg.Key)
	if !ok {
		return
	}
	for sub := range subs {
		if !b.deliver(ctx, sub, msg) {
			return
		}
	}
}

func (b *Bus[K, M]) deliver(ctx context.Context, sub *subscription[K, M], msg Message[K, M]) bool {
	select {
	case <-ctx.Done():
		return false
	case <-sub.done:
		// cancelled subscriber, skip
		return true
	case sub.ch <- msg:
		return true
	}
}

func (b *Bus[K, M]) remove(sub *subscription[K, M]) {
	if len(sub.keys) == 0 {
		b.globalSubs.Delete(sub)
		return
	}
	for _, k := range sub.keys {
		b.keySubs.Compute(k, func(val map[*subscription[K, M]]struct{}, ok bool) (map[*subscription[K, M]]struct{}, bool) {
			delete(val, sub)
			return val, false
		})
	}
}

// Subscribe returns a channel receiving messages for the given keys, or for
// every key when none are given. The channel closes when ctx is cancelled.
func (b *Bus[K, M]) Subscribe(ctx context.Context, key ...K) <-chan Message[K, M] {
	sub := &subscription[K, M]{
		ch:   make(chan Message[K, M]),
		keys: key,
		done: make(chan struct{}),
	}
	if len(key) == 0 {
		b.globalSubs.Store(sub, struct{}{})
	} else {
		for _, k := range key {
			b.keySubs.Compute(k, func(val map[*subscription[K, M]]struct{}, ok bool) (map[*subscription[K, M]]struct{}, bool) {
				if !ok {
					val = make(map[*subscription[K, M]]struct{}, 8)
				}
				val[sub] = struct{}{}
				return val, false
			})
		}
	}
	go func() {
		<-ctx.Done()
		close(sub.done)
		select {
		case b.unsub <- sub:
		case <-b.stopped:
			// worker gone, nothing delivers anymore
			b.remove(sub)
			close(sub.ch)
		}
	}()
	return sub.ch
}
