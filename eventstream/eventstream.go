/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package eventstream is an in-process publish/subscribe broker. The actor
// system publishes its lifecycle events, dead letters and backpressure
// transitions through it.
package eventstream

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Stream is a topic based broker
type Stream interface {
	// AddSubscriber registers a new subscriber
	AddSubscriber() Subscriber
	// RemoveSubscriber unsubscribes sub from every topic and shuts it down
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers of topic
	SubscribersCount(topic string) int
	// Subscribe adds sub to topic
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe removes sub from topic
	Unsubscribe(sub Subscriber, topic string)
	// Publish buffers msg in every subscriber of topic
	Publish(topic string, msg any)
	// Close shuts every subscriber down. The stream can be used again
	// afterwards.
	Close()
}

// EventsStream implements Stream
type EventsStream struct {
	mu          sync.RWMutex
	subscribers mapset.Set[Subscriber]
	topics      map[string]mapset.Set[Subscriber]
}

var _ Stream = (*EventsStream)(nil)

// New creates an EventsStream
func New() *EventsStream {
	return &EventsStream{
		subscribers: mapset.NewSet[Subscriber](),
		topics:      make(map[string]mapset.Set[Subscriber]),
	}
}

// AddSubscriber registers a new subscriber
func (b *EventsStream) AddSubscriber() Subscriber {
	sub := newSubscriber()
	b.subscribers.Add(sub)
	return sub
}

// RemoveSubscriber unsubscribes sub from every topic and shuts it down
func (b *EventsStream) RemoveSubscriber(sub Subscriber) {
	for _, topic := range sub.Topics() {
		b.Unsubscribe(sub, topic)
	}
	b.subscribers.Remove(sub)
	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers of topic
func (b *EventsStream) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if subs, ok := b.topics[topic]; ok {
		return subs.Cardinality()
	}
	return 0
}

// Subscribe adds sub to topic. An inactive subscriber is ignored.
func (b *EventsStream) Subscribe(sub Subscriber, topic string) {
	if !sub.Active() {
		return
	}

	sub.subscribe(topic)

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = mapset.NewSet[Subscriber]()
		b.topics[topic] = subs
	}
	subs.Add(sub)
}

// Unsubscribe removes sub from topic
func (b *EventsStream) Unsubscribe(sub Subscriber, topic string) {
	sub.unsubscribe(topic)

	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[topic]; ok {
		subs.Remove(sub)
		if subs.IsEmpty() {
			delete(b.topics, topic)
		}
	}
}

// Publish buffers msg in every subscriber of topic
func (b *EventsStream) Publish(topic string, msg any) {
	b.mu.RLock()
	subs, ok := b.topics[topic]
	b.mu.RUnlock()
	if !ok {
		return
	}

	message := NewMessage(topic, msg)
	subs.Each(func(sub Subscriber) bool {
		sub.signal(message)
		return false
	})
}

// Close shuts every subscriber down
func (b *EventsStream) Close() {
	b.mu.Lock()
	b.topics = make(map[string]mapset.Set[Subscriber])
	b.mu.Unlock()

	for _, sub := range b.subscribers.ToSlice() {
		sub.Shutdown()
	}
	b.subscribers.Clear()
}
