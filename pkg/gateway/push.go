package gateway

import (
	"context"
	"fmt"

	"github.com/zigbridge/zigbridge-go/pkg/log"
	"github.com/zigbridge/zigbridge-go/pkg/push"
)

// RegisterCallback registers an external callback for push deliveries of
// this sub-device. Registering an already-used id overwrites the previous
// callback with a logged warning; the original dispatch position is kept.
func (s *SubDevice) RegisterCallback(id string, callback Callback) {
	s.mu.Lock()
	_, exists := s.callbacks[id]
	s.callbacks[id] = callback
	if !exists {
		s.callbackOrder = append(s.callbackOrder, id)
	}
	s.mu.Unlock()

	if exists {
		s.logEvent(log.Event{
			Category: log.CategoryWarning,
			Detail:   fmt.Sprintf("a callback with id %q was already registered, overwriting previous callback", id),
		})
	}
}

// RemoveCallback removes a registered callback by its id.
func (s *SubDevice) RemoveCallback(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.callbacks[id]; !exists {
		return
	}
	delete(s.callbacks, id)
	for i, cid := range s.callbackOrder {
		if cid == id {
			s.callbackOrder = append(s.callbackOrder[:i], s.callbackOrder[i+1:]...)
			break
		}
	}
}

// PushCallback handles a push delivery from the notification service.
//
// An action the model never declared is logged and dropped: no cache
// mutation, no callback dispatch. Otherwise the event's declared
// property/value pair, if any, is applied to the cache unconditionally and
// every registered callback is invoked in registration order. Callback
// panics are not recovered here; a misbehaving callback aborts dispatch to
// subsequent ones.
func (s *SubDevice) PushCallback(action string, params any) {
	event, ok := s.pushEvents.Get(action)
	if !ok {
		s.logEvent(log.Event{
			Category: log.CategoryError,
			Action:   action,
			Err:      fmt.Sprintf("received unregistered action %q callback for sid %q model %q", action, s.sid, s.model),
		})
		return
	}

	s.mu.Lock()
	if event.Property != "" && event.Value != nil {
		s.props[event.Property] = event.Value
	}
	callbacks := make([]Callback, 0, len(s.callbackOrder))
	for _, id := range s.callbackOrder {
		callbacks = append(callbacks, s.callbacks[id])
	}
	s.mu.Unlock()

	s.logEvent(log.Event{
		Category: log.CategoryPush,
		Action:   action,
	})

	for _, callback := range callbacks {
		callback(action, params)
	}
}

// SubscribeEvents subscribes to every push event the model declares, in
// declaration order. Each subscription succeeds or fails independently: a
// successful handle is recorded immediately and is NOT rolled back when a
// later event in the same batch fails. The returned boolean is true only
// if every event subscribed successfully.
//
// A gateway without a notification service handle fails immediately with a
// configuration error; no partial state is created in that case.
func (s *SubDevice) SubscribeEvents(ctx context.Context) (bool, error) {
	server := s.gw.PushServer()
	if server == nil {
		return false, deviceErrorf(nil, "cannot subscribe events without a push server instance")
	}

	allSubscribed := true
	for _, action := range s.pushEvents.Names() {
		event, _ := s.pushEvents.Get(action)
		info := push.EventInfo{
			Action:       action,
			Extra:        event.Extra,
			SourceSID:    s.sid,
			SourceModel:  s.zigbeeModel,
			Event:        event.Event,
			CommandExtra: event.CommandExtra,
			TriggerValue: event.TriggerValue,
		}

		eventID, err := server.Subscribe(ctx, info)
		if err != nil || eventID == "" {
			allSubscribed = false
			logged := log.Event{
				Category: log.CategoryError,
				Action:   action,
				Detail:   "event subscription refused",
			}
			if err != nil {
				logged.Err = err.Error()
			}
			s.logEvent(logged)
			continue
		}

		s.mu.Lock()
		s.eventIDs = append(s.eventIDs, eventID)
		s.mu.Unlock()

		s.logEvent(log.Event{
			Category: log.CategorySubscription,
			Action:   action,
			Detail:   "subscribed " + eventID,
		})
	}

	return allSubscribed, nil
}

// UnsubscribeEvents releases the held subscription handles in order,
// removing each as its release succeeds. A failure mid-iteration returns
// immediately, leaving the remaining handles still held.
func (s *SubDevice) UnsubscribeEvents(ctx context.Context) error {
	s.mu.RLock()
	held := make([]string, len(s.eventIDs))
	copy(held, s.eventIDs)
	s.mu.RUnlock()

	if len(held) == 0 {
		return nil
	}

	server := s.gw.PushServer()
	if server == nil {
		return deviceErrorf(nil, "cannot unsubscribe events without a push server instance")
	}

	for _, eventID := range held {
		if err := server.Unsubscribe(ctx, eventID); err != nil {
			return deviceErrorf(err,
				"got an exception while unsubscribing event %s on model %s", eventID, s.model)
		}

		s.mu.Lock()
		for i, id := range s.eventIDs {
			if id == eventID {
				s.eventIDs = append(s.eventIDs[:i], s.eventIDs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		s.logEvent(log.Event{
			Category: log.CategorySubscription,
			Detail:   "unsubscribed " + eventID,
		})
	}

	return nil
}

// EventIDs returns the subscription handles currently held.
func (s *SubDevice) EventIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.eventIDs))
	copy(ids, s.eventIDs)
	return ids
}
