// Package signals provides synchronous, in-process signal dispatch.
//
// A Registry maps signal names to ordered lists of receivers. Raising a
// signal with Send or SendRobust invokes every connected receiver on the
// caller's goroutine before returning; dispatch never spawns goroutines
// and has no suspension points.
//
// Key types:
//   - Notification: a scalar DTO carrying the signal name and JSON payload
//   - Receiver: a callback invoked for each matching notification
//   - Registry: registration and dispatch of receivers
//
// Common usage pattern:
//
//	registry, _ := signals.NewRegistry()
//
//	id, _ := registry.Connect("user_signed_up", func(ctx context.Context, n signals.Notification) error {
//		// react to the notification
//		return nil
//	})
//
//	notification, _ := signals.BuildNotificationWithEmptyMetadata(
//		"user_signed_up", time.Now(), payloadJSON)
//	deliveries, err := registry.Send(ctx, notification)
//
// When a notification is raised inside a transactional scope (see the
// pgengine package), receivers can obtain the enclosing scope with
// ScopeFrom(ctx) so that their side effects commit or roll back together
// with the surrounding unit of work.
package signals
