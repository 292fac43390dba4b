// Package eventagg provides a process-local publish/subscribe event
// aggregator.
//
// Listeners declare the message types they handle; publishers hand any
// value to the aggregator, which delivers it to every listener whose
// contract matches the value's runtime type.
//
// # Listeners
//
// A listener implements Listener by returning one Contract per message
// type. Contracts are built from method expressions:
//
//	type Billing struct{ invoices int }
//
//	func (b *Billing) OnOrderCreated(e OrderCreated) error {
//	    b.invoices++
//	    return nil
//	}
//
//	func (b *Billing) Contracts() []eventagg.Contract {
//	    return []eventagg.Contract{eventagg.Handles((*Billing).OnOrderCreated)}
//	}
//
// Contracts of exported embedded listeners are inherited: a struct that
// embeds *Billing also handles OrderCreated. When two contracts name the
// same message type, the first one found wins, outer before embedded.
//
// HandlesAsync adds an entry point used by PublishAsync; without one,
// PublishAsync calls the sync entry point. Func and AsyncFunc wrap plain
// functions.
//
// # Ownership
//
// Listeners are held weakly by default: once nothing else references a
// listener it is garbage collected, and the next publish removes its
// registration. A weakly held listener may also implement Expirer to drop
// out before collection. Pass HoldStrongReference(true) or set
// Config.DefaultOwnership to keep listeners alive until RemoveListener.
//
// A weakly held pointer to a package-level variable is never collected, so
// it stays registered until RemoveListener.
//
// # Publishing
//
//	agg := eventagg.NewAggregator(nil)
//	if err := agg.AddListener(billing); err != nil {
//	    return err
//	}
//	handled, err := agg.Publish(ctx, OrderCreated{ID: 1})
//
// Listeners run in registration order. A handler error stops the publish
// and is returned unchanged. A publish that reaches no listener calls
// Config.OnZeroListeners; it is not an error.
//
// Send publishes under a static type. A contract declared for an interface
// matches a concrete message only when inheritance matching is enabled,
// or when the message is sent under that interface type:
//
//	eventagg.Send[DomainEvent](ctx, agg, OrderCreated{ID: 1})
//
// # Marshalling
//
// Every matched handler runs through a Marshaller, which decides where it
// executes. The default runs it inline. Package marshal provides goroutine,
// bounded, errgroup, and retrying marshallers.
//
// # Concurrency
//
// All methods are safe for concurrent use. Dispatch iterates a snapshot of
// the registrations, and no lock is held while a handler runs, so handlers
// may add or remove listeners and publish again.
package eventagg
