// Package invalidation broadcasts translation reloads between instances.
//
// An instance that reloads a locale publishes an [Event]. Peers receive it
// and drop their in-memory copy; the next lookup reads the tree the
// publisher already put in the shared cache.
//
//	bus := invalidation.NewRedis(client, invalidation.DefaultChannel)
//	go bus.Subscribe(ctx, func(ctx context.Context, e invalidation.Event) {
//	    // evict e.Locale, or everything when e.All
//	})
//	_ = bus.Publish(ctx, invalidation.Event{Origin: id, Locale: "en"})
package invalidation
