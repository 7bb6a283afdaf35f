// Package promise provides single-assignment deferred values.
//
// Container conversions in the variant package complete asynchronously
// because enumerating a host object may cross an execution boundary. Each
// conversion call produces one Promise and completes it exactly once:
//
//	p := variant.ConvertSlice[int](ctx, v)
//	xs, err := p.Await(ctx)
//
// There is no cancellation primitive: a consumer that no longer needs the
// result discards the promise, and a producer already at work runs to
// completion with its result discarded.
package promise
