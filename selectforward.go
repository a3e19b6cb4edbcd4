package sandflow

import "context"

// runSelectForward drives src into sink, honoring a one-item buffer: each
// item pulled from src is offered to sink via TrySink; a rejection (sink
// not immediately ready) falls back to a blocking SendBlocking on the
// lane TrySink already chose, so at most one item is ever "in flight"
// outside of channel buffers for this forwarder (Testable Property 4).
// Grounded on streams/select_forward.rs::SelectForward's poll loop,
// translated per §0 of SPEC_FULL.md: "poll stream" becomes a direct Next
// call, and "park on Pending" becomes SendBlocking.
func runSelectForward[T any](ctx context.Context, src Source[T], sink *SelectSink[T]) error {
	for {
		item, ok, err := src.Next(ctx)
		if err != nil {
			_ = sink.Close(ctx)
			return err
		}
		if !ok {
			if err := sink.Flush(ctx); err != nil {
				_ = sink.Close(ctx)
				return err
			}
			return sink.Close(ctx)
		}

		rejected, err := sink.TrySink(item)
		if err != nil {
			_ = sink.Close(ctx)
			return err
		}
		if rejected != nil {
			if err := sink.SendBlocking(ctx, *rejected); err != nil {
				_ = sink.Close(ctx)
				return err
			}
		}
	}
}

// runMultiForward drives src into the source-fan-in stage's round-robin
// SelectSink. It is grounded on
// streams/multi_forward.rs, which targets the simpler MultiSink trait
// rather than TrySink. In this translation the two drivers share
// SelectSink/runSelectForward, since Go's synchronous Flush/Close made the
// MultiSink/TrySink split in the Rust source (driven by differing
// poll_flush semantics) unnecessary — see DESIGN.md.
func runMultiForward[T any](ctx context.Context, src Source[T], sink *SelectSink[T]) error {
	return runSelectForward[T](ctx, src, sink)
}
