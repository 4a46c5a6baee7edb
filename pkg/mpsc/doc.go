// Package mpsc implements an unbounded many-producer, single-consumer channel.
//
// Unlike a native Go channel, every producer owns its own Sender handle. Handles
// are cloned from an existing one and closed independently; the channel is only
// reported as closed to the consumer once every handle has been closed and the
// buffer has been drained.
//
//	┌──────────┐
//	│ Sender 0 │──┐
//	└──────────┘  │
//	┌──────────┐  │      ┌─────────────────────┐      ┌──────────┐
//	│ Sender 1 │──┼────► │ buffer [r0][r1] ... │ ───► │ Receiver │
//	└──────────┘  │      └─────────────────────┘      └──────────┘
//	┌──────────┐  │
//	│ Sender N │──┘
//	└──────────┘
//
// # Guarantees
//
//   - Send never blocks. The buffer grows as needed.
//   - Values from one Sender are received in the order they were sent.
//     No ordering is defined between different Senders.
//   - Sending into a channel whose consumer stopped reading is valid;
//     the value is simply never observed.
//   - Closing one handle never affects the others.
//
// # Receiving
//
// The Receiver offers three ways of consuming values:
//
//	v, err := rx.Recv(ctx)  // blocks until a value, ErrClosed or ctx is done
//	v, err := rx.TryRecv()  // never blocks: value, ErrEmpty or ErrClosed
//	<-rx.Ready()            // signalled on every arrival and on close
//
// Ready lets a consumer wait for arrivals without a fixed poll interval.
// Signals coalesce, so a consumer must drain with TryRecv after every wake-up.
//
// # Usage Example
//
//	tx, rx := mpsc.New[string]()
//
//	for i := range 3 {
//	    h, _ := tx.Clone()
//	    go func() {
//	        defer h.Close()
//	        _ = h.Send(fmt.Sprintf("hello from %d", i))
//	    }()
//	}
//	tx.Close() // drop the original handle
//
//	for {
//	    v, err := rx.Recv(ctx)
//	    if errors.Is(err, mpsc.ErrClosed) {
//	        break
//	    }
//	    fmt.Println(v)
//	}
package mpsc
