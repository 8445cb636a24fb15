// Package buffers owns the fixed-storage buffer primitives.
//
// Ownership boundary:
// - bytebuf: sequential integer codec over a borrowed byte slice
// - message: [type][length][payload] framing over a borrowed byte slice
// - ring: fixed-capacity FIFO of any element type
//
// None of the primitives allocate after construction, lock, log or do I/O.
package buffers
