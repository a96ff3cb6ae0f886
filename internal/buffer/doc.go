// Package buffer provides the unbounded FIFO queues that carry work between
// goroutines: the outbound command holding buffer of each session and the
// inputs of the recorder writers.
//
// Producers never block. Consumers wait on Ready and then drain.
package buffer
