package vm

import "ascension/internal/value"

// CallFrame tracks one active function invocation: its own local
// variable environment and the instruction pointer to resume at on
// return.
type CallFrame struct {
	locals   map[string]value.Value
	returnIP int
}

// TryFrame records a pending catch handler. On THROW the VM unwinds the
// value stack, call stack and local frames back to the depths recorded
// here before jumping to catchIP.
type TryFrame struct {
	catchIP    int
	stackDepth int
	frameDepth int
}
