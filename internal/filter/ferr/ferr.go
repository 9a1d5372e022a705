// Package ferr defines the sentinel errors a compiled filter program can
// fail with once it leaves the pure compiler and touches the kernel.
package ferr

import "errors"

var (
	// ErrProgramTooLong is returned when a compiled program exceeds the
	// instruction-count limit the kernel enforces for its attach path.
	// Both backends' NewProgram also return it for an empty program.
	ErrProgramTooLong = errors.New("filter: compiled program exceeds the maximum instruction count")

	// ErrKernelRejected is returned when the kernel verifier refuses a
	// program that was accepted by the local compiler and simulator.
	ErrKernelRejected = errors.New("filter: kernel rejected program")

	// ErrAttachFailed is returned when attaching an accepted program to a
	// socket or link fails for a reason other than verifier rejection.
	ErrAttachFailed = errors.New("filter: attach failed")
)
