package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrSingularity indicates a force law was evaluated at zero separation.
	ErrSingularity = errors.New("dynamo: force evaluated at zero distance (singularity)")

	// ErrInvalidMass indicates a particle or species with non-positive mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a particle state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownParticle indicates an identifier that names no particle in the system.
	ErrUnknownParticle = errors.New("dynamo: unknown particle")

	// ErrDuplicateParticle indicates two particles sharing one identifier.
	ErrDuplicateParticle = errors.New("dynamo: duplicate particle id")
)

// SimulationError wraps an error with the frame and substep it surfaced in.
type SimulationError struct {
	Frame   int
	Substep int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d substep %d (t=%.4e s): %v", e.Frame, e.Substep, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
