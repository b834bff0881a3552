package integral

import "errors"

var (
	// ErrThermalExpansionMissing is returned when temperature coupling is
	// requested but the field provider computes no thermal expansion coefficient
	ErrThermalExpansionMissing = errors.New("to include the thermal strain term in the interaction integral, " +
		"temperature must be coupled and the material must compute the instantaneous thermal expansion coefficient")

	// ErrRingFirstRequired is returned for topological q-functions without RingFirst
	ErrRingFirstRequired = errors.New("ring_first is required with the Topology q-function")

	// ErrRingFirstMismatch is returned when RingFirst disagrees with the crack front's
	ErrRingFirstMismatch = errors.New("ring_first differs from the crack front definition")

	// ErrPoissonsRatioRequired is returned when T-stress is requested without Poisson's ratio
	ErrPoissonsRatioRequired = errors.New("poissons_ratio is required to compute the T-stress")

	// ErrKFactorRequired is returned when no scale factor is configured
	ErrKFactorRequired = errors.New("K_factor must be set")

	// ErrNotInitialized is returned when an evaluator is used before InitialSetup
	ErrNotInitialized = errors.New("InitialSetup must be called before evaluating the integral")
)
