package types

import "errors"

// Substrate-level errors, returned by the position collector. The
// caller should keep collecting data and try again on a later cycle.
var (
	ErrNotEnoughAnchors = errors.New("uasn: not enough anchors registered")
	ErrNoData           = errors.New("uasn: no data series recorded")
	ErrIncompleteData   = errors.New("uasn: no series has complete data for every anchor")
)

// ErrSingular is shared by both solvers: the linear system backing the
// closed-form UPS solve, or the Gauss-Newton normal equations for ToA,
// could not be inverted. Treated as transient by callers.
var ErrSingular = errors.New("uasn: linear system is singular")

// UPS-specific diagnostic errors. A failure here discards the current
// beacon cycle; it never aborts the simulation.
var (
	ErrNoSolution = errors.New("uasn: ups quadratic has no non-negative root")
	ErrAmbiguous  = errors.New("uasn: ups quadratic has two non-negative roots")
	ErrOutOfRange = errors.New("uasn: ups solution validates outside acoustic range")
)

// ErrNotConverged is not a hard failure: the ToA solver exhausted its
// iteration budget without meeting the convergence threshold. The
// caller may still use the best-effort position, with this error
// flagging that it was not confirmed to have converged.
var ErrNotConverged = errors.New("uasn: gauss-newton did not converge")
