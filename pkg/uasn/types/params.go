package types

import "fmt"

// Params holds every acoustic, simulation and algorithmic constant shared
// by the environment, the solvers and the protocol state machines. A
// Params value is immutable once constructed and threaded explicitly
// through every constructor that needs it; nothing in this module reaches
// for a process-wide default.
type Params struct {
	// SndSpeed is the mean speed of sound in water (m/s).
	SndSpeed float64

	// SndVar is the standard deviation of the relative speed-of-sound
	// field (fraction of SndSpeed).
	SndVar float64

	// SimRange is the maximum acoustic range a broadcast can reach (m).
	SimRange float64

	// SimLoss is the probability that an in-range delivery is dropped.
	SimLoss float64

	// SimTick is the duration between two scheduler ticks (s).
	SimTick float64

	// ToaIterMax caps the Gauss-Newton iterations of the ToA solver.
	ToaIterMax int

	// ToaThreshold is the Gauss-Newton convergence threshold (m).
	ToaThreshold float64

	// UpsPeriod is the duration between two UPS master beacon cycles (s).
	UpsPeriod float64

	// UpsNumber is the number of UPS beaconing cycles per round.
	UpsNumber int

	// LslsWaitFactor scales LSLS waiting periods.
	LslsWaitFactor float64

	// LslsSubrange is the secondary acoustic range LSLS uses when
	// selecting candidate anchors (m).
	LslsSubrange float64

	// LslsTolerance is the maximum residual error for an LSLS node to
	// consider itself localized (m). The lsls package does not read it.
	LslsTolerance float64

	// RlsTimeslot is the length of an RLS node's assigned time slot (s).
	RlsTimeslot float64

	// RlsTolerance is the maximum error for an RLS position estimate to
	// be taken into account (m). The rls package does not read it; an
	// RLS node keeps every estimate and reports the lowest-error one.
	RlsTolerance float64

	// LstTimeslot is the length of an LST node's assigned time slot (s).
	LstTimeslot float64

	// DeliveryPositionPolicy selects whose position the speed-of-sound
	// field is sampled at when timing a delivery. PolicyReceiver is the
	// default; PolicySender exists only for ablation studies.
	DeliveryPositionPolicy DeliveryPositionPolicy
}

// DeliveryPositionPolicy selects the position used to sample the local
// speed of sound when timing a broadcast delivery.
type DeliveryPositionPolicy int

const (
	// PolicyReceiver times the delivery using the speed field at the
	// recipient's position. This is the specified default.
	PolicyReceiver DeliveryPositionPolicy = iota

	// PolicySender times the delivery using the speed field at the
	// sender's position. Exposed only for ablation studies.
	PolicySender
)

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		SndSpeed:               1500,
		SndVar:                 0.01,
		SimRange:               1000,
		SimLoss:                0,
		SimTick:                0.1,
		ToaIterMax:             10,
		ToaThreshold:           0.01,
		UpsPeriod:              1.0,
		UpsNumber:              10,
		LslsWaitFactor:         10.0,
		LslsSubrange:           500.0,
		LslsTolerance:          5.0,
		RlsTimeslot:            2.0,
		RlsTolerance:           5.0,
		LstTimeslot:            2.0,
		DeliveryPositionPolicy: PolicyReceiver,
	}
}

// Validate rejects malformed configuration. Only construction-time
// configuration errors are fatal; solver and protocol failures never
// abort the simulation.
func (p Params) Validate() error {
	if p.SimTick <= 0 {
		return fmt.Errorf("uasn: tick period must be positive, got %v", p.SimTick)
	}
	if p.SimRange <= 0 {
		return fmt.Errorf("uasn: acoustic range must be positive, got %v", p.SimRange)
	}
	if p.SndSpeed <= 0 {
		return fmt.Errorf("uasn: speed of sound must be positive, got %v", p.SndSpeed)
	}
	if p.SimLoss < 0 || p.SimLoss > 1 {
		return fmt.Errorf("uasn: loss probability must be in [0,1], got %v", p.SimLoss)
	}
	if p.ToaIterMax <= 0 {
		return fmt.Errorf("uasn: ToA iteration cap must be positive, got %d", p.ToaIterMax)
	}
	if p.UpsNumber <= 0 {
		return fmt.Errorf("uasn: UPS beacon count must be positive, got %d", p.UpsNumber)
	}
	return nil
}

// NewParams returns DefaultParams with fn applied, validated.
func NewParams(fn func(*Params)) (Params, error) {
	p := DefaultParams()
	if fn != nil {
		fn(&p)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
