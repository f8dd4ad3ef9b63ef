package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rfsouza/uasn/pkg/uasn/core"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/protocol/lst"
	"github.com/rfsouza/uasn/pkg/uasn/protocol/rls"
	"github.com/rfsouza/uasn/pkg/uasn/protocol/ups"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// Point is a YAML-friendly 3-D coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (p Point) vec() geom.Vec3 { return geom.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

// Scenario describes one simulation run: the volume, the protocol, the
// fleet. Sensors without a position are placed uniformly at random by
// the environment.
type Scenario struct {
	Volume struct {
		MaxX float64 `yaml:"max_x"`
		MaxY float64 `yaml:"max_y"`
		DimZ float64 `yaml:"dim_z"`
	} `yaml:"volume"`

	// Protocol is one of "ups", "lst", "rls".
	Protocol string `yaml:"protocol"`

	// Anchors are the pre-localized nodes. UPS requires exactly four,
	// beaconing in listed order; LST and RLS accept any number >= 3
	// and >= 4 respectively.
	Anchors []Point `yaml:"anchors"`

	// Sensors are the nodes to localize. A nil entry gets a random
	// in-bounds position.
	Sensors []*Point `yaml:"sensors"`
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if s.Volume.MaxX <= 0 || s.Volume.MaxY <= 0 || s.Volume.DimZ <= 0 {
		return nil, fmt.Errorf("scenario volume must be positive, got %+v", s.Volume)
	}
	return &s, nil
}

// located pairs a node with a way to ask for its resolved position.
type located interface {
	Name() string
	Position() geom.Vec3
}

type sensorReport struct {
	node     located
	estimate func() (geom.Vec3, bool)
}

// Build populates env with the scenario's fleet and returns the
// sensors to report on afterwards.
func (s *Scenario) Build(env *core.Environment, params types.Params) ([]sensorReport, error) {
	outOfBounds := geom.Vec3{X: -1, Y: -1, Z: 1}
	sensorPos := func(p *Point) geom.Vec3 {
		if p == nil {
			return outOfBounds
		}
		return p.vec()
	}

	switch s.Protocol {
	case "ups":
		if len(s.Anchors) != 4 {
			return nil, fmt.Errorf("ups needs exactly 4 anchors, got %d", len(s.Anchors))
		}
		env.AddNode(ups.NewMasterAnchorNode("anchor0", s.Anchors[0].vec(), params.SndSpeed, params.UpsPeriod, params.UpsNumber))
		for i := 1; i < 4; i++ {
			env.AddNode(ups.NewAnchorNode(fmt.Sprintf("anchor%d", i), s.Anchors[i].vec(), i, params.SndSpeed))
		}
		reports := make([]sensorReport, 0, len(s.Sensors))
		for i, p := range s.Sensors {
			n := ups.NewSensorNode(fmt.Sprintf("sensor%d", i), sensorPos(p), params.SndSpeed, params.SimRange)
			env.AddNode(n)
			reports = append(reports, sensorReport{node: n, estimate: n.EstimatedPosition})
		}
		return reports, nil

	case "lst":
		if len(s.Anchors) < 3 {
			return nil, fmt.Errorf("lst needs at least 3 anchors, got %d", len(s.Anchors))
		}
		slotCount := len(s.Anchors) + len(s.Sensors)
		id := 0
		for _, p := range s.Anchors {
			env.AddNode(lst.NewNode(id, slotCount, p.vec(), true, geom.Vec3{}, params.SndSpeed, params.LstTimeslot, params.ToaIterMax, params.ToaThreshold))
			id++
		}
		reports := make([]sensorReport, 0, len(s.Sensors))
		for _, p := range s.Sensors {
			// The starting estimate deliberately sits mid-volume; the
			// solver walks it to the true position.
			start := geom.Vec3{X: s.Volume.MaxX / 2, Y: s.Volume.MaxY / 2, Z: -s.Volume.DimZ / 2}
			n := lst.NewNode(id, slotCount, sensorPos(p), false, start, params.SndSpeed, params.LstTimeslot, params.ToaIterMax, params.ToaThreshold)
			env.AddNode(n)
			reports = append(reports, sensorReport{node: n, estimate: n.EstimatedPosition})
			id++
		}
		return reports, nil

	case "rls":
		if len(s.Anchors) < 4 {
			return nil, fmt.Errorf("rls needs at least 4 anchors, got %d", len(s.Anchors))
		}
		slotCount := len(s.Anchors) + len(s.Sensors)
		id := 0
		for _, p := range s.Anchors {
			env.AddNode(rls.NewNode(id, slotCount, p.vec(), true, params.SndSpeed, params.SimRange, params.RlsTimeslot, params.UpsNumber))
			id++
		}
		reports := make([]sensorReport, 0, len(s.Sensors))
		for _, p := range s.Sensors {
			n := rls.NewNode(id, slotCount, sensorPos(p), false, params.SndSpeed, params.SimRange, params.RlsTimeslot, params.UpsNumber)
			env.AddNode(n)
			reports = append(reports, sensorReport{node: n, estimate: func() (geom.Vec3, bool) {
				p, _, ok := n.EstimatedPosition()
				return p, ok
			}})
			id++
		}
		return reports, nil

	default:
		return nil, fmt.Errorf("unknown protocol %q", s.Protocol)
	}
}
