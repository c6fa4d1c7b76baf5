// Package interchange imports L-system definitions from grammar files
package interchange

import (
	"math"
	"strings"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/turtle"
	"github.com/pkg/errors"
)

var (
	ErrUnknownSetting = errors.New("unrecognized config setting")
	ErrInvalidValue   = errors.New("invalid config value")
	ErrMissingAxiom   = errors.New("could not find `axiom`")
)

// A Definition is everything a grammar file describes.
type Definition struct {
	Name       string
	Parameters lsysviz.Parameters
	Config     turtle.DrawConfig
}

// System builds the System the definition describes.
func (def Definition) System() lsysviz.System {
	return lsysviz.New(def.Parameters)
}

type Format interface {
	Import() (Definition, error)
}

// Settings accepted by ApplySetting
const (
	LineLength            = "line_length"
	LineWidthIncrement    = "line_width_increment"
	LineLengthScaleFactor = "line_length_scale_factor"
	TurningAngle          = "turning_angle"
	TurningAngleIncrement = "turning_angle_increment"
)

var setters = map[string]func(cfg *turtle.DrawConfig, v float64) error{
	LineLength: func(cfg *turtle.DrawConfig, v float64) error {
		if v != math.Trunc(v) {
			return errors.Errorf("should be an integer, got %v", v)
		}
		cfg.LineLength = int(v)
		return nil
	},
	LineWidthIncrement: func(cfg *turtle.DrawConfig, v float64) error {
		cfg.LineWidthIncrement = v
		return nil
	},
	LineLengthScaleFactor: func(cfg *turtle.DrawConfig, v float64) error {
		if v == 0 {
			return errors.New("should not be zero")
		}
		cfg.LineLengthScaleFactor = v
		return nil
	},
	TurningAngle: func(cfg *turtle.DrawConfig, v float64) error {
		cfg.TurningAngle = turtle.Radians(v)
		return nil
	},
	TurningAngleIncrement: func(cfg *turtle.DrawConfig, v float64) error {
		cfg.TurningAngleIncrement = turtle.Radians(v)
		return nil
	},
}

// ApplySetting evaluates value and stores it in the matching field of cfg.
// Keys are case-insensitive, angles are given in degrees.
func ApplySetting(cfg *turtle.DrawConfig, key string, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	set, ok := setters[key]
	if !ok {
		return errors.Wrap(ErrUnknownSetting, key)
	}

	v, err := Evaluate(value)
	if err != nil {
		return errors.Wrapf(ErrInvalidValue, "`%s` = %q: %v", key, value, err)
	}
	if err := set(cfg, v); err != nil {
		return errors.Wrapf(ErrInvalidValue, "`%s` %v", key, err)
	}
	return nil
}
