package turtle

import "math"

// DrawConfig holds the drawing parameters shared by a whole interpretation
// pass. The scale, width and angle operators mutate it in place, so hand each
// concurrent pass its own copy.
type DrawConfig struct {
	LineLength            int
	LineWidthIncrement    float64
	LineLengthScaleFactor float64

	// Angles are in radians
	TurningAngle          float64
	TurningAngleIncrement float64
}

// NewDrawConfig builds a DrawConfig, angles given in degrees.
func NewDrawConfig(lineLength int, lineWidthIncrement, lineLengthScaleFactor, turningAngle, turningAngleIncrement float64) DrawConfig {
	return DrawConfig{
		LineLength:            lineLength,
		LineWidthIncrement:    lineWidthIncrement,
		LineLengthScaleFactor: lineLengthScaleFactor,
		TurningAngle:          Radians(turningAngle),
		TurningAngleIncrement: Radians(turningAngleIncrement),
	}
}

// DefaultDrawConfig is used for settings a grammar file leaves out.
func DefaultDrawConfig() DrawConfig {
	return NewDrawConfig(10, 1, 1, 90, 0)
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func (cfg *DrawConfig) scale(up bool) {
	l := float64(cfg.LineLength)
	if up {
		l *= cfg.LineLengthScaleFactor
	} else if cfg.LineLengthScaleFactor != 0 {
		l /= cfg.LineLengthScaleFactor
	}
	cfg.LineLength = int(math.Round(l))
}
