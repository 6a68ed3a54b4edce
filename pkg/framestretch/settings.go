package framestretch

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

/* Example settings file ...

method: log
autostretch: true
robuststretch: true
robustpercentile: 98

...or with manual bounds:

method: linear
autostretch: false
minpixelvalue: 1200
maxpixelvalue: 14000
*/

// StretchSettings is the long-lived, caller-owned display configuration.
// AutoStretch selects computed bounds (robust percentiles when
// UseRobustStretch is set, histogram statistics otherwise); when it is off
// the manual MinPixelValue/MaxPixelValue window applies.
type StretchSettings struct {
	Method           string  `yaml:"method" json:"method"`
	AutoStretch      bool    `yaml:"autostretch" json:"autostretch"`
	UseRobustStretch bool    `yaml:"robuststretch" json:"robuststretch"`
	RobustPercentile float64 `yaml:"robustpercentile" json:"robustpercentile"`
	MinPixelValue    float64 `yaml:"minpixelvalue" json:"minpixelvalue"`
	MaxPixelValue    float64 `yaml:"maxpixelvalue" json:"maxpixelvalue"`
}

// DefaultStretchSettings returns the settings a fresh viewer starts with.
func DefaultStretchSettings() StretchSettings {
	return StretchSettings{
		Method:           "linear",
		AutoStretch:      true,
		UseRobustStretch: true,
		RobustPercentile: 98,
		MinPixelValue:    0,
		MaxPixelValue:    65535,
	}
}

// LoadStretchSettings reads a YAML settings file on top of the defaults.
func LoadStretchSettings(filename string) (StretchSettings, error) {
	s := DefaultStretchSettings()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return s, errors.Wrapf(err, "read settings %q", filename)
	}
	if err := yaml.Unmarshal(contents, &s); err != nil {
		return s, errors.Wrapf(err, "parse settings %q", filename)
	}
	return s, s.Finalize()
}

// Finalize sanity-checks the settings after loading or mutation.
func (s *StretchSettings) Finalize() error {
	if s.Method == "" {
		s.Method = "linear"
	}
	if s.RobustPercentile == 0 {
		s.RobustPercentile = 98
	}
	if s.RobustPercentile < 80 || s.RobustPercentile > 100 {
		return errors.Errorf("robustpercentile must be in [80,100], got %g", s.RobustPercentile)
	}
	manual := !s.AutoStretch && ParseStretchMethod(s.Method) != MethodNone
	if manual && s.MinPixelValue >= s.MaxPixelValue {
		return errors.Errorf("manual bounds need minpixelvalue < maxpixelvalue, got [%g, %g]",
			s.MinPixelValue, s.MaxPixelValue)
	}
	return nil
}
