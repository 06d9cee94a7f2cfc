package store

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/model"
)

type seedFile struct {
	Locations []model.RiskLocation `yaml:"locations"`
}

// LoadSeedLocations reads reference risk locations from a YAML file.
// Severity is always re-derived from the risk score so the file cannot
// disagree with the classification thresholds.
func LoadSeedLocations(path string) ([]model.RiskLocation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read seed file %s", path)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "store: parse seed file %s", path)
	}
	if len(f.Locations) == 0 {
		return nil, eris.Errorf("store: seed file %s has no locations", path)
	}

	for i := range f.Locations {
		f.Locations[i].Severity = geo.ClassifySeverity(f.Locations[i].RiskScore, false)
	}
	return f.Locations, nil
}
