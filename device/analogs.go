package device

// AnalogCount is the number of axes in one analog set record.
const AnalogCount = 8

// Analogs is a bare set of up to eight analog axes for devices that report
// analog values outside of a full controller component.
type Analogs struct {
	Values [AnalogCount]uint8 `json:"values"`
}

// AnalogsInfo advertises which of the eight axes are populated.
type AnalogsInfo struct {
	Analogs uint8 `json:"analogs"`
}

// AnalogsConfig rescales each axis from an input range to the full byte
// range.
type AnalogsConfig struct {
	Ranges [AnalogCount][2]uint8 `json:"ranges"`
}

// DefaultAnalogsConfig returns the identity configuration.
func DefaultAnalogsConfig() AnalogsConfig {
	var c AnalogsConfig
	for i := range c.Ranges {
		c.Ranges[i] = [2]uint8{0, 255}
	}
	return c
}

func (c *AnalogsConfig) apply(a *Analogs) {
	for i := range a.Values {
		a.Values[i] = applyRange(a.Values[i], c.Ranges[i])
	}
}
