// internal/pvoutput/status.go
package pvoutput

import (
	"net/url"
	"strconv"
	"time"
)

// Status carries one live update for the addstatus endpoint.
// Nil fields are omitted from the payload, never encoded as zero.
type Status struct {
	At time.Time

	EnergyGen  *int     // v1, Wh generated today
	PowerGen   *float64 // v2, W
	EnergyImp  *int     // v3, Wh imported
	PowerImp   *float64 // v4, W
	Temp       *float64 // v5, ambient temperature
	VAC        *float64 // v6, AC voltage
	VDC        *float64 // v8, DC voltage
	TempInv    *float64 // v9, inverter temperature
	EnergyLife *int     // v10, lifetime Wh
	PowerVDC   *float64 // DC-side power, efficiency denominator only
	Cumulative bool     // c1
	Comment    string   // m1, truncated to 30 characters
}

// commentMaxLen is the service's limit on the m1 field.
const commentMaxLen = 30

// encode builds the form payload for a status. lastEnergyToday is the
// previously uploaded v1 value; v1 is included only when it differs, which
// avoids reporting flat zero-delta intervals on inverters that step their
// energy counter in coarse increments. The second return value is true when
// v1 was included.
func (s Status) encode(lastEnergyToday int) (url.Values, bool) {
	v := url.Values{}
	v.Set("d", s.At.Format("20060102"))
	v.Set("t", s.At.Format("15:04"))

	sentEnergy := false
	if s.EnergyGen != nil && *s.EnergyGen != lastEnergyToday {
		v.Set("v1", strconv.Itoa(*s.EnergyGen))
		sentEnergy = true
	}
	setFloat(v, "v2", s.PowerGen)
	setInt(v, "v3", s.EnergyImp)
	setFloat(v, "v4", s.PowerImp)
	setFloat(v, "v5", s.Temp)
	setFloat(v, "v6", s.VAC)
	setFloat(v, "v8", s.VDC)
	setFloat(v, "v9", s.TempInv)
	setInt(v, "v10", s.EnergyLife)

	if s.Cumulative {
		v.Set("c1", "1")
	} else {
		v.Set("c1", "0")
	}

	if s.Comment != "" {
		m := s.Comment
		if len(m) > commentMaxLen {
			m = m[:commentMaxLen]
		}
		v.Set("m1", m)
	}

	// Derived efficiency, reported as a percentage.
	if s.PowerVDC != nil && *s.PowerVDC > 0 && s.PowerGen != nil {
		v.Set("v12", formatFloat(*s.PowerGen / *s.PowerVDC * 100))
	}

	return v, sentEnergy
}

func setFloat(v url.Values, key string, p *float64) {
	if p != nil {
		v.Set(key, formatFloat(*p))
	}
}

func setInt(v url.Values, key string, p *int) {
	if p != nil {
		v.Set(key, strconv.Itoa(*p))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
