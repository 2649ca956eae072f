// Package barrage scores tidal-barrage operating strategies: a 0-D
// operational model of the impounded basin produces the annual energy
// yield, and a capital-recovery annuity over the plant's life turns it
// into a levelised unit cost.
package barrage

import (
	"fmt"
	"math"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

const (
	// seawaterDensity in kg/m3.
	seawaterDensity = 1025.0
	// gravity in m/s2.
	gravity = 9.81
	// joulesPerMWh converts integrated power to the reported unit.
	joulesPerMWh = 3.6e9
	// secondsPerYear annualises the simulated span.
	secondsPerYear = 365.25 * 24 * 3600
)

// Plant is the fixed physical and financial description of a barrage.
// The hydraulic fields drive the basin model, the financial fields the
// levelised cost. All fields are immutable during a run.
type Plant struct {
	// BasinArea is the impounded surface area in m2, assumed constant
	// over the operating range (flat estuary).
	BasinArea float64
	// TurbineArea is the total turbine flow cross-section in m2.
	TurbineArea float64
	// SluiceArea is the total sluice-gate cross-section in m2.
	SluiceArea float64
	// DischargeCoeff is the shared orifice discharge coefficient.
	DischargeCoeff float64
	// Efficiency is the water-to-wire conversion factor.
	Efficiency float64
	// RatedPower caps the electrical output, in watts.
	RatedPower float64
	// CapitalCost is the total build cost.
	CapitalCost float64
	// FixedOM is the fixed operation and maintenance cost per year.
	FixedOM float64
	// DiscountRate is the annual discount rate used for the annuity.
	DiscountRate float64
	// Lifetime is the appraisal period in years.
	Lifetime int
}

// DefaultPlant returns a lagoon-scale reference plant.
func DefaultPlant() Plant {
	var p Plant
	p.SetDefaults()
	return p
}

// SetDefaults fills zero fields with the reference plant.
func (p *Plant) SetDefaults() {
	if p.BasinArea == 0 {
		p.BasinArea = 11.5e6
	}
	if p.TurbineArea == 0 {
		p.TurbineArea = 650
	}
	if p.SluiceArea == 0 {
		p.SluiceArea = 800
	}
	if p.DischargeCoeff == 0 {
		p.DischargeCoeff = 0.8
	}
	if p.Efficiency == 0 {
		p.Efficiency = 0.85
	}
	if p.RatedPower == 0 {
		p.RatedPower = 320e6
	}
	if p.CapitalCost == 0 {
		p.CapitalCost = 1.3e9
	}
	if p.FixedOM == 0 {
		p.FixedOM = 20e6
	}
	if p.DiscountRate == 0 {
		p.DiscountRate = 0.06
	}
	if p.Lifetime == 0 {
		p.Lifetime = 60
	}
}

// Validate rejects plants the basin model cannot run.
func (p Plant) Validate() error {
	if p.BasinArea <= 0 {
		return fmt.Errorf("basin area must be positive, got %v", p.BasinArea)
	}
	if p.TurbineArea <= 0 {
		return fmt.Errorf("turbine area must be positive, got %v", p.TurbineArea)
	}
	if p.SluiceArea <= 0 {
		return fmt.Errorf("sluice area must be positive, got %v", p.SluiceArea)
	}
	if p.DischargeCoeff <= 0 || p.DischargeCoeff > 1 {
		return fmt.Errorf("discharge coefficient must be in (0, 1], got %v", p.DischargeCoeff)
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return fmt.Errorf("efficiency must be in (0, 1], got %v", p.Efficiency)
	}
	if p.RatedPower <= 0 {
		return fmt.Errorf("rated power must be positive, got %v", p.RatedPower)
	}
	if p.CapitalCost < 0 {
		return fmt.Errorf("capital cost must be non-negative, got %v", p.CapitalCost)
	}
	if p.FixedOM < 0 {
		return fmt.Errorf("fixed O&M must be non-negative, got %v", p.FixedOM)
	}
	if math.IsNaN(p.DiscountRate) || p.DiscountRate < 0 || p.DiscountRate >= 1 {
		return fmt.Errorf("discount rate must be in [0, 1), got %v", p.DiscountRate)
	}
	if p.Lifetime < 1 {
		return fmt.Errorf("lifetime must be at least 1 year, got %d", p.Lifetime)
	}
	return nil
}

// AnnualCost is the levelised yearly cost of owning the plant: the
// capital annuity plus fixed O&M.
func (p Plant) AnnualCost() float64 {
	return p.CapitalCost*p.capitalRecoveryFactor() + p.FixedOM
}

// UnitCost levelises the annual cost over an annual yield in MWh. A
// yield of zero or less carries the invalid-cost sentinel: the plant
// produced nothing to spread its cost over.
func (p Plant) UnitCost(annualMWh float64) float64 {
	if annualMWh <= 0 {
		return framework.InvalidCost
	}
	return p.AnnualCost() / annualMWh
}

// capitalRecoveryFactor converts the capital cost into an equal annual
// payment over the lifetime. A zero rate degenerates to straight-line
// division.
func (p Plant) capitalRecoveryFactor() float64 {
	n := float64(p.Lifetime)
	if p.DiscountRate == 0 {
		return 1 / n
	}
	f := math.Pow(1+p.DiscountRate, n)
	return p.DiscountRate * f / (f - 1)
}
