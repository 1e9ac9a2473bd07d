package pricing

import (
	"math"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

// FragmentPrice is the NOK cost of one fragment. SubsidyNok is reported as a positive
// deduction that has already been taken off EnergyNok.
type FragmentPrice struct {
	EnergyNok  float64 `json:"energy_nok"`
	GridNok    float64 `json:"grid_nok"`
	SubsidyNok float64 `json:"subsidy_nok"`
}

func (p FragmentPrice) TotalNok() float64 {
	return p.EnergyNok + p.GridNok
}

// PriceFragment prices kwh for one hour. gridRateInclTax comes from the tariff matcher
// (NOK/kWh incl. VAT), spotPriceExTax is the day-ahead price (NOK/kWh excl. VAT).
// Policy parameters left unset take their defaults.
func PriceFragment(kwh, gridRateInclTax, spotPriceExTax float64, policy model.PricingPolicy) FragmentPrice {
	out := FragmentPrice{GridNok: kwh * gridRateInclTax}

	switch policy.Type {
	case model.PolicyNorgespris:
		out.EnergyNok = kwh * policy.FlatRate()
	case model.PolicySpotWithSubsidy:
		energyExTax, subsidyExTax := SubsidisedSpotPrice(spotPriceExTax, policy.Threshold(), policy.Share())
		out.EnergyNok = kwh * energyExTax * model.TaxMultiplier
		out.SubsidyNok = kwh * subsidyExTax * model.TaxMultiplier
	}
	return out
}

// SubsidisedSpotPrice splits a spot price into what the consumer pays and what the
// strømstøtte covers, both per kWh without VAT.
func SubsidisedSpotPrice(spotExTax, threshold, share float64) (energyExTax, subsidyExTax float64) {
	excess := math.Max(0, spotExTax-threshold)
	subsidyExTax = excess * share
	return spotExTax - subsidyExTax, subsidyExTax
}
