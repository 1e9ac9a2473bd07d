package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// TaxMultiplier converts ex-VAT amounts to VAT inclusive amounts (25% MVA).
const TaxMultiplier = 1.25

const (
	DefaultSubsidyThreshold = 0.75 // NOK/kWh ex-VAT.
	DefaultSubsidyShare     = 0.90
	DefaultNorgesprisRate   = 0.50 // NOK/kWh incl. VAT.
)

type PolicyType string

const (
	PolicyNorgespris      PolicyType = "norgespris"
	PolicySpotWithSubsidy PolicyType = "spot_with_subsidy"
)

func (p PolicyType) String() string {
	return string(p)
}

var ErrUnknownPolicy = errors.New("unknown pricing policy")

func ParsePolicyType(s string) (PolicyType, error) {
	switch p := PolicyType(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyNorgespris, PolicySpotWithSubsidy:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// PricingPolicy selects how the energy part of a fragment is priced.
// Nil parameters fall back to the package defaults, an explicit zero is kept.
type PricingPolicy struct {
	Type             PolicyType `json:"type" yaml:"type"`
	FlatRateInclTax  *float64   `json:"flat_rate,omitempty" yaml:"flat_rate,omitempty"`
	SubsidyThreshold *float64   `json:"subsidy_threshold,omitempty" yaml:"subsidy_threshold,omitempty"`
	SubsidyShare     *float64   `json:"subsidy_share,omitempty" yaml:"subsidy_share,omitempty"`
}

func NorgesprisPolicy(flatRateInclTax float64) PricingPolicy {
	return PricingPolicy{Type: PolicyNorgespris, FlatRateInclTax: &flatRateInclTax}
}

func SpotWithSubsidyPolicy() PricingPolicy {
	return PricingPolicy{Type: PolicySpotWithSubsidy}.WithDefaults()
}

// FlatRate is the norgespris rate in NOK/kWh incl. VAT.
func (p PricingPolicy) FlatRate() float64 {
	return valueOr(p.FlatRateInclTax, DefaultNorgesprisRate)
}

// Threshold is the spot price above which strømstøtte applies, NOK/kWh ex-VAT.
func (p PricingPolicy) Threshold() float64 {
	return valueOr(p.SubsidyThreshold, DefaultSubsidyThreshold)
}

func (p PricingPolicy) Share() float64 {
	return valueOr(p.SubsidyShare, DefaultSubsidyShare)
}

// WithDefaults sets the parameters of the policy type that were left out.
func (p PricingPolicy) WithDefaults() PricingPolicy {
	switch p.Type {
	case PolicyNorgespris:
		p.FlatRateInclTax = lo.ToPtr(p.FlatRate())
	case PolicySpotWithSubsidy:
		p.SubsidyThreshold = lo.ToPtr(p.Threshold())
		p.SubsidyShare = lo.ToPtr(p.Share())
	}
	return p
}

func (p PricingPolicy) Validate() error {
	if _, err := ParsePolicyType(string(p.Type)); err != nil {
		return err
	}
	if p.FlatRate() < 0 || p.Threshold() < 0 {
		return errors.New("policy rates cannot be negative")
	}
	if share := p.Share(); share < 0 || share > 1 {
		return errors.New("subsidy share must be between 0 and 1")
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Employee is the person being reimbursed.
type Employee struct {
	ID             uuid.UUID     `json:"id"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	Name           string        `json:"name"`
	PriceArea      PriceArea     `json:"price_area"`
	Policy         PricingPolicy `json:"policy"`
}
