package server

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
	"github.com/anicoll/ev-reimbursement/pkg/api"
)

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func priceAreaFrom(a api.PriceArea) (model.PriceArea, error) {
	area, err := model.ParsePriceArea(string(a))
	if err != nil {
		return "", badRequest(err)
	}
	return area, nil
}

// policyFrom validates the policy and fills the parameters left out of the payload.
func policyFrom(p api.Policy) (model.PricingPolicy, error) {
	policy := model.PricingPolicy{
		Type:             model.PolicyType(p.Type),
		FlatRateInclTax:  p.FlatRate,
		SubsidyThreshold: p.SubsidyThreshold,
		SubsidyShare:     p.SubsidyShare,
	}
	if err := policy.Validate(); err != nil {
		return model.PricingPolicy{}, badRequest(err)
	}
	return policy.WithDefaults(), nil
}

func optionalDate(s *api.Date) (*model.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		return nil, badRequest(err)
	}
	return &d, nil
}

func tariffProfileFrom(in api.TariffProfile) (model.TariffProfile, error) {
	profile := model.TariffProfile{
		Name:                  in.Name,
		IncludePublicHolidays: lo.FromPtr(in.IncludePublicHolidays),
		RatesIncludeTax:       lo.FromPtr(in.RatesIncludeTax),
	}
	var err error
	if profile.EffectiveFrom, err = optionalDate(in.EffectiveFrom); err != nil {
		return model.TariffProfile{}, err
	}
	if profile.EffectiveTo, err = optionalDate(in.EffectiveTo); err != nil {
		return model.TariffProfile{}, err
	}
	for _, h := range lo.FromPtr(in.Holidays) {
		d, err := model.ParseDate(h)
		if err != nil {
			return model.TariffProfile{}, badRequest(err)
		}
		profile.Holidays = append(profile.Holidays, d)
	}
	for i, w := range in.Windows {
		start, err := model.ParseClockTime(w.StartTime)
		if err != nil {
			return model.TariffProfile{}, badRequest(fmt.Errorf("window %d: %w", i, err))
		}
		end, err := model.ParseClockTime(w.EndTime)
		if err != nil {
			return model.TariffProfile{}, badRequest(fmt.Errorf("window %d: %w", i, err))
		}
		profile.Windows = append(profile.Windows, model.TariffWindow{
			DayOfWeek:     w.DayOfWeek,
			Start:         start,
			End:           end,
			EnergyRateOre: w.EnergyRate,
			TimeRateOre:   w.TimeRate,
		})
	}
	return profile, nil
}

func quoteRequestFrom(in api.CalculateRequest) (reimbursement.QuoteRequest, error) {
	area, err := priceAreaFrom(in.PriceArea)
	if err != nil {
		return reimbursement.QuoteRequest{}, err
	}
	policy, err := policyFrom(in.Policy)
	if err != nil {
		return reimbursement.QuoteRequest{}, err
	}

	var profiles model.TariffProfiles
	for _, p := range lo.FromPtr(in.TariffProfiles) {
		profile, err := tariffProfileFrom(p)
		if err != nil {
			return reimbursement.QuoteRequest{}, err
		}
		profiles = append(profiles, profile)
	}
	if err := tou.ValidateProfiles(profiles); err != nil {
		return reimbursement.QuoteRequest{}, badRequest(err)
	}

	var loc *time.Location
	if tz := lo.FromPtr(in.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return reimbursement.QuoteRequest{}, badRequest(err)
		}
	}

	sessions := make([]model.ChargingSession, 0, len(in.Sessions))
	for i, si := range in.Sessions {
		session, err := model.NewChargingSession(lo.FromPtr(si.Rfid), si.Start, si.End, si.Kwh)
		if err != nil {
			return reimbursement.QuoteRequest{}, fmt.Errorf("session %d: %w", i, err)
		}
		sessions = append(sessions, session)
	}

	req := reimbursement.QuoteRequest{
		Request: pricing.Request{
			Area:     area,
			Policy:   policy,
			Profiles: profiles,
		},
		Sessions: sessions,
		Location: loc,
	}
	if prices := lo.FromPtr(in.SpotPrices); len(prices) > 0 {
		req.Prices = model.SpotPrices(lo.Map(prices, func(p api.SpotPrice, _ int) model.SpotPrice {
			return model.SpotPrice{Area: area, HourStart: p.HourStart, NokPerKwh: p.NokPerKwh}
		})).Hourly()
	}
	return req, nil
}
