package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/config"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/report"
	"github.com/anicoll/ev-reimbursement/internal/pkg/spotprice"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
	"github.com/anicoll/ev-reimbursement/internal/pkg/usage"
)

var errNoSessions = errors.New("no charging sessions found")

type calculateOptions struct {
	UsagePath  string
	TariffPath string
	Employee   string
	RFID       string
	Area       model.PriceArea
	Policy     model.PricingPolicy
	// Month defaults to the month of the first session.
	Month *model.Month
}

// CalculateCommand prices a usage export offline and writes the monthly report to a file.
func CalculateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts, err := calculateOptionsFrom(c)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	prices, err := spotprice.New(cfg.SpotPrice.Host, cfg.SpotPrice.Timeout, spotprice.WithLocation(loc))
	if err != nil {
		return err
	}

	rep, err := calculate(c.Context, cfg, opts, prices)
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		output = report.FileName(rep, format)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep, loc); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logger.Info("report written",
		zap.String("file", output),
		zap.Stringer("month", rep.Month),
		zap.Int("sessions", len(rep.Sessions)),
		zap.String("total_nok", report.Nok(rep.TotalNok).StringFixed(2)),
		zap.Int("warnings", len(rep.Warnings)))
	for _, w := range rep.Warnings {
		logger.Warn(w)
	}
	return nil
}

func calculateOptionsFrom(c *cli.Context) (calculateOptions, error) {
	area, err := model.ParsePriceArea(c.String("price-area"))
	if err != nil {
		return calculateOptions{}, err
	}
	policyType, err := model.ParsePolicyType(c.String("policy"))
	if err != nil {
		return calculateOptions{}, err
	}
	policy := model.PricingPolicy{
		Type:             policyType,
		FlatRateInclTax:  floatFlag(c, "flat-rate"),
		SubsidyThreshold: floatFlag(c, "subsidy-threshold"),
		SubsidyShare:     floatFlag(c, "subsidy-share"),
	}.WithDefaults()
	if err := policy.Validate(); err != nil {
		return calculateOptions{}, err
	}

	opts := calculateOptions{
		UsagePath:  c.String("usage"),
		TariffPath: c.String("tariffs"),
		Employee:   c.String("employee-name"),
		RFID:       c.String("rfid"),
		Area:       area,
		Policy:     policy,
	}
	if s := c.String("month"); s != "" {
		m, err := model.ParseMonth(s)
		if err != nil {
			return calculateOptions{}, err
		}
		opts.Month = &m
	}
	return opts, nil
}

// floatFlag returns nil for flags not given, so "--subsidy-share 0" is kept as zero.
func floatFlag(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	return lo.ToPtr(c.Float64(name))
}

func calculate(ctx context.Context, cfg *config.Config, opts calculateOptions, prices priceSource) (pricing.MonthlyReport, error) {
	logger := zap.L()
	loc, err := cfg.Location()
	if err != nil {
		return pricing.MonthlyReport{}, err
	}

	sessions, err := readUsage(opts.UsagePath, loc, opts.RFID)
	if err != nil {
		return pricing.MonthlyReport{}, err
	}
	if len(sessions) == 0 {
		return pricing.MonthlyReport{}, errNoSessions
	}
	slices.SortFunc(sessions, func(a, b model.ChargingSession) int {
		return a.Start.Compare(b.Start)
	})
	month := model.MonthOf(sessions[0].Start.In(loc))
	if opts.Month != nil {
		month = *opts.Month
	}

	defaultRate := cfg.Tariff.DefaultRateOre
	var profiles model.TariffProfiles
	if opts.TariffPath != "" {
		tariffs, err := tou.LoadTariffFilePath(opts.TariffPath)
		if err != nil {
			return pricing.MonthlyReport{}, err
		}
		profiles = tariffs.Profiles
		if tariffs.DefaultRateOre > 0 {
			defaultRate = tariffs.DefaultRateOre
		}
	}

	req := pricing.Request{
		Area:     opts.Area,
		Policy:   opts.Policy,
		Profiles: profiles,
		Prices:   model.HourlyPrices{},
	}
	if opts.Policy.Type == model.PolicySpotWithSubsidy {
		from, _ := month.Range(loc)
		last := slices.MaxFunc(sessions, func(a, b model.ChargingSession) int {
			return a.End.Compare(b.End)
		})
		spot, err := prices.GetPricesRange(ctx, opts.Area, model.DateOf(from), model.DateOf(last.End.In(loc)))
		if err != nil {
			return pricing.MonthlyReport{}, err
		}
		req.Prices = spot.Hourly()
		logger.Debug("fetched spot prices", zap.Int("hours", len(spot)))
	}

	employee := model.Employee{
		ID:        uuid.New(),
		Name:      opts.Employee,
		PriceArea: opts.Area,
		Policy:    opts.Policy,
	}
	calc := newCalculator(cfg, loc, defaultRate)
	return calc.CalculateMonth(ctx, req, employee, month, sessions)
}

func readUsage(path string, loc *time.Location, rfid string) ([]model.ChargingSession, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(fh, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	format, err := usage.DetectFormat(filepath.Base(path), "", head[:n])
	if err != nil {
		return nil, err
	}
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	res, err := usage.New(loc, usage.WithRFID(rfid)).Import(fh, format)
	if err != nil {
		return nil, err
	}
	for _, skipped := range res.Skipped {
		zap.L().Warn("skipped usage row", zap.Error(skipped))
	}
	return res.Sessions, nil
}
