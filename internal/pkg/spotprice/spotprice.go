package spotprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

const DefaultHost = "https://www.hvakosterstrommen.no"

var (
	// ErrNotPublished is returned when the day-ahead prices for a date are not available yet.
	ErrNotPublished = errors.New("spot prices not published")
	ErrUpstream     = errors.New("spot price upstream error")
)

type interval struct {
	NokPerKwh float64   `json:"NOK_per_kWh"`
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
}

type client struct {
	host       string
	httpClient *http.Client
	loc        *time.Location
	logger     *zap.Logger
}

func WithHTTPClient(c *http.Client) func(*client) {
	return func(cl *client) {
		cl.httpClient = c
	}
}

func WithLocation(loc *time.Location) func(*client) {
	return func(cl *client) {
		cl.loc = loc
	}
}

func New(host string, timeout time.Duration, opts ...func(*client)) (*client, error) {
	if host == "" {
		host = DefaultHost
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("invalid spot price host %q: %w", host, err)
	}
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		return nil, err
	}
	c := &client{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
		logger:     zap.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetPrices returns the hourly day-ahead prices (NOK/kWh ex. VAT) for one local day.
// Quarter-hour intervals are averaged into their hour.
func (c *client) GetPrices(ctx context.Context, area model.PriceArea, date model.Date) (model.SpotPrices, error) {
	prices, err := c.getPrices(ctx, area, date)
	metrics.IncSpotPriceFetch(area.String(), err)
	return prices, err
}

func (c *client) getPrices(ctx context.Context, area model.PriceArea, date model.Date) (model.SpotPrices, error) {
	u := fmt.Sprintf("%s/api/v1/prices/%04d/%02d-%02d_%s.json", c.host, date.Year, int(date.Month), date.Day, area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotPublished, area, date)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, u, resp.StatusCode)
	}

	var intervals []interval
	if err := json.NewDecoder(resp.Body).Decode(&intervals); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}

	prices := c.hourly(area, intervals, time.Now().UTC())
	c.logger.Debug("fetched spot prices",
		zap.Stringer("area", area),
		zap.Stringer("date", date),
		zap.Int("intervals", len(intervals)),
		zap.Int("hours", len(prices)))
	return prices, nil
}

// GetPricesRange fetches every local day between from and to inclusive. Days that are
// not yet published are skipped.
func (c *client) GetPricesRange(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error) {
	var out model.SpotPrices
	for d := from; !d.After(to); d = d.AddDays(1) {
		prices, err := c.GetPrices(ctx, area, d)
		if errors.Is(err, ErrNotPublished) {
			c.logger.Warn("spot prices not published", zap.Stringer("area", area), zap.Stringer("date", d))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, prices...)
	}
	return out, nil
}

func (c *client) hourly(area model.PriceArea, intervals []interval, fetchedAt time.Time) model.SpotPrices {
	groups := lo.GroupBy(intervals, func(i interval) time.Time {
		return i.TimeStart.UTC().Truncate(time.Hour)
	})
	out := make(model.SpotPrices, 0, len(groups))
	for hour, group := range groups {
		mean := lo.Mean(lo.Map(group, func(i interval, _ int) float64 {
			return i.NokPerKwh
		}))
		out = append(out, model.SpotPrice{
			Area:      area,
			HourStart: hour.In(c.loc),
			NokPerKwh: mean,
			FetchedAt: fetchedAt,
		})
	}
	slices.SortFunc(out, func(a, b model.SpotPrice) int {
		return a.HourStart.Compare(b.HourStart)
	})
	return out
}
