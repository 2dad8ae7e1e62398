package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"levsim/internal/logger"
	"levsim/internal/series"
)

// ErrNoData is returned when the data source has no prices for a ticker and range.
var ErrNoData = errors.New("no data")

// PriceProvider returns adjusted daily closing prices for a ticker, ordered by date.
type PriceProvider interface {
	FetchAdjClose(ctx context.Context, ticker string, start, end time.Time) (series.Series, error)
}

// YahooProvider fetches daily adjusted closes from the Yahoo v8 chart API.
// Each call makes a single request; requests are spaced by a rate limiter.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewYahooProvider(baseURL string, requestsPerSec float64, log *logger.Logger) *YahooProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &YahooProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		log:     log,
	}
}

// FetchAdjClose returns the adjusted close series for ticker between start and
// end inclusive, one point per trading day, dated at midnight UTC of the
// exchange-local calendar day.
func (p *YahooProvider) FetchAdjClose(ctx context.Context, ticker string, start, end time.Time) (series.Series, error) {
	sym := strings.ToUpper(strings.TrimSpace(ticker))
	if sym == "" {
		return series.Series{}, errors.New("empty ticker")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return series.Series{}, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits&includeAdjustedClose=true",
		p.baseURL, url.PathEscape(sym), start.Unix(), end.AddDate(0, 0, 1).Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return series.Series{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/history", sym))

	log := p.log.WithField("ticker", sym)
	log.Debug("yahoo: fetching daily chart")

	resp, err := p.client.Do(req)
	if err != nil {
		return series.Series{}, fmt.Errorf("%s: %w", sym, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return series.Series{}, fmt.Errorf("%s: failed to read yahoo response: %w", sym, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests"):
		return series.Series{}, fmt.Errorf("%s: yahoo returned 429: Edge: Too Many Requests", sym)
	case resp.StatusCode == http.StatusNotFound:
		return series.Series{}, fmt.Errorf("%s: %w: %s", sym, ErrNoData, preview(body))
	case resp.StatusCode != http.StatusOK:
		return series.Series{}, fmt.Errorf("%s: yahoo returned %d: %s", sym, resp.StatusCode, preview(body))
	case strings.HasPrefix(string(body), "<"):
		return series.Series{}, fmt.Errorf("%s: yahoo returned non-json body: %s", sym, preview(body))
	}

	var yc yahooChartResp
	if err := json.Unmarshal(body, &yc); err != nil {
		return series.Series{}, fmt.Errorf("%s: failed to parse yahoo json: %v; body: %s", sym, err, preview(body))
	}
	if yc.Chart.Error != nil {
		return series.Series{}, fmt.Errorf("%s: %w: %s", sym, ErrNoData, yc.Chart.Error.Description)
	}
	if len(yc.Chart.Result) == 0 {
		return series.Series{}, fmt.Errorf("%s: %w", sym, ErrNoData)
	}

	res := yc.Chart.Result[0]
	var px []*float64
	if len(res.Indicators.AdjClose) > 0 && len(res.Indicators.AdjClose[0].AdjClose) > 0 {
		px = res.Indicators.AdjClose[0].AdjClose
	} else if len(res.Indicators.Quote) > 0 {
		log.Warn("yahoo: adjusted close missing, using raw close")
		px = res.Indicators.Quote[0].Close
	}

	ts, cl := dropMissing(res.Timestamp, px)
	if len(ts) == 0 {
		return series.Series{}, fmt.Errorf("%s: %w", sym, ErrNoData)
	}

	dates, values := toDaily(ts, cl, exchangeLocation(res.Meta.ExchangeTimezoneName))
	s, err := series.New(sym, dates, values)
	if err != nil {
		return series.Series{}, err
	}
	log.WithField("points", s.Len()).Debug("yahoo: fetched")
	return s, nil
}

// toDaily maps bar timestamps to exchange-local calendar days. Yahoo sometimes
// appends a live bar on the same day as the last regular bar; the later value
// wins.
func toDaily(ts []int64, cl []float64, loc *time.Location) ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(ts))
	values := make([]float64, 0, len(cl))
	for i, t := range ts {
		lt := time.Unix(t, 0).In(loc)
		d := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(dates); n > 0 && !d.After(dates[n-1]) {
			if d.Equal(dates[n-1]) {
				values[n-1] = cl[i]
			}
			continue
		}
		dates = append(dates, d)
		values = append(values, cl[i])
	}
	return dates, values
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
