package market

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/aristath/intrinsic/internal/domain"
	"github.com/aristath/intrinsic/pkg/formulas"
)

// Fallbacks when market history is unavailable: long-run 10Y Treasury
// yield and S&P 500 return assumptions.
const (
	DefaultRiskFreeRate = 0.04
	DefaultMarketReturn = 0.10
	DefaultBeta         = 1.0
)

// Service derives market-level valuation inputs from price history
type Service struct {
	log zerolog.Logger
}

// NewService creates a market context service
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("service", "market").Logger()}
}

// AnnualizedReturn computes the compound annual return of an index
// close series spanning the given number of years. Falls back to the
// default market return when the series cannot support it.
func (s *Service) AnnualizedReturn(closes []float64, years float64) float64 {
	if len(closes) < 2 || years <= 0 {
		return DefaultMarketReturn
	}

	start, end := closes[0], closes[len(closes)-1]
	if start <= 0 || end <= 0 {
		return DefaultMarketReturn
	}

	return math.Pow(end/start, 1/years) - 1
}

// Beta regresses stock returns against index returns over aligned
// close series: cov(stock, index) / var(index). Returns the default
// beta when the series are too short or mismatched.
func (s *Service) Beta(stockCloses, indexCloses []float64) float64 {
	if len(stockCloses) != len(indexCloses) || len(stockCloses) < 3 {
		return DefaultBeta
	}

	stockReturns := periodReturns(stockCloses)
	indexReturns := periodReturns(indexCloses)

	indexVar := formulas.Variance(indexReturns)
	if indexVar == 0 {
		return DefaultBeta
	}

	return formulas.Covariance(stockReturns, indexReturns) / indexVar
}

// periodReturns converts closes to decimal period returns. talib's ROC
// reports percent change with a zeroed lookback element at the front.
func periodReturns(closes []float64) []float64 {
	roc := talib.Roc(closes, 1)
	returns := make([]float64, 0, len(roc)-1)
	for _, r := range roc[1:] {
		returns = append(returns, r/100)
	}
	return returns
}

// RiskMetrics summarizes the price-side risk of a close series
type RiskMetrics struct {
	AnnualizedReturn float64  `json:"annualized_return"`
	Volatility       float64  `json:"volatility"`
	Sharpe           *float64 `json:"sharpe,omitempty"`
	MaxDrawdown      *float64 `json:"max_drawdown,omitempty"`
}

// Risk computes price-risk diagnostics for a stock's daily closes.
// Returns nil when the series is too short to say anything.
func (s *Service) Risk(closes []float64, years, riskFreeRate float64) *RiskMetrics {
	if len(closes) < 3 {
		return nil
	}

	returns := formulas.Returns(closes)
	return &RiskMetrics{
		AnnualizedReturn: s.AnnualizedReturn(closes, years),
		Volatility:       formulas.AnnualizedVolatility(returns),
		Sharpe:           formulas.SharpeRatio(returns, riskFreeRate),
		MaxDrawdown:      formulas.MaxDrawdown(closes),
	}
}

// BuildContext assembles a MarketContext for one symbol. Missing
// pieces fall back to documented defaults rather than failing: the
// valuation core treats context as already validated.
func (s *Service) BuildContext(symbol string, price float64, riskFreeRate *float64, stockCloses, indexCloses []float64, indexYears float64) domain.MarketContext {
	ctx := domain.MarketContext{
		Symbol:       symbol,
		CurrentPrice: price,
		RiskFreeRate: DefaultRiskFreeRate,
		MarketReturn: s.AnnualizedReturn(indexCloses, indexYears),
		Beta:         s.Beta(stockCloses, indexCloses),
	}
	if riskFreeRate != nil {
		ctx.RiskFreeRate = *riskFreeRate
	}

	s.log.Debug().
		Str("symbol", symbol).
		Float64("beta", ctx.Beta).
		Float64("market_return", ctx.MarketReturn).
		Float64("risk_free_rate", ctx.RiskFreeRate).
		Msg("Market context built")

	return ctx
}
