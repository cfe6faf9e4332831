package main

import (
	"context"

	"go.uber.org/zap"
)

// Comparison bundles both calculator results and every derived chart series
type Comparison struct {
	AmortizedLabel   string `json:"amortized_label"`
	IncomeShareLabel string `json:"income_share_label"`

	Amortized   AmortizationResult `json:"amortized"`
	IncomeShare IncomeShareResult  `json:"income_share"`

	AmortizedCumulative   CumulativeSeries  `json:"amortized_cumulative"`
	IncomeShareCumulative CumulativeSeries  `json:"income_share_cumulative"`
	Combined              []LabeledPoint    `json:"combined"`
	Yearly                []YearIncomePoint `json:"yearly"`
	Monthly               []YearIncomePoint `json:"monthly"`

	BreakEvenMonth int     `json:"break_even_month,omitempty"` // First month income-share cumulative exceeds amortized
	Cheaper        Product `json:"cheaper"`
	Savings        float64 `json:"savings"` // Total-paid difference in favour of Cheaper
}

// CheaperLabel returns the display name of the cheaper product
func (c Comparison) CheaperLabel() string {
	if c.Cheaper == IncomeShareProduct {
		return c.IncomeShareLabel
	}
	return c.AmortizedLabel
}

// RunComparison runs both calculators for the given config and derives the chart
// series. Calculator errors are returned unchanged.
func RunComparison(ctx context.Context, config *Config) (Comparison, error) {
	amortized, err := CalculateAmortizedLoan(config.Amortized.Terms(), config.Amortized.Variant)
	if err != nil {
		loggerFrom(ctx).Debug("amortized calculation failed", zap.Error(err))
		calculationsTotal.WithLabelValues(AmortizedProduct.String(), outcomeLabel(err)).Inc()
		return Comparison{}, err
	}
	calculationsTotal.WithLabelValues(AmortizedProduct.String(), outcomeLabel(nil)).Inc()

	incomeShare, err := CalculateIncomeShareLoan(config.IncomeShareTerms())
	if err != nil {
		loggerFrom(ctx).Debug("income share calculation failed", zap.Error(err))
		calculationsTotal.WithLabelValues(IncomeShareProduct.String(), outcomeLabel(err)).Inc()
		return Comparison{}, err
	}
	calculationsTotal.WithLabelValues(IncomeShareProduct.String(), outcomeLabel(nil)).Inc()

	return buildComparison(config, amortized, incomeShare), nil
}

func buildComparison(config *Config, amortized AmortizationResult, incomeShare IncomeShareResult) Comparison {
	c := Comparison{
		AmortizedLabel:   config.AmortizedLabel(),
		IncomeShareLabel: config.IncomeShareLabel(),
		Amortized:        amortized,
		IncomeShare:      incomeShare,
	}

	c.AmortizedCumulative = CumulativeMonthly(amortized.MonthlyPayment, amortized.TotalPayments)
	c.IncomeShareCumulative = CumulativeFromYearlySeries(incomeShare.MonthlyPayments)
	c.Combined = CombinedSeries(c.AmortizedCumulative, c.AmortizedLabel, c.IncomeShareCumulative, c.IncomeShareLabel)
	c.Yearly = YearlyWithIncome(incomeShare.YearlyPayments, config.IncomeShare.InitialIncome, config.IncomeShare.AnnualIncrease)
	c.Monthly = MonthlyWithIncome(incomeShare.MonthlyPayments, config.IncomeShare.InitialIncome, config.IncomeShare.AnnualIncrease)
	c.BreakEvenMonth = BreakEvenMonth(c.AmortizedCumulative, c.IncomeShareCumulative)

	if incomeShare.TotalRepayment < amortized.TotalPaid {
		c.Cheaper = IncomeShareProduct
		c.Savings = amortized.TotalPaid - incomeShare.TotalRepayment
	} else {
		c.Cheaper = AmortizedProduct
		c.Savings = incomeShare.TotalRepayment - amortized.TotalPaid
	}

	return c
}
