package main

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteComparisonCSV writes one row per month with both cumulative series and the
// income-share payment and income for that month's year
func WriteComparisonCSV(w io.Writer, c Comparison) error {
	cw := csv.NewWriter(w)

	header := []string{
		"month",
		"year",
		"amortized_payment",
		"amortized_cumulative",
		"income_share_payment",
		"income_share_cumulative",
		"monthly_income",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	months := len(c.AmortizedCumulative)
	if len(c.IncomeShareCumulative) > months {
		months = len(c.IncomeShareCumulative)
	}

	for m := 1; m <= months; m++ {
		year := (m + 11) / 12
		amortizedPayment := 0.0
		if m <= c.Amortized.TotalPayments {
			amortizedPayment = c.Amortized.MonthlyPayment
		}
		incomeSharePayment, monthlyIncome := 0.0, 0.0
		if year <= len(c.Monthly) {
			incomeSharePayment = c.Monthly[year-1].Payment
			monthlyIncome = c.Monthly[year-1].Income
		}

		record := []string{
			strconv.Itoa(m),
			strconv.Itoa(year),
			formatCSVMoney(amortizedPayment),
			formatCSVMoney(c.AmortizedCumulative.AmountAt(m)),
			formatCSVMoney(incomeSharePayment),
			formatCSVMoney(c.IncomeShareCumulative.AmountAt(m)),
			formatCSVMoney(monthlyIncome),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCSVMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
