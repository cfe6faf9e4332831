package main

import (
	"math"
	"strconv"
)

const (
	AdminFeeRate      = 0.05 // 5% admin fee added to the principal
	GracePeriodMonths = 18
	GracePeriodDays   = GracePeriodMonths * 30 // 540 days of simple interest
	DaysPerYear       = 365
	MaxAPR            = 100.0

	// MaxDurationYears keeps the month count DurationYears*12 within int
	MaxDurationYears = math.MaxInt / 12
)

// ValidateLoanTerms checks the amortized loan inputs against their bounds.
// NaN values fail the range checks.
func ValidateLoanTerms(terms LoanTerms) error {
	if !(terms.APR >= 0 && terms.APR <= MaxAPR) {
		return &ValidationError{
			Field:   "apr",
			Bound:   "0 <= apr <= 100",
			Value:   terms.APR,
			Message: "APR value should be between 0 and 100",
		}
	}
	if !(terms.Principal >= 0) {
		return &ValidationError{
			Field:   "principal",
			Bound:   "principal >= 0",
			Value:   terms.Principal,
			Message: "Principal value should be a positive number",
		}
	}
	if terms.DurationYears <= 0 {
		return &ValidationError{
			Field:   "duration_years",
			Bound:   "duration_years > 0",
			Value:   float64(terms.DurationYears),
			Message: "Duration value should be a positive number",
		}
	}
	if terms.DurationYears > MaxDurationYears {
		return &ValidationError{
			Field:   "duration_years",
			Bound:   "duration_years <= " + strconv.Itoa(MaxDurationYears),
			Value:   float64(terms.DurationYears),
			Message: "Duration value is too large",
		}
	}
	return nil
}

// CalculateAmortizedLoan computes the fixed monthly payment and total cost of the
// amortized loan. The 5% admin fee is always applied; GracePeriodVariant also
// capitalises simple interest accrued over the grace period before amortizing.
func CalculateAmortizedLoan(terms LoanTerms, variant FormulaVariant) (AmortizationResult, error) {
	if err := ValidateLoanTerms(terms); err != nil {
		return AmortizationResult{}, err
	}

	principalWithFee := terms.Principal * (1 + AdminFeeRate)
	totalPayments := terms.DurationYears * 12
	n := float64(totalPayments)

	result := AmortizationResult{
		Variant:              variant,
		PrincipalWithFee:     principalWithFee,
		CapitalizedPrincipal: principalWithFee,
		TotalPayments:        totalPayments,
	}

	switch variant {
	case SimpleVariant:
		monthlyRate := terms.APR / 100 / 12
		result.MonthlyRate = monthlyRate
		if monthlyRate == 0 {
			result.MonthlyPayment = principalWithFee / n
		} else {
			// M = r*P / (1 - (1+r)^-n)
			result.MonthlyPayment = monthlyRate * principalWithFee / (1 - math.Pow(1+monthlyRate, -n))
		}

	case GracePeriodVariant:
		dailyRate := terms.APR / 100 / DaysPerYear
		capitalized := principalWithFee + principalWithFee*dailyRate*GracePeriodDays
		monthlyRate := terms.APR / (12 * 100)

		result.CapitalizedPrincipal = capitalized
		result.MonthlyRate = monthlyRate
		result.GraceDays = GracePeriodDays
		if monthlyRate == 0 {
			result.MonthlyPayment = capitalized / n
		} else {
			// M = P * [r(1+r)^n] / [(1+r)^n - 1]
			factor := math.Pow(1+monthlyRate, n)
			result.MonthlyPayment = capitalized * monthlyRate * factor / (factor - 1)
		}

	default:
		return AmortizationResult{}, &ValidationError{
			Field:   "variant",
			Bound:   "simple | grace",
			Value:   float64(variant),
			Message: "unknown formula variant",
		}
	}

	result.TotalPaid = result.MonthlyPayment * n
	result.TotalInterest = result.TotalPaid - terms.Principal

	if err := checkFinite("amortized loan",
		namedValue{"monthly payment", result.MonthlyPayment},
		namedValue{"total paid", result.TotalPaid},
	); err != nil {
		return AmortizationResult{}, err
	}

	return result, nil
}

// AmortizationSchedule breaks a computed loan into monthly interest, principal and
// remaining balance. The final row absorbs rounding so the balance ends at zero.
func AmortizationSchedule(result AmortizationResult) []ScheduleRow {
	if result.TotalPayments <= 0 {
		return nil
	}

	rows := make([]ScheduleRow, 0, result.TotalPayments)
	balance := result.CapitalizedPrincipal
	for month := 1; month <= result.TotalPayments; month++ {
		interest := balance * result.MonthlyRate
		principal := result.MonthlyPayment - interest
		if month == result.TotalPayments {
			principal = balance
		}
		balance -= principal
		if math.Abs(balance) < 1e-6 {
			balance = 0
		}
		rows = append(rows, ScheduleRow{
			Month:     month,
			Payment:   result.MonthlyPayment,
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
	}
	return rows
}

// RemainingBalance returns the outstanding balance after paymentsMade payments.
// Uses B = P * [(1+r)^n - (1+r)^p] / [(1+r)^n - 1].
func RemainingBalance(result AmortizationResult, paymentsMade int) float64 {
	if paymentsMade <= 0 {
		return result.CapitalizedPrincipal
	}
	if paymentsMade >= result.TotalPayments {
		return 0
	}

	n := float64(result.TotalPayments)
	p := float64(paymentsMade)
	if result.MonthlyRate == 0 {
		return result.CapitalizedPrincipal * (1 - p/n)
	}

	factorN := math.Pow(1+result.MonthlyRate, n)
	factorP := math.Pow(1+result.MonthlyRate, p)
	return result.CapitalizedPrincipal * (factorN - factorP) / (factorN - 1)
}
