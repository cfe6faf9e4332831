package main

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Amortized Loan Validation Tests
//
// Simple variant:
//   P' = P × 1.05
//   M  = r × P' / (1 - (1+r)^-n)      r = apr/100/12, n = years × 12
//
// Grace variant:
//   C  = P' + P' × (apr/100/365) × 540
//   M  = C × [r(1+r)^n] / [(1+r)^n - 1]
//
// Zero APR divides the (capitalized) principal evenly over n.

const paymentTolerance = 0.01 // one cent

func assertMoneyEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > paymentTolerance {
		t.Errorf("%s: expected $%.2f, got $%.2f (diff: $%.4f)",
			description, expected, actual, actual-expected)
	}
}

func TestAmortized_SimpleMonthlyPayment(t *testing.T) {
	tests := []struct {
		terms           LoanTerms
		expectedMonthly float64
		description     string
	}{
		{
			terms:           LoanTerms{APR: 10, Principal: 100000, DurationYears: 10},
			expectedMonthly: 1387.58,
			description:     "$100k @ 10% for 10 years",
			// P' = 105000, r = 0.008333, n = 120
			// M = 0.008333 × 105000 / (1 - 1.008333^-120) = 1387.58
		},
		{
			terms:           LoanTerms{APR: 0, Principal: 100000, DurationYears: 10},
			expectedMonthly: 875.00,
			description:     "$100k @ 0% for 10 years",
		},
		{
			terms:           LoanTerms{APR: 0, Principal: 0, DurationYears: 5},
			expectedMonthly: 0,
			description:     "zero principal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			result, err := CalculateAmortizedLoan(tt.terms, SimpleVariant)
			require.NoError(t, err)
			assertMoneyEquals(t, tt.expectedMonthly, result.MonthlyPayment, "monthly payment")
			assert.Equal(t, tt.terms.DurationYears*12, result.TotalPayments)
			assert.InDelta(t, tt.terms.Principal*1.05, result.PrincipalWithFee, 1e-9)
			assert.Equal(t, result.PrincipalWithFee, result.CapitalizedPrincipal)
			assert.Zero(t, result.GraceDays)
		})
	}
}

func TestAmortized_ReferenceScenario(t *testing.T) {
	result, err := CalculateAmortizedLoan(LoanTerms{APR: 10, Principal: 100000, DurationYears: 10}, SimpleVariant)
	require.NoError(t, err)

	assert.InDelta(t, 1387.5827372585, result.MonthlyPayment, 1e-6)
	assert.InDelta(t, 166509.928471020, result.TotalPaid, 1e-5)
	assert.InDelta(t, result.TotalPaid-100000, result.TotalInterest, 1e-9)
}

func TestAmortized_GracePeriod(t *testing.T) {
	result, err := CalculateAmortizedLoan(LoanTerms{APR: 10, Principal: 100000, DurationYears: 10}, GracePeriodVariant)
	require.NoError(t, err)

	// C = 105000 + 105000 × (0.1/365) × 540
	assert.InDelta(t, 120534.2465753, result.CapitalizedPrincipal, 1e-6)
	assert.InDelta(t, 1592.8689504, result.MonthlyPayment, 1e-6)
	assert.InDelta(t, result.MonthlyPayment*120, result.TotalPaid, 1e-9)
	assert.Equal(t, GracePeriodDays, result.GraceDays)
	assert.Equal(t, 540, result.GraceDays)
}

func TestAmortized_GracePeriodZeroAPR(t *testing.T) {
	result, err := CalculateAmortizedLoan(LoanTerms{APR: 0, Principal: 100000, DurationYears: 10}, GracePeriodVariant)
	require.NoError(t, err)

	// No interest accrues, so the grace variant matches the simple one
	assertMoneyEquals(t, 875.00, result.MonthlyPayment, "monthly payment")
	assertMoneyEquals(t, 105000, result.TotalPaid, "total paid")
	assertMoneyEquals(t, 5000, result.TotalInterest, "admin fee")
}

func TestAmortized_GraceCostsMoreThanSimple(t *testing.T) {
	for _, apr := range []float64{0.5, 3, 10, 25, 99} {
		terms := LoanTerms{APR: apr, Principal: 50000, DurationYears: 7}
		simple, err := CalculateAmortizedLoan(terms, SimpleVariant)
		require.NoError(t, err)
		grace, err := CalculateAmortizedLoan(terms, GracePeriodVariant)
		require.NoError(t, err)

		assert.Greater(t, grace.TotalPaid, simple.TotalPaid, "apr %.1f", apr)
	}
}

func TestAmortized_Validation(t *testing.T) {
	tests := []struct {
		name    string
		terms   LoanTerms
		field   string
		message string
	}{
		{"negative apr", LoanTerms{APR: -1, Principal: 1000, DurationYears: 1}, "apr", "APR value should be between 0 and 100"},
		{"apr above 100", LoanTerms{APR: 100.01, Principal: 1000, DurationYears: 1}, "apr", "APR value should be between 0 and 100"},
		{"nan apr", LoanTerms{APR: math.NaN(), Principal: 1000, DurationYears: 1}, "apr", "APR value should be between 0 and 100"},
		{"negative principal", LoanTerms{APR: 5, Principal: -1, DurationYears: 1}, "principal", "Principal value should be a positive number"},
		{"nan principal", LoanTerms{APR: 5, Principal: math.NaN(), DurationYears: 1}, "principal", "Principal value should be a positive number"},
		{"zero duration", LoanTerms{APR: 5, Principal: 1000, DurationYears: 0}, "duration_years", "Duration value should be a positive number"},
		{"negative duration", LoanTerms{APR: 5, Principal: 1000, DurationYears: -3}, "duration_years", "Duration value should be a positive number"},
		{"apr checked first", LoanTerms{APR: 101, Principal: -1, DurationYears: 0}, "apr", "APR value should be between 0 and 100"},
		{"month count overflows", LoanTerms{APR: 5, Principal: 1000, DurationYears: 1<<62 + 1}, "duration_years", "Duration value is too large"},
		{"month count wraps negative", LoanTerms{APR: 5, Principal: 1000, DurationYears: 1<<62 - 1}, "duration_years", "Duration value is too large"},
		{"just above max duration", LoanTerms{APR: 5, Principal: 1000, DurationYears: MaxDurationYears + 1}, "duration_years", "Duration value is too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, variant := range []FormulaVariant{SimpleVariant, GracePeriodVariant} {
				_, err := CalculateAmortizedLoan(tt.terms, variant)
				require.Error(t, err)

				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
				assert.Equal(t, tt.field, validationErr.Field)
				assert.Equal(t, tt.message, validationErr.Message)
				assert.Equal(t, tt.message+" ("+validationErr.Bound+")", err.Error())
			}
		})
	}
}

func TestAmortized_BoundaryValuesAccepted(t *testing.T) {
	for _, terms := range []LoanTerms{
		{APR: 0, Principal: 0, DurationYears: 1},
		{APR: 100, Principal: 1, DurationYears: 1},
	} {
		_, err := CalculateAmortizedLoan(terms, SimpleVariant)
		assert.NoError(t, err, "%+v", terms)
	}
}

func TestAmortized_TotalPaidCoversEveryMonth(t *testing.T) {
	for _, years := range []int{1, 10, 30, 1000} {
		result, err := CalculateAmortizedLoan(LoanTerms{APR: 4, Principal: 1000, DurationYears: years}, SimpleVariant)
		require.NoError(t, err)

		assert.Equal(t, years*12, result.TotalPayments)
		assert.Greater(t, result.MonthlyPayment, 0.0)
		assert.Equal(t, result.MonthlyPayment*float64(years*12), result.TotalPaid)
	}
}

func TestAmortized_UnknownVariant(t *testing.T) {
	_, err := CalculateAmortizedLoan(LoanTerms{APR: 5, Principal: 1000, DurationYears: 1}, FormulaVariant(7))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "variant", validationErr.Field)
}

func TestAmortized_NonFiniteResult(t *testing.T) {
	// A principal near MaxFloat64 overflows once the fee is added
	_, err := CalculateAmortizedLoan(LoanTerms{APR: 5, Principal: math.MaxFloat64, DurationYears: 10}, SimpleVariant)
	require.Error(t, err)

	var computationErr *ComputationError
	require.ErrorAs(t, err, &computationErr)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestAmortized_Deterministic(t *testing.T) {
	terms := LoanTerms{APR: 7.25, Principal: 83000, DurationYears: 15}
	a, err := CalculateAmortizedLoan(terms, GracePeriodVariant)
	require.NoError(t, err)
	b, err := CalculateAmortizedLoan(terms, GracePeriodVariant)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAmortizationSchedule(t *testing.T) {
	for _, variant := range []FormulaVariant{SimpleVariant, GracePeriodVariant} {
		t.Run(variant.String(), func(t *testing.T) {
			result, err := CalculateAmortizedLoan(LoanTerms{APR: 6, Principal: 200000, DurationYears: 25}, variant)
			require.NoError(t, err)

			rows := AmortizationSchedule(result)
			require.Len(t, rows, 300)

			var principalPaid, interestPaid float64
			for _, row := range rows {
				principalPaid += row.Principal
				interestPaid += row.Interest
			}

			assert.Zero(t, rows[len(rows)-1].Balance)
			assertMoneyEquals(t, result.CapitalizedPrincipal, principalPaid, "principal repaid")
			assertMoneyEquals(t, result.TotalPaid, principalPaid+interestPaid, "total paid")

			// Interest share falls as the balance is repaid
			assert.Greater(t, rows[0].Interest, rows[len(rows)-1].Interest)
		})
	}
}

func TestRemainingBalance(t *testing.T) {
	result, err := CalculateAmortizedLoan(LoanTerms{APR: 4, Principal: 190476.19, DurationYears: 25}, SimpleVariant)
	require.NoError(t, err)

	rows := AmortizationSchedule(result)
	for _, p := range []int{1, 12, 60, 150, 299} {
		assertMoneyEquals(t, rows[p-1].Balance, RemainingBalance(result, p), "balance after payment")
	}

	assert.Equal(t, result.CapitalizedPrincipal, RemainingBalance(result, 0))
	assert.Zero(t, RemainingBalance(result, 300))
}

func TestRemainingBalance_ZeroRate(t *testing.T) {
	result, err := CalculateAmortizedLoan(LoanTerms{APR: 0, Principal: 12000, DurationYears: 1}, SimpleVariant)
	require.NoError(t, err)

	assertMoneyEquals(t, 12600*0.5, RemainingBalance(result, 6), "halfway balance")
}

func TestParseFormulaVariant(t *testing.T) {
	tests := []struct {
		input    string
		expected FormulaVariant
		wantErr  bool
	}{
		{"", SimpleVariant, false},
		{"simple", SimpleVariant, false},
		{"Standard", SimpleVariant, false},
		{"grace", GracePeriodVariant, false},
		{" grace-period ", GracePeriodVariant, false},
		{"GRACE_PERIOD", GracePeriodVariant, false},
		{"balloon", SimpleVariant, true},
	}

	for _, tt := range tests {
		v, err := ParseFormulaVariant(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, v, tt.input)
	}
}
