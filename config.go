package main

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// AmortizedConfig holds the fixed-rate loan inputs
type AmortizedConfig struct {
	APR           float64        `yaml:"apr" json:"apr"`                       // Percentage points (10 = 10%)
	Principal     float64        `yaml:"principal" json:"principal"`           // Loan amount before admin fee
	DurationYears int            `yaml:"duration_years" json:"duration_years"` // 1-30 in the UI
	Variant       FormulaVariant `yaml:"variant" json:"variant"`               // "simple" or "grace"
}

// Terms converts the config section into calculator input
func (a *AmortizedConfig) Terms() LoanTerms {
	return LoanTerms{
		APR:           a.APR,
		Principal:     a.Principal,
		DurationYears: a.DurationYears,
	}
}

// IncomeShareConfig holds the income-share loan inputs
type IncomeShareConfig struct {
	InitialIncome  float64 `yaml:"initial_income" json:"initial_income"`
	AnnualIncrease float64 `yaml:"annual_increase" json:"annual_increase"` // Decimal (0.04 = 4%)
	IncomeShare    float64 `yaml:"income_share" json:"income_share"`       // Decimal (0.10 = 10%)
	RepaymentCap   float64 `yaml:"repayment_cap" json:"repayment_cap"`     // Explicit cap; 0 = derive from cap_multiple
	CapMultiple    float64 `yaml:"cap_multiple" json:"cap_multiple"`       // Cap as a multiple of the amortized principal (e.g. 2)
}

// EffectiveCap returns the repayment cap, deriving it from the loan principal when
// no explicit cap is set
func (ic *IncomeShareConfig) EffectiveCap(principal float64) float64 {
	if ic.RepaymentCap > 0 {
		return ic.RepaymentCap
	}
	if ic.CapMultiple > 0 {
		return ic.CapMultiple * principal
	}
	return 0
}

// LabelConfig holds the display names of the two products
type LabelConfig struct {
	Amortized   string `yaml:"amortized" json:"amortized"`
	IncomeShare string `yaml:"income_share" json:"income_share"`
}

// SensitivityConfig holds the APR × income growth sweep parameters
type SensitivityConfig struct {
	APRMin    float64 `yaml:"apr_min" json:"apr_min"`       // Percentage points
	APRMax    float64 `yaml:"apr_max" json:"apr_max"`       // Percentage points
	APRStep   float64 `yaml:"apr_step" json:"apr_step"`     // Percentage points
	GrowthMin float64 `yaml:"growth_min" json:"growth_min"` // Decimal
	GrowthMax float64 `yaml:"growth_max" json:"growth_max"` // Decimal
	StepSize  float64 `yaml:"step_size" json:"step_size"`   // Decimal step for growth
}

// ReportConfig holds presentation options for generated reports
type ReportConfig struct {
	ShowAdditionalCharts bool   `yaml:"show_additional_charts" json:"show_additional_charts"`
	OutputDir            string `yaml:"output_dir" json:"output_dir"`
	Notes                string `yaml:"notes" json:"notes"` // Markdown shown under the inputs
}

// ServerConfig holds web mode settings. Every field can be overridden from the
// environment.
type ServerConfig struct {
	Environment       string        `yaml:"environment" json:"-" env:"LOANCMP_ENVIRONMENT" env-default:"development"`
	Addr              string        `yaml:"addr" json:"-" env:"LOANCMP_ADDR" env-default:"localhost:0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" json:"-" env:"LOANCMP_READ_TIMEOUT" env-default:"15s"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" json:"-" env:"LOANCMP_READ_HEADER_TIMEOUT" env-default:"5s"`
	WriteTimeout      time.Duration `yaml:"write_timeout" json:"-" env:"LOANCMP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" json:"-" env:"LOANCMP_IDLE_TIMEOUT" env-default:"60s"`
	MetricsPath       string        `yaml:"metrics_path" json:"-" env:"LOANCMP_METRICS_PATH" env-default:"/metrics"`
	RedisAddr         string        `yaml:"redis_addr" json:"-" env:"LOANCMP_REDIS_ADDR"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"-" env:"LOANCMP_CACHE_TTL" env-default:"10m"`
}

// Config holds the complete configuration
type Config struct {
	Amortized   AmortizedConfig   `yaml:"amortized" json:"amortized"`
	IncomeShare IncomeShareConfig `yaml:"income_share" json:"income_share"`
	Labels      LabelConfig       `yaml:"labels" json:"labels"`
	Sensitivity SensitivityConfig `yaml:"sensitivity" json:"sensitivity"`
	Report      ReportConfig      `yaml:"report" json:"report"`
	Server      ServerConfig      `yaml:"server" json:"-"`
}

// IncomeShareTerms converts the config into income-share calculator input
func (c *Config) IncomeShareTerms() IncomeShareTerms {
	return IncomeShareTerms{
		InitialIncome:      c.IncomeShare.InitialIncome,
		AnnualIncreaseRate: c.IncomeShare.AnnualIncrease,
		IncomeSharePercent: c.IncomeShare.IncomeShare,
		RepaymentCap:       c.IncomeShare.EffectiveCap(c.Amortized.Principal),
	}
}

// AmortizedLabel returns the display name of the amortized product
func (c *Config) AmortizedLabel() string {
	if c.Labels.Amortized == "" {
		return "Fixed-Rate Loan"
	}
	return c.Labels.Amortized
}

// IncomeShareLabel returns the display name of the income-share product
func (c *Config) IncomeShareLabel() string {
	if c.Labels.IncomeShare == "" {
		return "Income Share Loan"
	}
	return c.Labels.IncomeShare
}

// Clone returns a copy safe to modify
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return parseConfig(string(data))
}

// parseConfig unmarshals YAML content on top of the embedded defaults, so a partial
// file only overrides what it sets
func parseConfig(content string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if err := yaml.Unmarshal([]byte(preprocessPercentages(content)), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Loan Comparison Configuration
# Generated interactively - feel free to edit manually
#
# ═══════════════════════════════════════════════════════════════════════════════
# VALUE FORMATS
# ═══════════════════════════════════════════════════════════════════════════════
#   amortized.apr is in percentage points: 10 = 10% APR (no % sign)
#   Other rates: 0.04 = 4% (or write 4%)
#   Money: plain numbers (e.g., 100000)
#
# ═══════════════════════════════════════════════════════════════════════════════
# RUN COMMANDS
# ═══════════════════════════════════════════════════════════════════════════════
#   ./goLoanCompare                       Console comparison
#   ./goLoanCompare --html                HTML report with charts
#   ./goLoanCompare --pdf                 PDF report
#   ./goLoanCompare --sensitivity         APR × income growth sensitivity grid
#   ./goLoanCompare --web                 Web server mode
#   ./goLoanCompare --help                Show all options

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// LoadDefaultConfig loads the default configuration from embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	content := preprocessPercentages(defaultConfigYAML)

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnvOverrides fills server settings from LOANCMP_* environment variables
func applyEnvOverrides(config *Config) error {
	if err := cleanenv.ReadEnv(&config.Server); err != nil {
		return fmt.Errorf("could not read environment: %w", err)
	}
	return nil
}

var percentPattern = regexp.MustCompile(`(:\s*)(-?\d+\.?\d*)%`)

// preprocessPercentages converts percentage values like "5%" to decimal "0.05"
func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := strconv.ParseFloat(parts[2], 64)
			if err == nil {
				return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
			}
		}
		return match
	})
}

// ValidateConfig returns the config fields that are missing for a comparison run
func ValidateConfig(config *Config) []string {
	var missing []string

	if config.Amortized.Principal <= 0 {
		missing = append(missing, "amortized.principal")
	}
	if config.Amortized.DurationYears <= 0 {
		missing = append(missing, "amortized.duration_years")
	}
	if config.IncomeShare.InitialIncome <= 0 {
		missing = append(missing, "income_share.initial_income")
	}
	if config.IncomeShare.IncomeShare <= 0 {
		missing = append(missing, "income_share.income_share")
	}
	if config.IncomeShare.EffectiveCap(config.Amortized.Principal) <= 0 {
		missing = append(missing, "income_share.repayment_cap")
	}

	return missing
}

// MaxSensitivitySteps caps the number of values on each sensitivity axis
const MaxSensitivitySteps = 50

// ValidateSensitivityConfig returns the sensitivity fields that are missing or
// whose step would put more than MaxSensitivitySteps values on an axis
func ValidateSensitivityConfig(config *Config) []string {
	var missing []string
	s := config.Sensitivity

	aprRangeOK := s.APRMax > 0 && s.APRMax >= s.APRMin
	if !aprRangeOK {
		missing = append(missing, "sensitivity.apr_max")
	}
	if s.APRStep <= 0 || (aprRangeOK && !withinStepLimit(s.APRMin, s.APRMax, s.APRStep)) {
		missing = append(missing, "sensitivity.apr_step")
	}
	growthRangeOK := s.GrowthMax >= s.GrowthMin
	if !growthRangeOK {
		missing = append(missing, "sensitivity.growth_max")
	}
	if s.StepSize <= 0 || (growthRangeOK && !withinStepLimit(s.GrowthMin, s.GrowthMax, s.StepSize)) {
		missing = append(missing, "sensitivity.step_size")
	}

	return missing
}

// withinStepLimit reports whether stepping from min to max builds at most MaxSensitivitySteps values
func withinStepLimit(min, max, step float64) bool {
	count := math.Floor((max-min)/step+1e-6) + 1
	return !math.IsNaN(count) && count <= MaxSensitivitySteps
}

// GetDefaultValue returns a default value from the default config for display purposes
func GetDefaultValue(fieldPath string, defaultConfig *Config) string {
	if defaultConfig == nil {
		return ""
	}

	switch fieldPath {
	case "amortized.apr":
		return strconv.FormatFloat(defaultConfig.Amortized.APR, 'f', -1, 64)
	case "amortized.principal":
		return formatDefaultMoney(defaultConfig.Amortized.Principal)
	case "amortized.duration_years":
		return strconv.Itoa(defaultConfig.Amortized.DurationYears)
	case "amortized.variant":
		return defaultConfig.Amortized.Variant.String()
	case "income_share.initial_income":
		return formatDefaultMoney(defaultConfig.IncomeShare.InitialIncome)
	case "income_share.annual_increase":
		return formatDefaultPercent(defaultConfig.IncomeShare.AnnualIncrease)
	case "income_share.income_share":
		return formatDefaultPercent(defaultConfig.IncomeShare.IncomeShare)
	case "income_share.cap_multiple":
		return strconv.FormatFloat(defaultConfig.IncomeShare.CapMultiple, 'f', -1, 64)
	}

	return ""
}

func formatDefaultMoney(amount float64) string {
	if amount >= 1000 && amount == float64(int64(amount/1000))*1000 {
		return fmt.Sprintf("%dk", int64(amount/1000))
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func formatDefaultPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', -1, 64) + "%"
}
