package rules

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// LaborRateBenchmark is one hourly-rate row from GSA schedule data.
type LaborRateBenchmark struct {
	LaborCategory string
	MinRate       decimal.Decimal
	MaxRate       decimal.Decimal
	MedianRate    decimal.Decimal
	AverageRate   decimal.Decimal
	SampleSize    int
	DataSource    string
}

// ContractValueBenchmark is one contract-value row keyed by NAICS.
type ContractValueBenchmark struct {
	NAICSCode    string
	PSCCode      string
	MinValue     decimal.Decimal
	MaxValue     decimal.Decimal
	MedianValue  decimal.Decimal
	AverageValue decimal.Decimal
	SampleSize   int
	Period       string
}

func rate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var laborRateBenchmarks = map[string]LaborRateBenchmark{
	// IT labor categories
	"program_manager": {
		LaborCategory: "Program Manager",
		MinRate:       rate("125.00"), MaxRate: rate("225.00"),
		MedianRate: rate("175.00"), AverageRate: rate("172.50"),
		SampleSize: 500, DataSource: "GSA IT Schedule 70",
	},
	"project_manager": {
		LaborCategory: "Project Manager",
		MinRate:       rate("95.00"), MaxRate: rate("175.00"),
		MedianRate: rate("135.00"), AverageRate: rate("132.00"),
		SampleSize: 800, DataSource: "GSA IT Schedule 70",
	},
	"senior_engineer": {
		LaborCategory: "Senior Software Engineer",
		MinRate:       rate("110.00"), MaxRate: rate("195.00"),
		MedianRate: rate("155.00"), AverageRate: rate("152.00"),
		SampleSize: 1200, DataSource: "GSA IT Schedule 70",
	},
	"engineer": {
		LaborCategory: "Software Engineer",
		MinRate:       rate("75.00"), MaxRate: rate("145.00"),
		MedianRate: rate("110.00"), AverageRate: rate("108.00"),
		SampleSize: 1500, DataSource: "GSA IT Schedule 70",
	},
	"junior_engineer": {
		LaborCategory: "Junior Software Engineer",
		MinRate:       rate("55.00"), MaxRate: rate("95.00"),
		MedianRate: rate("72.00"), AverageRate: rate("73.50"),
		SampleSize: 900, DataSource: "GSA IT Schedule 70",
	},
	"senior_analyst": {
		LaborCategory: "Senior Systems Analyst",
		MinRate:       rate("95.00"), MaxRate: rate("165.00"),
		MedianRate: rate("125.00"), AverageRate: rate("127.00"),
		SampleSize: 700, DataSource: "GSA IT Schedule 70",
	},
	"analyst": {
		LaborCategory: "Systems Analyst",
		MinRate:       rate("65.00"), MaxRate: rate("125.00"),
		MedianRate: rate("92.00"), AverageRate: rate("94.00"),
		SampleSize: 1100, DataSource: "GSA IT Schedule 70",
	},
	"security_engineer": {
		LaborCategory: "Cybersecurity Engineer",
		MinRate:       rate("115.00"), MaxRate: rate("210.00"),
		MedianRate: rate("160.00"), AverageRate: rate("158.00"),
		SampleSize: 450, DataSource: "GSA IT Schedule 70",
	},
	"data_scientist": {
		LaborCategory: "Data Scientist",
		MinRate:       rate("105.00"), MaxRate: rate("195.00"),
		MedianRate: rate("150.00"), AverageRate: rate("148.00"),
		SampleSize: 350, DataSource: "GSA IT Schedule 70",
	},
	"cloud_architect": {
		LaborCategory: "Cloud Solutions Architect",
		MinRate:       rate("130.00"), MaxRate: rate("235.00"),
		MedianRate: rate("180.00"), AverageRate: rate("178.00"),
		SampleSize: 280, DataSource: "GSA IT Schedule 70",
	},

	// Professional services
	"consultant_senior": {
		LaborCategory: "Senior Consultant",
		MinRate:       rate("115.00"), MaxRate: rate("225.00"),
		MedianRate: rate("165.00"), AverageRate: rate("162.00"),
		SampleSize: 600, DataSource: "GSA PSS Schedule",
	},
	"consultant": {
		LaborCategory: "Consultant",
		MinRate:       rate("75.00"), MaxRate: rate("155.00"),
		MedianRate: rate("110.00"), AverageRate: rate("112.00"),
		SampleSize: 850, DataSource: "GSA PSS Schedule",
	},
	"subject_matter_expert": {
		LaborCategory: "Subject Matter Expert",
		MinRate:       rate("140.00"), MaxRate: rate("285.00"),
		MedianRate: rate("200.00"), AverageRate: rate("195.00"),
		SampleSize: 400, DataSource: "GSA PSS Schedule",
	},

	// Administrative
	"admin_assistant": {
		LaborCategory: "Administrative Assistant",
		MinRate:       rate("35.00"), MaxRate: rate("65.00"),
		MedianRate: rate("48.00"), AverageRate: rate("49.00"),
		SampleSize: 1000, DataSource: "GSA Schedule",
	},
	"executive_assistant": {
		LaborCategory: "Executive Assistant",
		MinRate:       rate("50.00"), MaxRate: rate("95.00"),
		MedianRate: rate("70.00"), AverageRate: rate("71.00"),
		SampleSize: 500, DataSource: "GSA Schedule",
	},
}

var naicsBenchmarks = map[string]ContractValueBenchmark{
	"541511": {
		NAICSCode: "541511", PSCCode: "D302",
		MinValue: rate("100000"), MaxValue: rate("50000000"),
		MedianValue: rate("2500000"), AverageValue: rate("5200000"),
		SampleSize: 2500, Period: "FY2024",
	},
	"541512": {
		NAICSCode: "541512", PSCCode: "D306",
		MinValue: rate("150000"), MaxValue: rate("75000000"),
		MedianValue: rate("3500000"), AverageValue: rate("7800000"),
		SampleSize: 1800, Period: "FY2024",
	},
	"541519": {
		NAICSCode: "541519", PSCCode: "D399",
		MinValue: rate("75000"), MaxValue: rate("25000000"),
		MedianValue: rate("1800000"), AverageValue: rate("3200000"),
		SampleSize: 1200, Period: "FY2024",
	},
	"541330": {
		NAICSCode: "541330", PSCCode: "C211",
		MinValue: rate("200000"), MaxValue: rate("100000000"),
		MedianValue: rate("5000000"), AverageValue: rate("12500000"),
		SampleSize: 900, Period: "FY2024",
	},
	"561210": {
		NAICSCode: "561210", PSCCode: "R699",
		MinValue: rate("50000"), MaxValue: rate("15000000"),
		MedianValue: rate("850000"), AverageValue: rate("1800000"),
		SampleSize: 1500, Period: "FY2024",
	},
}

// LaborRate returns the benchmark for a labor category key.
func LaborRate(category string) (LaborRateBenchmark, bool) {
	b, ok := laborRateBenchmarks[category]
	return b, ok
}

// LaborRates returns all labor rate benchmarks keyed by category.
func LaborRates() map[string]LaborRateBenchmark { return laborRateBenchmarks }

// NAICSBenchmark resolves a contract value benchmark by exact NAICS
// match, falling back to the lowest-coded row sharing a 4-digit prefix.
func NAICSBenchmark(naicsCode string) (ContractValueBenchmark, bool) {
	naicsCode = strings.TrimSpace(naicsCode)
	if b, ok := naicsBenchmarks[naicsCode]; ok {
		return b, true
	}
	if len(naicsCode) >= 4 {
		prefix := naicsCode[:4]
		for _, code := range benchmarkCodes {
			if strings.HasPrefix(code, prefix) {
				return naicsBenchmarks[code], true
			}
		}
	}
	return ContractValueBenchmark{}, false
}

// benchmarkCodes orders the benchmark table for deterministic prefix
// fallback.
var benchmarkCodes = sortedBenchmarkCodes()

func sortedBenchmarkCodes() []string {
	codes := make([]string, 0, len(naicsBenchmarks))
	for code := range naicsBenchmarks {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NAICSBenchmarks returns all contract value benchmarks keyed by NAICS.
func NAICSBenchmarks() map[string]ContractValueBenchmark { return naicsBenchmarks }
