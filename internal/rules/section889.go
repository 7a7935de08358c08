package rules

// RequiresReview is the sentinel brand mapping for vendors that are not
// explicitly prohibited but warrant manual screening.
const RequiresReview = "requires_review"

// prohibitedEntities maps lowercased substring keys to canonical entity
// names covered by Section 889 of the NDAA FY2019 (Parts A and B).
var prohibitedEntities = map[string]string{
	"huawei":    "Huawei Technologies Co., Ltd.",
	"zte":       "ZTE Corporation",
	"hytera":    "Hytera Communications Corporation",
	"hikvision": "Hangzhou Hikvision Digital Technology Co., Ltd.",
	"dahua":     "Dahua Technology Co., Ltd.",

	// Subsidiaries and affiliates
	"huawei marine": "Huawei Marine Networks",
	"huawei cloud":  "Huawei Cloud Computing",
	"hiwatch":       "HiWatch (Hikvision subsidiary)",
	"ezviz":         "EZVIZ (Hikvision subsidiary)",
	"lorex":         "Lorex Technology (Dahua subsidiary)",

	// Subsequent guidance
	"kaspersky": "Kaspersky Lab (if network-connected)",
}

// prohibitedBrands maps alternate brand names to a prohibitedEntities key
// or to RequiresReview.
var prohibitedBrands = map[string]string{
	"honor":           "huawei",
	"hikwatch":        "hikvision",
	"dahua technology": "dahua",
	"uniview":         RequiresReview,
}

// riskIndicatorKeywords flag product categories that warrant a Section
// 889 compliance check even without an entity match.
var riskIndicatorKeywords = map[string]string{
	"telecom":      "Telecommunications/network equipment - verify Section 889 compliance",
	"network":      "Telecommunications/network equipment - verify Section 889 compliance",
	"camera":       "Video surveillance equipment - verify against Hikvision/Dahua prohibitions",
	"surveillance": "Video surveillance equipment - verify against Hikvision/Dahua prohibitions",
	"security":     "Video surveillance equipment - verify against Hikvision/Dahua prohibitions",
}

// ProhibitedEntities returns the substring-key → canonical-name table.
func ProhibitedEntities() map[string]string { return prohibitedEntities }

// ProhibitedBrands returns the alternate-brand table.
func ProhibitedBrands() map[string]string { return prohibitedBrands }

// RiskIndicators returns the category-keyword advisory table.
func RiskIndicators() map[string]string { return riskIndicatorKeywords }

// EntityName resolves a prohibited-entity key to its canonical name,
// falling back to the key itself.
func EntityName(key string) string {
	if name, ok := prohibitedEntities[key]; ok {
		return name
	}
	return key
}
