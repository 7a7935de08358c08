package rules

import (
	"sort"
	"strings"
)

// Country is one row of the TAA country table.
type Country struct {
	Name       string
	Designated bool
}

// taaDesignated covers WTO GPA, Caribbean Basin, and FTA countries.
var taaDesignated = map[string]Country{
	// WTO GPA countries
	"AM": {"Armenia", true},
	"AT": {"Austria", true},
	"AU": {"Australia", true},
	"BE": {"Belgium", true},
	"BG": {"Bulgaria", true},
	"CA": {"Canada", true},
	"HR": {"Croatia", true},
	"CY": {"Cyprus", true},
	"CZ": {"Czech Republic", true},
	"DK": {"Denmark", true},
	"EE": {"Estonia", true},
	"FI": {"Finland", true},
	"FR": {"France", true},
	"DE": {"Germany", true},
	"GR": {"Greece", true},
	"HK": {"Hong Kong", true},
	"HU": {"Hungary", true},
	"IS": {"Iceland", true},
	"IE": {"Ireland", true},
	"IL": {"Israel", true},
	"IT": {"Italy", true},
	"JP": {"Japan", true},
	"KR": {"Korea, Republic of", true},
	"LV": {"Latvia", true},
	"LI": {"Liechtenstein", true},
	"LT": {"Lithuania", true},
	"LU": {"Luxembourg", true},
	"MT": {"Malta", true},
	"MD": {"Moldova", true},
	"ME": {"Montenegro", true},
	"NL": {"Netherlands", true},
	"NZ": {"New Zealand", true},
	"MK": {"North Macedonia", true},
	"NO": {"Norway", true},
	"PL": {"Poland", true},
	"PT": {"Portugal", true},
	"RO": {"Romania", true},
	"SG": {"Singapore", true},
	"SK": {"Slovakia", true},
	"SI": {"Slovenia", true},
	"ES": {"Spain", true},
	"SE": {"Sweden", true},
	"CH": {"Switzerland", true},
	"TW": {"Taiwan", true},
	"UA": {"Ukraine", true},
	"GB": {"United Kingdom", true},
	"US": {"United States", true},

	// Caribbean Basin countries
	"AG": {"Antigua and Barbuda", true},
	"AW": {"Aruba", true},
	"BS": {"Bahamas", true},
	"BB": {"Barbados", true},
	"BZ": {"Belize", true},
	"VG": {"British Virgin Islands", true},
	"CW": {"Curacao", true},
	"DM": {"Dominica", true},
	"GD": {"Grenada", true},
	"GY": {"Guyana", true},
	"HT": {"Haiti", true},
	"JM": {"Jamaica", true},
	"MS": {"Montserrat", true},
	"KN": {"St. Kitts and Nevis", true},
	"LC": {"St. Lucia", true},
	"VC": {"St. Vincent and the Grenadines", true},
	"TT": {"Trinidad and Tobago", true},

	// FTA countries
	"BH": {"Bahrain", true},
	"CL": {"Chile", true},
	"CO": {"Colombia", true},
	"CR": {"Costa Rica", true},
	"DO": {"Dominican Republic", true},
	"SV": {"El Salvador", true},
	"GT": {"Guatemala", true},
	"HN": {"Honduras", true},
	"JO": {"Jordan", true},
	"MX": {"Mexico", true},
	"MA": {"Morocco", true},
	"NI": {"Nicaragua", true},
	"OM": {"Oman", true},
	"PA": {"Panama", true},
	"PE": {"Peru", true},
}

// taaNonDesignated is the known non-designated set. Countries absent
// from both tables resolve as unknown.
var taaNonDesignated = map[string]Country{
	"CN": {"China", false},
	"RU": {"Russia", false},
	"IN": {"India", false},
	"MY": {"Malaysia", false},
	"TH": {"Thailand", false},
	"VN": {"Vietnam", false},
	"ID": {"Indonesia", false},
	"BD": {"Bangladesh", false},
	"PK": {"Pakistan", false},
	"PH": {"Philippines", false},
	"BR": {"Brazil", false},
	"AR": {"Argentina", false},
	"ZA": {"South Africa", false},
	"EG": {"Egypt", false},
	"SA": {"Saudi Arabia", false},
	"AE": {"United Arab Emirates", false},
	"IR": {"Iran", false},
	"KP": {"North Korea", false},
	"BY": {"Belarus", false},
	"CU": {"Cuba", false},
	"SY": {"Syria", false},
	"VE": {"Venezuela", false},
}

// sanctionedCountries override designation: procurement prohibited.
var sanctionedCountries = map[string]bool{
	"KP": true, "IR": true, "CU": true, "SY": true, "BY": true, "RU": true,
}

// LookupCountry resolves an ISO-2 code against the combined TAA tables.
func LookupCountry(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if c, ok := taaDesignated[code]; ok {
		return c, true
	}
	if c, ok := taaNonDesignated[code]; ok {
		return c, true
	}
	return Country{}, false
}

// CountrySanctioned reports whether code is on the sanctions list.
func CountrySanctioned(code string) bool {
	return sanctionedCountries[strings.ToUpper(strings.TrimSpace(code))]
}

// TAADesignated reports whether code is a TAA designated country.
func TAADesignated(code string) bool {
	_, ok := taaDesignated[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// CountryEntry is one code/name row for listing endpoints.
type CountryEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DesignatedCountries returns the TAA designated list sorted by code.
func DesignatedCountries() []CountryEntry {
	entries := make([]CountryEntry, 0, len(taaDesignated))
	for code, country := range taaDesignated {
		entries = append(entries, CountryEntry{Code: code, Name: country.Name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}
