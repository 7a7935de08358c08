package ingest

import (
	"fmt"
	"time"

	"github.com/fedscout/fedscout/internal/domain"
)

// noticeTypeNames expands the feed's single-letter type codes. Unknown
// codes pass through unchanged.
var noticeTypeNames = map[string]string{
	"o": "Solicitation",
	"p": "Presolicitation",
	"k": "Combined Synopsis/Solicitation",
	"r": "Sources Sought",
	"g": "Sale of Surplus Property",
	"s": "Special Notice",
	"i": "Intent to Bundle Requirements",
	"a": "Award Notice",
	"u": "Justification and Approval",
}

// feedDateFormats are tried in order against the first 19 characters
// of a feed timestamp. All parsed times are taken as UTC.
var feedDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006-01-02T15:04:05",
}

// ParseNotice converts a raw feed record into a canonical opportunity.
// A notice without a noticeId or title is rejected; everything else is
// best effort, with unparseable fields left unset.
func ParseNotice(n Notice, ingestedAt time.Time) (*domain.Opportunity, error) {
	sourceID := str(n, "noticeId")
	if sourceID == "" {
		return nil, fmt.Errorf("notice has no noticeId")
	}
	title := str(n, "title")
	if title == "" {
		return nil, fmt.Errorf("notice %s has no title", sourceID)
	}

	opp := &domain.Opportunity{
		SourceID:     sourceID,
		SourceSystem: SourceSAMGov,
		Title:        title,
		Status:       domain.StatusActive,
		RawData:      n,
		IngestedAt:   ingestedAt,
	}

	opp.Description = optStr(str(n, "description"))
	opp.SolicitationNumber = optStr(str(n, "solicitationNumber"))
	opp.NAICSCode = optStr(str(n, "naicsCode"))
	opp.NAICSDescription = optStr(str(n, "naicsDescription"))
	opp.PSCCode = optStr(str(n, "classificationCode"))
	opp.SetAsideType = optStr(str(n, "typeOfSetAsideDescription"))
	opp.ContractType = optStr(str(n, "contractType"))

	if code := str(n, "type"); code != "" {
		name, ok := noticeTypeNames[code]
		if !ok {
			name = code
		}
		opp.NoticeType = &name
	}

	opp.PostedDate = ParseFeedDate(str(n, "postedDate"))
	opp.ResponseDeadline = ParseFeedDate(str(n, "responseDeadLine"))
	opp.ArchiveDate = ParseFeedDate(str(n, "archiveDate"))

	if pop := sub(n, "placeOfPerformance"); pop != nil {
		if city := sub(pop, "city"); city != nil {
			opp.PlaceOfPerformanceCity = optStr(str(city, "name"))
		}
		if state := sub(pop, "state"); state != nil {
			opp.PlaceOfPerformanceState = optStr(str(state, "code"))
		}
		opp.PlaceOfPerformanceZip = optStr(str(pop, "zip"))
		country := "USA"
		if c := sub(pop, "country"); c != nil {
			if code := str(c, "code"); code != "" {
				country = code
			}
		}
		opp.PlaceOfPerformanceCountry = &country
	}

	if office := sub(n, "office"); office != nil {
		opp.ContractingOfficeName = optStr(str(office, "name"))
	}

	if contacts, ok := n["pointOfContact"].([]interface{}); ok && len(contacts) > 0 {
		if primary, ok := contacts[0].(map[string]interface{}); ok {
			opp.PointOfContactName = optStr(str(primary, "fullName"))
			opp.PointOfContactEmail = optStr(str(primary, "email"))
			opp.PointOfContactPhone = optStr(str(primary, "phone"))
		}
	}

	return opp, nil
}

// ParseFeedDate parses a feed timestamp, returning nil when the value
// is empty or matches none of the known formats.
func ParseFeedDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if len(s) > 19 {
		s = s[:19]
	}
	for _, format := range feedDateFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func str(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func sub(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
