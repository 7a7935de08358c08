// Package proposal drafts proposal section skeletons from opportunity
// and organization data. Output is template-based and deterministic;
// the low confidence score marks it as a starting draft, not a
// submission-ready narrative.
package proposal

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fedscout/fedscout/internal/domain"
)

// Section identifiers, in generation order.
const (
	SectionExecutiveSummary   = "executive_summary"
	SectionTechnicalApproach  = "technical_approach"
	SectionManagementApproach = "management_approach"
	SectionPastPerformance    = "past_performance"
)

var sectionOrder = []string{
	SectionExecutiveSummary,
	SectionTechnicalApproach,
	SectionManagementApproach,
	SectionPastPerformance,
}

var sectionTitles = map[string]string{
	SectionExecutiveSummary:   "Executive Summary",
	SectionTechnicalApproach:  "Technical Approach",
	SectionManagementApproach: "Management Approach",
	SectionPastPerformance:    "Past Performance",
}

// templateConfidence marks drafts produced from static templates.
const templateConfidence = 0.4

// Section is one generated proposal section.
type Section struct {
	SectionID      string   `json:"section_id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	WordCount      int      `json:"word_count"`
	ComplianceRefs []string `json:"compliance_refs"`
	Confidence     float64  `json:"confidence"`
}

// ComplianceMatrix summarizes requirement coverage. Populating it
// needs PWS/SOW parsing, which is not wired yet, so counts start at
// zero with an explanatory note.
type ComplianceMatrix struct {
	TotalRequirements int      `json:"total_requirements"`
	Addressed         int      `json:"addressed"`
	ComplianceRate    float64  `json:"compliance_rate"`
	Requirements      []string `json:"requirements"`
	Note              string   `json:"note"`
}

// Proposal is a complete generated draft.
type Proposal struct {
	OpportunityID    string           `json:"opportunity_id"`
	OrganizationID   string           `json:"organization_id"`
	Sections         []Section        `json:"sections"`
	ComplianceMatrix ComplianceMatrix `json:"compliance_matrix"`
	ExecutiveSummary string           `json:"executive_summary"`
	TotalWordCount   int              `json:"total_word_count"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// Generator drafts proposal sections.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a proposal generator.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorAt is NewGenerator with an injected clock.
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate drafts the requested sections, or all four when sections is
// empty. Unknown section names are an error.
func (g *Generator) Generate(opp *domain.Opportunity, org *domain.Organization, sections []string) (*Proposal, error) {
	if len(sections) == 0 {
		sections = sectionOrder
	}

	drafted := make([]Section, 0, len(sections))
	for _, id := range sections {
		section, err := g.GenerateSection(id, opp, org)
		if err != nil {
			return nil, err
		}
		drafted = append(drafted, *section)
	}

	execSummary := "Executive summary not generated"
	total := 0
	for _, s := range drafted {
		total += s.WordCount
		if s.SectionID == SectionExecutiveSummary {
			execSummary = s.Content
		}
	}

	return &Proposal{
		OpportunityID:    opp.ID.String(),
		OrganizationID:   org.ID.String(),
		Sections:         drafted,
		ComplianceMatrix: emptyComplianceMatrix(),
		ExecutiveSummary: execSummary,
		TotalWordCount:   total,
		GeneratedAt:      g.now().UTC(),
	}, nil
}

// GenerateSection drafts a single section.
func (g *Generator) GenerateSection(sectionID string, opp *domain.Opportunity, org *domain.Organization) (*Section, error) {
	title, ok := sectionTitles[sectionID]
	if !ok {
		return nil, fmt.Errorf("unknown section type: %s", sectionID)
	}

	content := strings.TrimSpace(g.draft(sectionID, opp, org))
	return &Section{
		SectionID:      sectionID,
		Title:          title,
		Content:        content,
		WordCount:      len(strings.Fields(content)),
		ComplianceRefs: ExtractComplianceRefs(content),
		Confidence:     templateConfidence,
	}, nil
}

func (g *Generator) draft(sectionID string, opp *domain.Opportunity, org *domain.Organization) string {
	orgName := org.Name
	if orgName == "" {
		orgName = "Our Organization"
	}
	oppTitle := opp.Title
	if oppTitle == "" {
		oppTitle = "this opportunity"
	}

	switch sectionID {
	case SectionExecutiveSummary:
		return fmt.Sprintf(`%s is pleased to submit this proposal in response to %s.

Our organization brings extensive experience in the areas required by this solicitation. We understand the importance of this requirement to the agency and are committed to delivering exceptional results.

Key differentiators that make %s the ideal choice include:
- Proven track record of successful federal contract performance
- Deep expertise in the relevant technical domains
- Commitment to quality, compliance, and customer satisfaction
- Agile and responsive project management approach

We look forward to the opportunity to demonstrate our capabilities and contribute to the agency's mission success.`, orgName, oppTitle, orgName)

	case SectionTechnicalApproach:
		return fmt.Sprintf(`# Technical Approach

## Understanding of Requirements
%s thoroughly understands the requirements outlined in this solicitation. Our approach is designed to meet and exceed all stated objectives.

## Methodology
Our proven methodology encompasses:
1. Requirements Analysis and Planning
2. Solution Design and Development
3. Implementation and Integration
4. Testing and Quality Assurance
5. Deployment and Transition
6. Ongoing Support and Optimization

## Tools and Technologies
We leverage industry-leading tools and technologies appropriate to the requirement.

## Quality Assurance
Our quality management system ensures consistent, high-quality deliverables.`, orgName)

	case SectionManagementApproach:
		return fmt.Sprintf(`# Management Approach

## Organization Structure
%s will establish a dedicated project team with clear roles and responsibilities.

## Key Personnel
- Program Manager: Overall accountability
- Technical Lead: Technical direction and oversight
- Quality Manager: QA/QC processes

## Communication
Regular status reporting, weekly meetings, and responsive communication channels.

## Risk Management
Proactive risk identification, assessment, and mitigation strategies.`, orgName)

	case SectionPastPerformance:
		summary := org.PastPerformance()
		if summary == "" {
			summary = "Contact us for detailed past performance references."
		}
		return fmt.Sprintf(`# Past Performance

%s has successfully delivered similar contracts demonstrating our capability.

## Relevant Experience
Our past performance demonstrates:
- Successful delivery of comparable scope and complexity
- Strong customer satisfaction ratings
- On-time and on-budget performance
- Effective problem resolution

%s`, orgName, summary)
	}
	return ""
}

var complianceRefPattern = regexp.MustCompile(`(?:FAR|DFARS)\s+\d+\.\d+`)

// ExtractComplianceRefs pulls FAR and DFARS citations out of drafted
// content, deduplicated and sorted.
func ExtractComplianceRefs(content string) []string {
	matches := complianceRefPattern.FindAllString(content, -1)
	seen := make(map[string]bool, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			refs = append(refs, m)
		}
	}
	sort.Strings(refs)
	return refs
}

func emptyComplianceMatrix() ComplianceMatrix {
	return ComplianceMatrix{
		Requirements: []string{},
		Note:         "Full compliance matrix requires PWS/SOW parsing",
	}
}
