package output

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/dshills/warndiff/internal/changes"
	"github.com/dshills/warndiff/internal/review"
	"github.com/dshills/warndiff/internal/warning"
)

// SARIFWriter outputs new warnings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *review.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

const defaultRuleID = "warning"

// artifactURI makes path relative to the repository root so code scanning can
// resolve it. Paths outside the root become file:// URIs.
func artifactURI(path, root string) string {
	p := strings.ReplaceAll(changes.RelPath(path, root), `\`, "/")
	switch {
	case strings.HasPrefix(p, "/"):
		return (&url.URL{Scheme: "file", Path: p}).String()
	case len(p) >= 3 && p[1] == ':' && p[2] == '/':
		return (&url.URL{Scheme: "file", Path: "/" + p}).String()
	}
	return (&url.URL{Path: p}).String()
}

// flagPattern picks the diagnostic option the compiler appends, e.g. [-Wunused-variable].
var flagPattern = regexp.MustCompile(`\[(-W[\w=+-]+)\]\s*$`)

func buildSARIF(report *review.Report) sarifLog {
	results := []sarifResult{}
	var rules []sarifRule
	seen := make(map[string]bool)

	for _, wn := range report.Warnings {
		ruleID := ruleIDFor(wn)
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: ruleDescription(ruleID)},
				DefaultConfig:    sarifDefaultConfig{Level: "warning"},
			})
		}

		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: artifactURI(wn.Path, report.Repo.Root)},
			},
		}
		// SARIF line and column numbers start at 1.
		if wn.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: wn.Line}
			if wn.Column > 0 {
				loc.PhysicalLocation.Region.StartColumn = wn.Column
			}
		}

		results = append(results, sarifResult{
			RuleID:    ruleID,
			Level:     "warning",
			Message:   sarifMessage{Text: wn.Message},
			Locations: []sarifLocation{loc},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           review.ToolName,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/warndiff",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// ruleIDFor returns the compiler flag named in the message, or a generic id.
func ruleIDFor(wn warning.Warning) string {
	if m := flagPattern.FindStringSubmatch(wn.Message); m != nil {
		return m[1]
	}
	return defaultRuleID
}

func ruleDescription(ruleID string) string {
	if ruleID == defaultRuleID {
		return "Compiler warning"
	}
	return "Compiler warning " + ruleID
}
