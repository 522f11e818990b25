package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects a report rendering.
type OutputFormat string

const (
	// OutputText is the human-readable default.
	OutputText OutputFormat = "text"
	// OutputJSON renders reports as a JSON array.
	OutputJSON OutputFormat = "json"
	// OutputYAML renders reports as a YAML document.
	OutputYAML OutputFormat = "yaml"
)

// ValidOutputFormat reports whether s names a supported format.
func ValidOutputFormat(s string) bool {
	switch OutputFormat(s) {
	case OutputText, OutputJSON, OutputYAML:
		return true
	default:
		return false
	}
}

// Render renders one or more reports in the requested format.
func Render(reports []*Report, format OutputFormat) (string, error) {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case OutputYAML:
		data, err := yaml.Marshal(reports)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return renderText(reports), nil
	}
}

func renderText(reports []*Report) string {
	var sb strings.Builder
	totalErrs, totalWarnings, totalInfos := 0, 0, 0

	for _, report := range reports {
		for _, f := range report.Findings {
			sb.WriteString(f.String())
			sb.WriteString("\n")
		}
		errs, warnings, infos := report.Counts()
		totalErrs += errs
		totalWarnings += warnings
		totalInfos += infos
	}

	if totalErrs+totalWarnings+totalInfos == 0 {
		sb.WriteString("No problems found.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n%d error(s), %d warning(s), %d note(s)\n",
		totalErrs, totalWarnings, totalInfos))
	return sb.String()
}
