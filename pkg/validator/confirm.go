// Package validator turns raw class-probability predictions into
// confirm/reject verdicts. Labels from all three survey formats are first
// normalized to the canonical Kepler vocabulary so the decision rule is
// schema-independent.
package validator

import (
	"strings"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// ConfirmThreshold is the confidence a prediction must strictly exceed to
// be confirmable. A confidence of exactly the threshold is rejected.
const ConfirmThreshold = 0.70

// Canonical disposition labels
const (
	LabelConfirmed     = "CONFIRMED"
	LabelCandidate     = "CANDIDATE"
	LabelFalsePositive = "FALSE POSITIVE"
)

// DefaultPositiveClasses is the set of predicted labels eligible for confirmation
var DefaultPositiveClasses = []string{LabelConfirmed}

// tessSynonyms maps the TESS TFOPWG disposition codes onto the canonical
// vocabulary. Kepler and K2 labels are already canonical.
var tessSynonyms = map[string]string{
	"CP":  LabelConfirmed,     // Confirmed Planet
	"KP":  LabelConfirmed,     // Known Planet
	"PC":  LabelCandidate,     // Planetary Candidate
	"APC": LabelCandidate,     // Ambiguous Planetary Candidate
	"FP":  LabelFalsePositive, // False Positive
	"FA":  LabelFalsePositive, // False Alarm
}

// NormalizeLabel maps a schema-specific disposition onto the canonical
// vocabulary. Unrecognized labels pass through upper-cased and trimmed.
func NormalizeLabel(label string) string {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	if canonical, ok := tessSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// Confirm evaluates each prediction against the positive classes and the
// confidence threshold. The function is pure: the same predictions always
// yield the same verdicts, and no state is touched.
func Confirm(predictions []models.Prediction, positiveClasses []string, threshold float64) models.ConfirmationResult {
	positive := make(map[string]bool, len(positiveClasses))
	for _, class := range positiveClasses {
		positive[NormalizeLabel(class)] = true
	}

	result := models.ConfirmationResult{
		Confirmed: []models.ConfirmationVerdict{},
		Rejected:  []models.ConfirmationVerdict{},
	}
	for _, pred := range predictions {
		normalized := NormalizeLabel(pred.PredictedLabel)
		verdict := models.ConfirmationVerdict{
			Prediction:      pred,
			NormalizedLabel: normalized,
			IsConfirmable:   positive[normalized] && pred.Confidence > threshold,
		}
		if verdict.IsConfirmable {
			result.Confirmed = append(result.Confirmed, verdict)
		} else {
			result.Rejected = append(result.Rejected, verdict)
		}
	}

	total := len(predictions)
	result.Summary = models.ConfirmationSummary{
		Total:          total,
		ConfirmedCount: len(result.Confirmed),
		RejectedCount:  len(result.Rejected),
	}
	if total > 0 {
		result.Summary.ConfirmationRate = float64(len(result.Confirmed)) / float64(total)
	}
	return result
}
