package services

import (
	"math"
	"strconv"
	"strings"

	"object-detection-demo/internal/domain/entities"
)

// LineTerminator separates label segments and result lines.
const LineTerminator = "\n"

const confidenceSeparator = " Confidence: "

type ResultFormatter struct {
	orderByConfidence bool
}

func NewResultFormatter(orderByConfidence bool) *ResultFormatter {
	return &ResultFormatter{
		orderByConfidence: orderByConfidence,
	}
}

// Objects returns the objects in display order.
func (f *ResultFormatter) Objects(result *entities.AnalysisResult) []entities.DetectedObject {
	if result == nil {
		return nil
	}
	if f.orderByConfidence {
		return result.SortedByConfidence()
	}
	return result.Objects()
}

// Format renders one line per object followed by a trailing empty line.
// A nil result renders as "" so a failed call never leaves text behind.
func (f *ResultFormatter) Format(result *entities.AnalysisResult) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	for _, obj := range f.Objects(result) {
		sb.WriteString(FormatObjectLine(obj))
		sb.WriteString(LineTerminator)
	}
	sb.WriteString(LineTerminator)

	return sb.String()
}

func FormatObjectLine(obj entities.DetectedObject) string {
	return strings.Join(obj.Labels(), LineTerminator) + confidenceSeparator + FormatConfidence(obj.Confidence())
}

// FormatConfidence prints confidence as a percentage rounded to two decimals,
// dropping trailing zeros: 0.91 -> "91", 0.765 -> "76.5".
func FormatConfidence(confidence float64) string {
	percent := math.Round(confidence*100*100) / 100
	return strconv.FormatFloat(percent, 'f', -1, 64)
}
