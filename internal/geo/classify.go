package geo

// Severity levels for a classified location.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Risk score thresholds for classification.
const (
	highRiskThreshold   = 50.0 // score >= 50 OR flagged hotspot
	mediumRiskThreshold = 30.0
)

// ClassifySeverity buckets a location into low/medium/high severity.
// Rules, first match wins:
//   - high: riskScore >= 50 OR isHotspot
//   - medium: riskScore >= 30
//   - low: otherwise
//
// The same table is applied to backend predictions and locally computed
// scores so every view agrees on severity.
func ClassifySeverity(riskScore float64, isHotspot bool) string {
	if riskScore >= highRiskThreshold || isHotspot {
		return SeverityHigh
	}
	if riskScore >= mediumRiskThreshold {
		return SeverityMedium
	}
	return SeverityLow
}
