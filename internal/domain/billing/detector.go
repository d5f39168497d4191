package billing

import (
	"fmt"
	"math"
	"strings"
)

const (
	priceRatioThreshold = 1.5
	quantityThreshold   = 3
	quantityScoreFloor  = 0.3

	actionVerifyPricing  = "verify pricing with service department"
	actionVerifyQuantity = "verify quantity with ordering physician"
)

type baseline struct {
	total float64
	count int
}

func (b baseline) avg() float64 {
	if b.count == 0 {
		return 0
	}
	return b.total / float64(b.count)
}

func serviceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// buildBaselines folds list prices and then historical unit prices into a
// per-service running average.
func buildBaselines(historical []Invoice, charges []ServiceCharge) map[string]baseline {
	out := make(map[string]baseline)
	for _, c := range charges {
		k := serviceKey(c.ServiceName)
		b := out[k]
		b.total += c.Amount
		b.count++
		out[k] = b
	}
	for _, inv := range historical {
		for _, item := range inv.Items {
			k := serviceKey(item.ServiceName)
			b := out[k]
			b.total += item.UnitPrice
			b.count++
			out[k] = b
		}
	}
	return out
}

// DetectAnomalies flags line items of invoice whose unit price or quantity
// falls outside historical norms. Items are never modified.
func DetectAnomalies(invoice Invoice, historical []Invoice, charges []ServiceCharge) Report {
	baselines := buildBaselines(historical, charges)
	report := Report{Anomalies: []Anomaly{}}

	for i, item := range invoice.Items {
		var (
			flagged bool
			a       = Anomaly{ItemID: item.ID, ItemIndex: i}
		)

		if b, ok := baselines[serviceKey(item.ServiceName)]; ok {
			avg := b.avg()
			if avg > 0 {
				ratio := item.UnitPrice / avg
				if ratio >= priceRatioThreshold {
					flagged = true
					a.Score = math.Min((ratio-1)/2, 1)
					a.Reason = fmt.Sprintf("Unit price %.2f is %.0f%% above the average of %.2f for %s",
						item.UnitPrice, (ratio-1)*100, avg, item.ServiceName)
					a.SuggestedAction = actionVerifyPricing
				}
			}
		}

		if item.Quantity > quantityThreshold {
			qScore := math.Min(float64(item.Quantity-quantityThreshold)/7, 1)
			if qScore > quantityScoreFloor {
				clause := fmt.Sprintf("Unusually high quantity (%d) for %s", item.Quantity, item.ServiceName)
				if flagged {
					a.Score = math.Max(a.Score, qScore)
					a.Reason += "; " + clause
				} else {
					flagged = true
					a.Score = qScore
					a.Reason = clause
					a.SuggestedAction = actionVerifyQuantity
				}
			}
		}

		if flagged {
			a.IsAnomaly = true
			report.Anomalies = append(report.Anomalies, a)
		}
	}

	report.HasAnomalies = len(report.Anomalies) > 0
	if report.HasAnomalies {
		var sum float64
		for _, a := range report.Anomalies {
			sum += a.Score
		}
		report.OverallRiskScore = sum / float64(len(report.Anomalies))
	}
	return report
}
