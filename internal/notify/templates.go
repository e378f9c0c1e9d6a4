// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"renoquote/internal/models"
)

const (
	subjectTemplate = "Quote {{quoteId}} flagged for review"
	bodyTemplate    = "Quote {{quoteId}} for {{location}} totals {{totalPrice}} {{currency}} " +
		"across {{taskCount}} task(s) with confidence score {{confidence}}. " +
		"Please review before it reaches the client."
)

// alertData flattens the quote fields the templates can reference.
func alertData(q *models.Quote) map[string]interface{} {
	taskCount := 0
	for _, zone := range q.Zones {
		taskCount += len(zone.Tasks)
	}

	return map[string]interface{}{
		"quoteId":    q.QuoteID,
		"location":   q.Client.Location,
		"totalPrice": fmt.Sprintf("%.2f", q.Summary.TotalPrice),
		"currency":   q.Currency,
		"confidence": fmt.Sprintf("%.2f", q.Summary.ConfidenceScore),
		"taskCount":  taskCount,
	}
}

// renderTemplate substitutes {{key}} placeholders from data, then strips any
// placeholder that had no value so drafts never leak template syntax.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
