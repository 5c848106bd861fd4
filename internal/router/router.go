// Package router classifies queries into supply-chain intents using keyword
// scoring. English and Korean trigger phrases are matched by substring
// containment against the lowercased query.
package router

import "strings"

// Intent is a coarse query category driving tool dispatch.
type Intent string

// Known intents, in tie-break priority order.
const (
	IntentPlanning    Intent = "PLANNING"
	IntentInventory   Intent = "INVENTORY"
	IntentLogistics   Intent = "LOGISTICS"
	IntentDefinition  Intent = "DEFINITION"
	IntentCalculation Intent = "CALCULATION"
	IntentGeneral     Intent = "GENERAL"
)

// intentOrder fixes the tie-break: when two intents score equal, the earlier
// one wins.
var intentOrder = []Intent{
	IntentPlanning,
	IntentInventory,
	IntentLogistics,
	IntentDefinition,
	IntentCalculation,
	IntentGeneral,
}

var keywords = map[Intent][]string{
	IntentPlanning: {
		"forecast", "s&op", "sales and operations", "demand plan", "capacity",
		"수요예측", "수요 계획", "판매 운영",
	},
	IntentInventory: {
		"inventory", "safety stock", "reorder", "cycle count", "abc",
		"재고", "안전재고", "재주문", "재주문점", "재고회전",
	},
	IntentLogistics: {
		"transport", "freight", "warehouse", "delivery", "carrier",
	},
	IntentDefinition: {
		"define", "what is", "meaning", "term", "glossary",
		"정의", "뜻", "의미", "뭐야", "무엇",
	},
	IntentCalculation: {
		"calculate", "compute", "formula", "eoq", "reorder point", "fill rate",
		"계산", "산출", "공식",
	},
}

// RoutingResult is the classified intent with its confidence.
type RoutingResult struct {
	Intent     Intent
	Confidence float64
}

// Route classifies a query. Each matched keyword adds 0.3 to its intent.
// Glossary evidence boosts DEFINITION: any related terms add 0.2, and a
// related term appearing literally in the query adds 0.3 more. A query
// matching nothing scores GENERAL at 0.4. Confidence is the winning score
// plus 0.4, capped at 0.95.
func Route(query string, relatedTerms []string) RoutingResult {
	text := strings.ToLower(query)

	scores := make(map[Intent]float64, len(intentOrder))
	for intent, words := range keywords {
		for _, word := range words {
			if strings.Contains(text, word) {
				scores[intent] += 0.3
			}
		}
	}

	if len(relatedTerms) > 0 {
		scores[IntentDefinition] += 0.2
	}
	for _, term := range relatedTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			scores[IntentDefinition] += 0.3
			break
		}
	}

	best := IntentGeneral
	bestScore := 0.0
	for _, intent := range intentOrder {
		if scores[intent] > bestScore {
			best = intent
			bestScore = scores[intent]
		}
	}
	if bestScore == 0 {
		best = IntentGeneral
		bestScore = 0.4
	}

	confidence := bestScore + 0.4
	if confidence > 0.95 {
		confidence = 0.95
	}
	return RoutingResult{Intent: best, Confidence: confidence}
}
