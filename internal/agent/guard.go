package agent

import "strings"

// scmGuardKeywords is the vocabulary that marks a query as in-domain when
// the guard is enabled. English plus the Korean terms the router already
// recognizes; phrasing outside this list will be refused, which is why the
// guard ships disabled.
var scmGuardKeywords = []string{
	"supply", "supply chain", "scm", "inventory", "demand", "forecast",
	"logistics", "procurement", "warehouse", "supplier", "delivery",
	"order", "capacity", "reorder", "s&op", "otif", "eoq", "safety stock",
	"fill rate", "takt", "lead time", "freight", "carrier",
	"재고", "수요", "공급", "물류", "조달", "예측", "계산", "정의", "안전재고",
}

const outOfDomainAnswer = "This assistant answers supply-chain-management questions. " +
	"Please ask about planning, inventory, logistics, or SCM terminology."

// inDomain reports whether the query mentions any SCM vocabulary.
func inDomain(query string) bool {
	text := strings.ToLower(query)
	for _, kw := range scmGuardKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
