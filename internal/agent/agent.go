// Package agent orchestrates a query end to end: intent routing, tool
// dispatch, escalation, the clarification gate, and answer rendering.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/supplyhub/scm-assistant/internal/cache"
	"github.com/supplyhub/scm-assistant/internal/config"
	"github.com/supplyhub/scm-assistant/internal/glossary"
	"github.com/supplyhub/scm-assistant/internal/observability"
	"github.com/supplyhub/scm-assistant/internal/retrieval"
	"github.com/supplyhub/scm-assistant/internal/router"
	"github.com/supplyhub/scm-assistant/internal/runlog"
	"github.com/supplyhub/scm-assistant/internal/tools/calc"
	"github.com/supplyhub/scm-assistant/internal/tools/websearch"
)

const (
	builtInDefinition = "SCM (Supply Chain Management) is the end-to-end management of " +
		"planning, sourcing, production, logistics, and fulfillment to " +
		"deliver products efficiently and reliably."

	noInformationAnswer = "No relevant information found in sources."

	clarificationPrefix = "I want to be precise. Can you clarify your request?"
)

// Result is the structured answer for one query.
type Result struct {
	Answer     string               `json:"answer"`
	Sources    []retrieval.Citation `json:"sources"`
	Confidence float64              `json:"confidence"`
	Domain     string               `json:"domain"`
	Formatted  string               `json:"formatted"`
}

// WebSearcher is the escalation tool contract. A failed search is an empty
// slice, never an error.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []websearch.Result
}

// Options wires the agent's collaborators. Glossary and Engine are
// required; the rest degrade gracefully when absent.
type Options struct {
	Glossary       *glossary.Index
	GlossarySource string
	Engine         *retrieval.Engine
	Web            WebSearcher
	Cache          cache.Client
	CacheTTL       time.Duration
	RunLog         runlog.Logger
	Config         config.AgentConfig
	TopK           int
}

// Agent answers supply-chain queries.
type Agent struct {
	logger         *observability.Logger
	glossary       *glossary.Index
	glossarySource string
	engine         *retrieval.Engine
	web            WebSearcher
	cache          cache.Client
	cacheTTL       time.Duration
	runLog         runlog.Logger
	cfg            config.AgentConfig
	topK           int
}

// New creates an agent. Zero-valued tuning knobs fall back to defaults.
func New(logger *observability.Logger, opts Options) *Agent {
	if logger == nil {
		logger = observability.Nop()
	}
	cfg := opts.Config
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.55
	}
	if cfg.ContextBudget == 0 {
		cfg.ContextBudget = 2000
	}
	if cfg.MaxSummarySentences == 0 {
		cfg.MaxSummarySentences = 3
	}
	if cfg.EscalationThreshold == 0 {
		cfg.EscalationThreshold = 0.01
	}
	if cfg.WebSearchResults == 0 {
		cfg.WebSearchResults = 3
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 3
	}
	glossarySource := opts.GlossarySource
	if glossarySource == "" {
		glossarySource = "data/scm_dictionary.json"
	}
	runLog := opts.RunLog
	if runLog == nil {
		runLog = runlog.NewNopLogger()
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Agent{
		logger:         logger,
		glossary:       opts.Glossary,
		glossarySource: glossarySource,
		engine:         opts.Engine,
		web:            opts.Web,
		cache:          opts.Cache,
		cacheTTL:       cacheTTL,
		runLog:         runLog,
		cfg:            cfg,
		topK:           topK,
	}
}

// Run answers one query. It always returns a valid Result; every internal
// failure degrades the answer rather than aborting the query.
func (a *Agent) Run(ctx context.Context, query string) (*Result, error) {
	if a.cfg.GuardEnabled && !inDomain(query) {
		res := &Result{
			Answer:     outOfDomainAnswer,
			Confidence: 0.0,
			Domain:     string(router.IntentGeneral),
		}
		res.Formatted = render(res.Answer, res.Sources, res.Confidence, res.Domain)
		a.logRun(query, res, []string{"guard"})
		return res, nil
	}

	cacheKey := cache.AnswerKey(query, "")
	if a.cache != nil {
		if data, err := a.cache.Get(ctx, cacheKey); err == nil {
			var cached Result
			if json.Unmarshal(data, &cached) == nil {
				a.logger.Debug().Str("key", cacheKey).Msg("Answer served from cache")
				return &cached, nil
			}
		}
	}

	var (
		matches      []glossary.Entry
		relatedTerms []string
	)
	if a.glossary != nil {
		matches, relatedTerms = a.glossary.Lookup(query, 5)
	}

	routing := router.Route(query, relatedTerms)
	intent := routing.Intent
	confidence := routing.Confidence

	var (
		answer    string
		sources   []retrieval.Citation
		toolCalls []string
		handled   bool
		retrieved bool
	)

	if intent == router.IntentDefinition {
		switch {
		case len(matches) > 0:
			entry := matches[0]
			answer = a.composeDefinition(entry)
			sources = []retrieval.Citation{{
				ChunkID: "dict:" + entry.Term,
				Source:  a.glossarySource,
				Score:   1.0,
				Text:    entry.Term,
			}}
			toolCalls = append(toolCalls, "dictionary_lookup")
			if ratio := a.glossary.BestRatio(query, entry.Term); ratio > confidence {
				confidence = ratio
			}
			if confidence > 0.95 {
				confidence = 0.95
			}
			handled = true
		case mentionsSCM(query):
			answer = builtInDefinition
			sources = []retrieval.Citation{{
				ChunkID: "built_in_definition",
				Source:  "built_in_definition",
				Score:   1.0,
				Text:    "SCM",
			}}
			toolCalls = append(toolCalls, "definition_fallback")
			handled = true
		default:
			intent = router.IntentGeneral
		}
	}

	if intent == router.IntentCalculation {
		answer, confidence = a.runCalculator(query, confidence)
		toolCalls = append(toolCalls, "calculator")
		handled = true
	}

	if !handled {
		answer, sources = a.runRetrieval(query)
		toolCalls = append(toolCalls, "rag_search")
		retrieved = true
	}

	if retrieved && a.needsEscalation(sources) {
		if webAnswer, webSources, ok := a.escalate(ctx, query); ok {
			answer, sources = webAnswer, webSources
			toolCalls = append(toolCalls, "web_search")
		}
	}

	if confidence < a.cfg.ConfidenceThreshold {
		answer = a.composeClarification(relatedTerms)
		sources = nil
	}

	res := &Result{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
		Domain:     string(intent),
	}
	res.Formatted = render(res.Answer, res.Sources, res.Confidence, res.Domain)

	if a.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := a.cache.Set(ctx, cacheKey, data, a.cacheTTL); err != nil {
				a.logger.Warn().Err(err).Msg("Answer cache write failed")
			}
		}
	}
	a.logRun(query, res, toolCalls)
	return res, nil
}

func (a *Agent) composeDefinition(entry glossary.Entry) string {
	formula := entry.Formula
	if formula == "" {
		formula = "N/A"
	}
	return fmt.Sprintf("%s: %s\nBusiness meaning: %s\nFormula: %s",
		entry.Term, entry.Definition, entry.BusinessMeaning, formula)
}

func (a *Agent) runCalculator(query string, confidence float64) (string, float64) {
	result, formula, err := calc.Evaluate(query)
	switch {
	case err == nil:
		return fmt.Sprintf("%s = %s", result.Metric,
			strconv.FormatFloat(result.Value, 'f', -1, 64)), confidence
	case errors.Is(err, calc.ErrInsufficientArguments):
		confidence -= 0.1
		if confidence < 0 {
			confidence = 0
		}
		return formula.Definition, confidence
	default:
		return "Provide parameters for calculation.", confidence
	}
}

func (a *Agent) runRetrieval(query string) (string, []retrieval.Citation) {
	if a.engine == nil {
		return noInformationAnswer, nil
	}

	domain := detectDomain(query)
	citations, err := a.engine.Search(query, a.topK, domain)
	if err != nil {
		if errors.Is(err, retrieval.ErrNoIndexAvailable) {
			a.logger.Debug().Str("domain", domain).Msg("No index available for retrieval")
		} else {
			a.logger.Warn().Err(err).Msg("Retrieval search failed")
		}
		return noInformationAnswer, nil
	}

	blocks := make([]string, 0, len(citations))
	for _, c := range citations {
		if c.Supplement != "" {
			blocks = append(blocks, c.Supplement)
		} else {
			blocks = append(blocks, c.Text)
		}
	}
	context := truncateRunes(strings.Join(blocks, " "), a.cfg.ContextBudget)
	summary := extractSummary(context, query, a.cfg.MaxSummarySentences)
	if summary == "" {
		return noInformationAnswer, citations
	}
	return summary, citations
}

// needsEscalation reports whether retrieval produced nothing worth citing.
func (a *Agent) needsEscalation(sources []retrieval.Citation) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if s.Score > a.cfg.EscalationThreshold {
			return false
		}
	}
	return true
}

func (a *Agent) escalate(ctx context.Context, query string) (string, []retrieval.Citation, bool) {
	if a.web == nil {
		return "", nil, false
	}

	results := a.web.Search(ctx, query, a.cfg.WebSearchResults)
	if len(results) == 0 {
		return "", nil, false
	}

	lines := make([]string, 0, len(results))
	sources := make([]retrieval.Citation, 0, len(results))
	for i, r := range results {
		line := r.Title
		if r.Snippet != "" {
			line = fmt.Sprintf("%s: %s", r.Title, r.Snippet)
		}
		lines = append(lines, line)
		sources = append(sources, retrieval.Citation{
			ChunkID:    fmt.Sprintf("web:%d", i),
			Source:     r.URL,
			Score:      r.Score,
			Text:       r.Title,
			Supplement: r.Snippet,
		})
	}
	return strings.Join(lines, "\n"), sources, true
}

func (a *Agent) composeClarification(relatedTerms []string) string {
	related := "No related terms found"
	if len(relatedTerms) > 0 {
		if len(relatedTerms) > 5 {
			relatedTerms = relatedTerms[:5]
		}
		related = strings.Join(relatedTerms, ", ")
	}
	return fmt.Sprintf("%s Related terms: %s", clarificationPrefix, related)
}

// logRun records the answered query without blocking or failing the caller.
func (a *Agent) logRun(query string, res *Result, toolCalls []string) {
	rec := runlog.Record{
		RunID:      uuid.New().String(),
		Query:      query,
		Intent:     res.Domain,
		ToolCalls:  toolCalls,
		Sources:    make([]string, 0, len(res.Sources)),
		Confidence: res.Confidence,
		Answer:     res.Answer,
		CreatedAt:  time.Now().UTC(),
	}
	for _, s := range res.Sources {
		rec.Sources = append(rec.Sources, s.Source)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.runLog.Log(ctx, rec); err != nil {
			a.logger.Warn().Err(err).Str("run_id", rec.RunID).Msg("Run log write failed")
		}
	}()
}

func mentionsSCM(query string) bool {
	text := strings.ToLower(query)
	return strings.Contains(text, "scm") || strings.Contains(text, "supply chain")
}

var demandKeywords = []string{
	"demand", "forecast", "s&op", "sales and operations", "sales & operations",
	"demand planning",
}

var supplyKeywords = []string{
	"supply", "supplier", "procurement", "logistics", "transport", "warehouse",
}

// detectDomain picks a retrieval domain from the query vocabulary. Demand
// wins over supply when both match; an empty string selects the default
// fallback chain.
func detectDomain(query string) string {
	text := strings.ToLower(query)
	for _, kw := range demandKeywords {
		if strings.Contains(text, kw) {
			return "demand"
		}
	}
	for _, kw := range supplyKeywords {
		if strings.Contains(text, kw) {
			return "supply"
		}
	}
	return ""
}
