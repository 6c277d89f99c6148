package hypergraph

import "strings"

// relationPattern is one (type set, boost) rule, mirroring
// MEDICAL_RELATION_PATTERNS.
type relationPattern struct {
	types []string
	boost float64
}

// medicalRelationPatterns is MedicalHyperedgeEnhancer.MEDICAL_RELATION_PATTERNS,
// ported verbatim.
var medicalRelationPatterns = []relationPattern{
	{[]string{"SYMPTOM", "DISEASE"}, 1.2},
	{[]string{"SIGN", "DISEASE"}, 1.2},

	{[]string{"DISEASE", "CHEMICAL"}, 1.3},
	{[]string{"DISEASE", "DRUG"}, 1.3},
	{[]string{"DISEASE", "TREATMENT"}, 1.3},

	{[]string{"LAB", "VALUE", "DIAGNOSIS"}, 1.5},
	{[]string{"LAB_TEST", "DISEASE"}, 1.3},
	{[]string{"DIAGNOSTIC_PROCEDURE", "DISEASE"}, 1.3},

	{[]string{"CHEMICAL", "GENE"}, 1.2},
	{[]string{"DRUG", "PROTEIN"}, 1.2},
	{[]string{"CHEMICAL", "PATHWAY"}, 1.2},

	{[]string{"ANATOMY", "DISEASE"}, 1.1},
	{[]string{"BODY_PART", "SYMPTOM"}, 1.1},

	{[]string{"RISK_FACTOR", "DISEASE"}, 1.2},

	{[]string{"PROCEDURE", "DISEASE"}, 1.2},
	{[]string{"SURGICAL_PROCEDURE", "ANATOMY"}, 1.2},
}

// typeInferenceKeywords is TYPE_INFERENCE_KEYWORDS, ported verbatim.
var typeInferenceKeywords = map[string][]string{
	"SYMPTOM": {"pain", "ache", "fever", "fatigue", "nausea", "vomiting",
		"cough", "dyspnea", "diarrhea", "headache", "weakness"},
	"DISEASE": {"disease", "syndrome", "disorder", "cancer", "carcinoma",
		"infection", "itis", "osis", "pathy"},
	"CHEMICAL": {"drug", "medication", "therapy", "treatment", "cillin",
		"mycin", "zole", "prazole", "sartan", "olol"},
	"ANATOMY": {"kidney", "heart", "liver", "lung", "brain", "bone",
		"artery", "vein", "nerve", "muscle"},
	"LAB_TEST": {"level", "count", "test", "assay", "measurement"},
}

// Go maps have no stable iteration order, but TYPE_INFERENCE_KEYWORDS
// is consulted as an unordered keyword search in the original (first
// keyword match wins per entity, not per category), so a fixed
// iteration order over categories matters only when an entity matches
// keywords from two categories; typeInferenceOrder reproduces Python
// dict insertion order so behavior stays deterministic and matches it.
var typeInferenceOrder = []string{"SYMPTOM", "DISEASE", "CHEMICAL", "ANATOMY", "LAB_TEST"}

// Enhancer applies medical-domain score boosts, mirroring
// MedicalHyperedgeEnhancer.
type Enhancer struct {
	MaxBoost float64
}

// NewEnhancer returns an Enhancer capped at maxBoost (spec.md default 1.5).
func NewEnhancer(maxBoost float64) *Enhancer {
	return &Enhancer{MaxBoost: maxBoost}
}

// EnhanceAll mutates each hyperedge's score in place via EnhanceScore,
// mirroring enhance_hyperedges.
func (e *Enhancer) EnhanceAll(hyperedges []Hyperedge, globalTypes map[string]string) []Hyperedge {
	for i := range hyperedges {
		hyperedges[i].Score = e.EnhanceScore(hyperedges[i], globalTypes)
	}
	return hyperedges
}

// EnhanceScore computes the boosted score for one hyperedge without
// mutating it, mirroring enhance_score.
func (e *Enhancer) EnhanceScore(he Hyperedge, globalTypes map[string]string) float64 {
	types := e.entityTypes(he, globalTypes)
	boost := e.calculateBoost(types)
	enhanced := he.Score * boost
	if enhanced > e.MaxBoost {
		return e.MaxBoost
	}
	return enhanced
}

func (e *Enhancer) entityTypes(he Hyperedge, globalTypes map[string]string) map[string]struct{} {
	types := make(map[string]struct{})
	for _, entity := range he.Entities {
		if t, ok := he.EntityType[entity]; ok && t != "" && t != "UNKNOWN" {
			types[t] = struct{}{}
			continue
		}
		if t, ok := globalTypes[entity]; ok {
			types[t] = struct{}{}
			continue
		}
		if t := inferType(entity); t != "" {
			types[t] = struct{}{}
		}
	}
	return types
}

// inferType mirrors _infer_type: first keyword hit, scanning
// categories in typeInferenceOrder for determinism.
func inferType(entity string) string {
	lower := strings.ToLower(entity)
	for _, category := range typeInferenceOrder {
		for _, keyword := range typeInferenceKeywords[category] {
			if strings.Contains(lower, keyword) {
				return category
			}
		}
	}
	return ""
}

// calculateBoost mirrors _calculate_boost: the largest boost among
// patterns whose type set is a subset of the hyperedge's observed types.
func (e *Enhancer) calculateBoost(types map[string]struct{}) float64 {
	maxBoost := 1.0
	for _, pattern := range medicalRelationPatterns {
		if isSubset(pattern.types, types) && pattern.boost > maxBoost {
			maxBoost = pattern.boost
		}
	}
	return maxBoost
}

func isSubset(pattern []string, types map[string]struct{}) bool {
	for _, t := range pattern {
		if _, ok := types[t]; !ok {
			return false
		}
	}
	return true
}
