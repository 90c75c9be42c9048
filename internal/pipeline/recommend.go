package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pageza/smartplate/internal/types"
)

// Baselines for target fields the caller left out, plus the neutral fiber
// and sodium targets.
const (
	defaultCalories = 2000.0
	defaultProtein  = 120.0
	defaultCarbs    = 250.0
	defaultFat      = 70.0
	fiberBaseline   = 25.0
	sodiumBaseline  = 1500.0
)

// Recommend ranks foods by cosine similarity to the targets, skipping foods
// whose name or category contains one of the comma-separated allergies.
// At most PerCluster foods are taken from each cluster and Limit overall.
func (p *Pipeline) Recommend(targets types.NutrientTargets, allergies string) []types.RecommendationItem {
	terms := allergyTerms(allergies)

	target := p.scaler.TransformRow([]float64{
		valueOr(targets.Calories, defaultCalories) / 4,
		valueOr(targets.ProteinG, defaultProtein),
		valueOr(targets.CarbsG, defaultCarbs),
		valueOr(targets.FatG, defaultFat),
		fiberBaseline,
		sodiumBaseline,
	})

	type scored struct {
		food *LabeledFood
		sim  float64
	}
	candidates := make([]scored, 0, len(p.foods))
	for i := range p.foods {
		f := &p.foods[i]
		if containsAny(f.Name, terms) || containsAny(f.Category, terms) {
			continue
		}
		candidates = append(candidates, scored{food: f, sim: cosine(f.Scaled, target)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	perCluster := make(map[int]int)
	results := make([]types.RecommendationItem, 0, p.opts.Limit)
	for _, c := range candidates {
		if len(results) == p.opts.Limit {
			break
		}
		if perCluster[c.food.Cluster] >= p.opts.PerCluster {
			continue
		}
		perCluster[c.food.Cluster]++
		results = append(results, types.RecommendationItem{
			FoodID:     c.food.ID,
			Name:       c.food.Name,
			Category:   c.food.Category,
			Calories:   c.food.Calories,
			ProteinG:   c.food.ProteinG,
			CarbsG:     c.food.CarbsG,
			FatG:       c.food.FatG,
			Cluster:    types.ClusterID(strconv.Itoa(c.food.Cluster)),
			Similarity: round(c.sim, 4),
		})
	}
	return results
}

func allergyTerms(allergies string) []string {
	var terms []string
	for _, a := range strings.Split(allergies, ",") {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			terms = append(terms, a)
		}
	}
	return terms
}

func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
