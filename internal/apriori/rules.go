package apriori

import (
	"fmt"
	"sort"
	"strings"
)

// MaxRankedRules caps each ranking for presentation.
const MaxRankedRules = 100

// Rule pairs a disjoint antecedent and consequent. Support is the support
// of their union; confidence is that support divided by the antecedent's.
type Rule struct {
	Antecedent []string `json:"antecedent"`
	Consequent []string `json:"consequent"`
	Support    float64  `json:"support"`
	Confidence float64  `json:"confidence"`
}

// Rankings holds the retained rules ordered two ways, each truncated to
// MaxRankedRules entries.
type Rankings struct {
	ByConfidence []Rule `json:"by_confidence"`
	BySupport    []Rule `json:"by_support"`
}

// Empty reports whether no rule met the confidence threshold. A normal
// outcome for strict thresholds; the presentation layer owns the message.
func (r Rankings) Empty() bool { return len(r.ByConfidence) == 0 }

// GenerateRules derives association rules from the frequent itemsets: for
// every itemset of size two or more, every non-empty proper subset becomes
// an antecedent with the complement as consequent, and the rule is retained
// when its confidence meets minConfidence. Identical (antecedent,
// consequent) pairs are deduplicated. Both rankings sort descending with
// ties broken by the antecedent's lexicographic token ordering, then the
// consequent's.
func GenerateRules(freq *FrequentItemsets, minConfidence float64) (Rankings, error) {
	if minConfidence <= 0 || minConfidence > 1 {
		return Rankings{}, fmt.Errorf("apriori: min confidence must be in (0,1], got %g", minConfidence)
	}

	var rules []Rule
	dedupe := make(map[string]bool)
	for _, set := range freq.Sets {
		n := len(set.Items)
		if n < 2 {
			continue
		}
		// Enumerate non-empty proper subsets by bitmask; items are already
		// sorted so each side comes out sorted too.
		for mask := 1; mask < (1<<n)-1; mask++ {
			antecedent := make([]string, 0, n-1)
			consequent := make([]string, 0, n-1)
			for i, item := range set.Items {
				if mask&(1<<i) != 0 {
					antecedent = append(antecedent, item)
				} else {
					consequent = append(consequent, item)
				}
			}
			antSupport, ok := freq.Support(antecedent)
			if !ok || antSupport == 0 {
				// Anti-monotonicity guarantees frequent subsets; a miss
				// would mean an inconsistent input mapping.
				continue
			}
			confidence := set.Support / antSupport
			if confidence < minConfidence {
				continue
			}
			key := strings.Join(antecedent, "\x1f") + "\x1e" + strings.Join(consequent, "\x1f")
			if dedupe[key] {
				continue
			}
			dedupe[key] = true
			rules = append(rules, Rule{
				Antecedent: antecedent,
				Consequent: consequent,
				Support:    set.Support,
				Confidence: confidence,
			})
		}
	}

	byConfidence := make([]Rule, len(rules))
	copy(byConfidence, rules)
	sort.Slice(byConfidence, func(i, j int) bool {
		if byConfidence[i].Confidence != byConfidence[j].Confidence {
			return byConfidence[i].Confidence > byConfidence[j].Confidence
		}
		return lessByTokens(byConfidence[i], byConfidence[j])
	})

	bySupport := make([]Rule, len(rules))
	copy(bySupport, rules)
	sort.Slice(bySupport, func(i, j int) bool {
		if bySupport[i].Support != bySupport[j].Support {
			return bySupport[i].Support > bySupport[j].Support
		}
		return lessByTokens(bySupport[i], bySupport[j])
	})

	return Rankings{
		ByConfidence: truncate(byConfidence),
		BySupport:    truncate(bySupport),
	}, nil
}

func lessByTokens(a, b Rule) bool {
	ak := strings.Join(a.Antecedent, "\x1f")
	bk := strings.Join(b.Antecedent, "\x1f")
	if ak != bk {
		return ak < bk
	}
	return strings.Join(a.Consequent, "\x1f") < strings.Join(b.Consequent, "\x1f")
}

func truncate(rules []Rule) []Rule {
	if len(rules) > MaxRankedRules {
		return rules[:MaxRankedRules]
	}
	return rules
}
