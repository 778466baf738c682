package apriori

import (
	"math"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func findRule(rules []Rule, antecedent, consequent []string) (Rule, bool) {
	for _, r := range rules {
		if reflect.DeepEqual(r.Antecedent, antecedent) && reflect.DeepEqual(r.Consequent, consequent) {
			return r, true
		}
	}
	return Rule{}, false
}

func TestGenerateRules_GroceryFixture(t *testing.T) {
	freq, err := Mine(groceryTransactions(), 0.5, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	rankings, err := GenerateRules(freq, 0.5)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}

	// {milk} → {bread}: confidence 0.5/0.75 ≈ 0.667, retained at 0.5.
	rule, ok := findRule(rankings.ByConfidence, []string{"milk"}, []string{"bread"})
	if !ok {
		t.Fatalf("rule milk→bread missing: %v", rankings.ByConfidence)
	}
	if math.Abs(rule.Confidence-2.0/3.0) > 1e-12 {
		t.Errorf("confidence(milk→bread) = %g, want 2/3", rule.Confidence)
	}
	if rule.Support != 0.5 {
		t.Errorf("support(milk→bread) = %g, want 0.5", rule.Support)
	}

	// {eggs} → {bread}: confidence 0.5/0.5 = 1.0, so it ranks first.
	top := rankings.ByConfidence[0]
	if !reflect.DeepEqual(top.Antecedent, []string{"eggs"}) || top.Confidence != 1.0 {
		t.Errorf("expected eggs→bread at the top, got %+v", top)
	}
}

func TestGenerateRules_InvariantsHold(t *testing.T) {
	freq, err := Mine(groceryTransactions(), 0.25, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	const minConfidence = 0.4
	rankings, err := GenerateRules(freq, minConfidence)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}
	for _, rule := range rankings.ByConfidence {
		if rule.Confidence < minConfidence {
			t.Errorf("rule %v retained below threshold: %g", rule, rule.Confidence)
		}
		union := append(append([]string{}, rule.Antecedent...), rule.Consequent...)
		want, ok := freq.Support(union)
		if !ok {
			t.Fatalf("union %v of rule %v not frequent", union, rule)
		}
		if rule.Support != want {
			t.Errorf("support mismatch for %v: %g != %g", rule, rule.Support, want)
		}
		for _, a := range rule.Antecedent {
			for _, c := range rule.Consequent {
				if a == c {
					t.Errorf("antecedent and consequent overlap in %v", rule)
				}
			}
		}
	}
	if len(rankings.ByConfidence) != len(rankings.BySupport) {
		t.Errorf("rankings hold different rule sets: %d vs %d",
			len(rankings.ByConfidence), len(rankings.BySupport))
	}
}

func TestGenerateRules_Ordering(t *testing.T) {
	freq, err := Mine(groceryTransactions(), 0.25, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	rankings, err := GenerateRules(freq, 0.25)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}
	tieBreak := func(a, b Rule) bool {
		ak, bk := strings.Join(a.Antecedent, "\x1f"), strings.Join(b.Antecedent, "\x1f")
		if ak != bk {
			return ak < bk
		}
		return strings.Join(a.Consequent, "\x1f") < strings.Join(b.Consequent, "\x1f")
	}
	if !sort.SliceIsSorted(rankings.ByConfidence, func(i, j int) bool {
		a, b := rankings.ByConfidence[i], rankings.ByConfidence[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return tieBreak(a, b)
	}) {
		t.Errorf("ByConfidence not sorted: %v", rankings.ByConfidence)
	}
	if !sort.SliceIsSorted(rankings.BySupport, func(i, j int) bool {
		a, b := rankings.BySupport[i], rankings.BySupport[j]
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		return tieBreak(a, b)
	}) {
		t.Errorf("BySupport not sorted: %v", rankings.BySupport)
	}

	// Same thresholds, same input: identical rankings.
	again, err := GenerateRules(freq, 0.25)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}
	if !reflect.DeepEqual(rankings, again) {
		t.Errorf("rule generation is not deterministic")
	}
}

func TestGenerateRules_EmptyOutcomes(t *testing.T) {
	freq, err := Mine(groceryTransactions(), 0.9, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	rankings, err := GenerateRules(freq, 0.5)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}
	if !rankings.Empty() {
		t.Fatalf("expected no rules from an empty frequent set, got %v", rankings)
	}

	// An impossible confidence threshold is a normal empty result too.
	freq, err = Mine(groceryTransactions(), 0.5, Options{})
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	rankings, err = GenerateRules(freq, 1.0)
	if err != nil {
		t.Fatalf("GenerateRules: %v", err)
	}
	for _, rule := range rankings.ByConfidence {
		if rule.Confidence < 1.0 {
			t.Fatalf("rule below confidence 1.0 retained: %+v", rule)
		}
	}
}

func TestGenerateRules_InvalidConfidence(t *testing.T) {
	freq, _ := Mine(groceryTransactions(), 0.5, Options{})
	for _, bad := range []float64{0, -1, 1.01} {
		if _, err := GenerateRules(freq, bad); err == nil {
			t.Errorf("expected error for minConfidence=%g", bad)
		}
	}
}
