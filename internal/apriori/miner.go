// Package apriori mines frequent itemsets from transaction item sets and
// derives ranked association rules from them.
package apriori

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Itemset is a set of item tokens, sorted lexicographically, with the
// fraction of transactions containing all of them.
type Itemset struct {
	Items   []string `json:"items"`
	Support float64  `json:"support"`
}

// Options tunes a mining run.
type Options struct {
	// Workers sets the number of goroutines for support counting; values
	// below 2 select the serial path. Parallel counting merges per-batch
	// counts and is result-identical to the serial path.
	Workers int
}

// FrequentItemsets is the union of frequent itemsets across all levels of
// one mining run, all sharing the same transaction-count denominator.
type FrequentItemsets struct {
	Sets         []Itemset `json:"sets"`
	Transactions int       `json:"transactions"`

	byKey map[string]float64
}

// Support returns the mined support for the given tokens, in any order.
func (f *FrequentItemsets) Support(items []string) (float64, bool) {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	s, ok := f.byKey[strings.Join(sorted, "\x1f")]
	return s, ok
}

// Empty reports whether mining found no frequent itemsets. This is a normal
// outcome for strict thresholds, not an error.
func (f *FrequentItemsets) Empty() bool { return len(f.Sets) == 0 }

// Mine computes every itemset whose support meets or exceeds minSupport,
// level-wise: frequent single items first, then size-L candidates joined
// from frequent (L-1)-sets sharing L-2 items, pruned when any (L-1)-subset
// is infrequent, counted by scanning all transactions, until a level comes
// up empty. Items are interned to integer IDs in lexicographic order so the
// result ordering is deterministic.
//
// Support is always count/totalTransactions with one denominator per run.
// Duplicate tokens within a transaction collapse to one occurrence.
func Mine(transactions [][]string, minSupport float64, opt Options) (*FrequentItemsets, error) {
	if minSupport <= 0 || minSupport > 1 {
		return nil, fmt.Errorf("apriori: min support must be in (0,1], got %g", minSupport)
	}
	result := &FrequentItemsets{
		Transactions: len(transactions),
		byKey:        make(map[string]float64),
	}
	if len(transactions) == 0 {
		return result, nil
	}

	vocab, encoded := intern(transactions)
	total := float64(len(transactions))

	// Level 1: single-item counts in one pass.
	counts := make([]int, len(vocab))
	for _, tx := range encoded {
		for _, id := range tx {
			counts[id]++
		}
	}
	var frequent [][]int
	for id, c := range counts {
		if sup := float64(c) / total; sup >= minSupport {
			frequent = append(frequent, []int{id})
			result.add(vocab, []int{id}, sup)
		}
	}

	// Transaction membership sets for the candidate scans.
	txSets := make([]map[int]bool, len(encoded))
	for i, tx := range encoded {
		set := make(map[int]bool, len(tx))
		for _, id := range tx {
			set[id] = true
		}
		txSets[i] = set
	}

	for level := 2; len(frequent) > 0; level++ {
		candidates := joinAndPrune(frequent, level)
		if len(candidates) == 0 {
			break
		}
		candCounts, err := countCandidates(candidates, txSets, opt.Workers)
		if err != nil {
			return nil, err
		}
		frequent = frequent[:0]
		for i, cand := range candidates {
			if sup := float64(candCounts[i]) / total; sup >= minSupport {
				frequent = append(frequent, cand)
				result.add(vocab, cand, sup)
			}
		}
	}
	return result, nil
}

func (f *FrequentItemsets) add(vocab []string, ids []int, support float64) {
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = vocab[id]
	}
	f.Sets = append(f.Sets, Itemset{Items: items, Support: support})
	f.byKey[strings.Join(items, "\x1f")] = support
}

// intern maps tokens to integer IDs assigned in lexicographic token order,
// so ascending ID order is ascending token order. Each transaction comes
// back as a sorted set of IDs with duplicates collapsed.
func intern(transactions [][]string) ([]string, [][]int) {
	unique := make(map[string]bool)
	for _, tx := range transactions {
		for _, item := range tx {
			unique[item] = true
		}
	}
	vocab := make([]string, 0, len(unique))
	for item := range unique {
		vocab = append(vocab, item)
	}
	sort.Strings(vocab)
	ids := make(map[string]int, len(vocab))
	for id, item := range vocab {
		ids[item] = id
	}

	encoded := make([][]int, len(transactions))
	for i, tx := range transactions {
		seen := make(map[int]bool, len(tx))
		set := make([]int, 0, len(tx))
		for _, item := range tx {
			id := ids[item]
			if seen[id] {
				continue
			}
			seen[id] = true
			set = append(set, id)
		}
		sort.Ints(set)
		encoded[i] = set
	}
	return vocab, encoded
}

// joinAndPrune generates size-level candidates by joining sorted frequent
// (level-1)-sets that share their first level-2 IDs, then drops any
// candidate with an infrequent (level-1)-subset. No superset of an
// infrequent set can be frequent.
func joinAndPrune(frequent [][]int, level int) [][]int {
	prev := make(map[string]bool, len(frequent))
	for _, set := range frequent {
		prev[idKey(set)] = true
	}

	var candidates [][]int
	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			a, b := frequent[i], frequent[j]
			if !samePrefix(a, b, level-2) {
				continue
			}
			last := b[level-2]
			if last <= a[level-2] {
				continue
			}
			cand := make([]int, level)
			copy(cand, a)
			cand[level-1] = last
			if hasInfrequentSubset(cand, prev) {
				continue
			}
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

func samePrefix(a, b []int, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasInfrequentSubset(cand []int, prev map[string]bool) bool {
	sub := make([]int, 0, len(cand)-1)
	for skip := range cand {
		sub = sub[:0]
		for i, id := range cand {
			if i != skip {
				sub = append(sub, id)
			}
		}
		if !prev[idKey(sub)] {
			return true
		}
	}
	return false
}

// countCandidates scans every transaction for every candidate. With two or
// more workers the transactions are split into batches counted concurrently
// and merged, which cannot change the totals.
func countCandidates(candidates [][]int, txSets []map[int]bool, workers int) ([]int, error) {
	if workers < 2 || len(txSets) < workers {
		return countBatch(candidates, txSets), nil
	}

	batches := make([][]int, workers)
	var g errgroup.Group
	size := (len(txSets) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * size
		hi := lo + size
		if hi > len(txSets) {
			hi = len(txSets)
		}
		if lo >= hi {
			batches[w] = make([]int, len(candidates))
			continue
		}
		g.Go(func() error {
			batches[w] = countBatch(candidates, txSets[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make([]int, len(candidates))
	for _, batch := range batches {
		for i, c := range batch {
			counts[i] += c
		}
	}
	return counts, nil
}

func countBatch(candidates [][]int, txSets []map[int]bool) []int {
	counts := make([]int, len(candidates))
	for _, set := range txSets {
		for i, cand := range candidates {
			if len(cand) > len(set) {
				continue
			}
			if containsAll(set, cand) {
				counts[i]++
			}
		}
	}
	return counts
}

func containsAll(set map[int]bool, ids []int) bool {
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

func idKey(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}
