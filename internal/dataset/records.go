package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Canonical column names for the transaction schema. Header matching is
// case-insensitive; columns outside this set are ignored.
const (
	ColPaymentType = "paymentType"
	ColAge         = "age"
	ColCity        = "city"
	ColItems       = "items"
	ColTotal       = "total"
	ColCount       = "count"
)

// RawRow is one undecoded input line, keyed by canonical column name.
type RawRow map[string]string

// TransactionRecord is a validated point-of-sale transaction. Records are
// immutable after cleaning and live only for the duration of one run.
type TransactionRecord struct {
	PaymentType string   `json:"payment_type"`
	Age         int      `json:"age"`
	City        string   `json:"city"`
	Total       float64  `json:"total"`
	Count       float64  `json:"count"`
	RawItems    string   `json:"raw_items"`
	Items       []string `json:"items"`
}

// ErrEmptyDataset is returned when cleaning leaves no usable rows. Callers
// must halt the pipeline rather than invoke downstream stages.
var ErrEmptyDataset = errors.New("dataset: no valid rows after cleaning")

// iqrFenceFactor is the standard boxplot whisker multiplier.
const iqrFenceFactor = 1.5

// Clean validates raw rows into transaction records. Steps, in order:
// drop rows with missing or unparseable fields, deduplicate by full-row
// equality (first occurrence wins), reject rows with a negative numeric
// field, then drop rows whose total or count falls outside the IQR fence
// computed once over the surviving rows. The item-list field is trimmed
// here; token parsing happens in ParseItems.
//
// Cleaning is a fixed point: running Clean over the rows of its own output
// yields the same records.
func Clean(rows []RawRow) ([]TransactionRecord, error) {
	parsed := make([]TransactionRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok {
			continue
		}
		parsed = append(parsed, rec)
	}
	if len(parsed) == 0 {
		return nil, ErrEmptyDataset
	}

	// Deduplicate on full-row equality, keeping first occurrence order.
	seen := make(map[string]bool, len(parsed))
	deduped := parsed[:0]
	for _, rec := range parsed {
		key := rec.dedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, rec)
	}

	// Negative values in any numeric column invalidate the row.
	nonNegative := deduped[:0]
	for _, rec := range deduped {
		if rec.Age < 0 || rec.Total < 0 || rec.Count < 0 {
			continue
		}
		nonNegative = append(nonNegative, rec)
	}
	if len(nonNegative) == 0 {
		return nil, ErrEmptyDataset
	}

	// Outlier fences are computed once over the surviving rows so the
	// result does not depend on removal order.
	totalLo, totalHi := iqrFence(collect(nonNegative, func(r TransactionRecord) float64 { return r.Total }))
	countLo, countHi := iqrFence(collect(nonNegative, func(r TransactionRecord) float64 { return r.Count }))

	records := make([]TransactionRecord, 0, len(nonNegative))
	for _, rec := range nonNegative {
		if rec.Total < totalLo || rec.Total > totalHi {
			continue
		}
		if rec.Count < countLo || rec.Count > countHi {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

// parseRow decodes one raw row against the schema. Any missing, empty or
// unparseable field disqualifies the row.
func parseRow(row RawRow) (TransactionRecord, bool) {
	var rec TransactionRecord

	rec.PaymentType = strings.TrimSpace(row[ColPaymentType])
	rec.City = strings.TrimSpace(row[ColCity])
	rec.RawItems = strings.TrimSpace(row[ColItems])
	if rec.PaymentType == "" || rec.City == "" || rec.RawItems == "" {
		return rec, false
	}

	ageRaw := strings.TrimSpace(row[ColAge])
	age, err := strconv.Atoi(ageRaw)
	if err != nil {
		return rec, false
	}
	rec.Age = age

	total, ok := parseFinite(row[ColTotal])
	if !ok {
		return rec, false
	}
	rec.Total = total

	count, ok := parseFinite(row[ColCount])
	if !ok {
		return rec, false
	}
	rec.Count = count

	rec.Items = ParseItems(rec.RawItems)
	if len(rec.Items) == 0 {
		return rec, false
	}
	return rec, true
}

// parseFinite parses a real-valued field. NaN and infinities count as
// unparseable so they are dropped at the missing-field step.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (r TransactionRecord) dedupeKey() string {
	return strings.Join([]string{
		r.PaymentType,
		strconv.Itoa(r.Age),
		r.City,
		r.RawItems,
		strconv.FormatFloat(r.Total, 'g', -1, 64),
		strconv.FormatFloat(r.Count, 'g', -1, 64),
	}, "\x1f")
}

func collect(records []TransactionRecord, f func(TransactionRecord) float64) []float64 {
	vals := make([]float64, len(records))
	for i, rec := range records {
		vals[i] = f(rec)
	}
	return vals
}

// iqrFence returns the [Q1-1.5*IQR, Q3+1.5*IQR] interval for vals.
func iqrFence(vals []float64) (lo, hi float64) {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - iqrFenceFactor*iqr, q3 + iqrFenceFactor*iqr
}

// quantile interpolates the q-th quantile of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Matrix returns the numeric projection of the records (age and total per
// row), row-aligned with the input. The count column exists only for the
// outlier check and is excluded from downstream analysis.
func Matrix(records []TransactionRecord) [][]float64 {
	m := make([][]float64, len(records))
	for i, rec := range records {
		m[i] = []float64{float64(rec.Age), rec.Total}
	}
	return m
}

// MatrixColumns names the columns produced by Matrix, in order.
func MatrixColumns() []string {
	return []string{ColAge, ColTotal}
}

// Transactions returns the item-token set of each record for mining.
// Duplicate tokens within a record collapse to one occurrence.
func Transactions(records []TransactionRecord) [][]string {
	txs := make([][]string, len(records))
	for i, rec := range records {
		seen := make(map[string]bool, len(rec.Items))
		set := make([]string, 0, len(rec.Items))
		for _, item := range rec.Items {
			if seen[item] {
				continue
			}
			seen[item] = true
			set = append(set, item)
		}
		txs[i] = set
	}
	return txs
}

// Rows converts records back into raw rows using the canonical schema.
// Useful for re-validating an already-cleaned set.
func Rows(records []TransactionRecord) []RawRow {
	rows := make([]RawRow, len(records))
	for i, rec := range records {
		rows[i] = RawRow{
			ColPaymentType: rec.PaymentType,
			ColAge:         strconv.Itoa(rec.Age),
			ColCity:        rec.City,
			ColItems:       rec.RawItems,
			ColTotal:       strconv.FormatFloat(rec.Total, 'g', -1, 64),
			ColCount:       strconv.FormatFloat(rec.Count, 'g', -1, 64),
		}
	}
	return rows
}

// String implements a compact debug form.
func (r TransactionRecord) String() string {
	return fmt.Sprintf("%s/%s age=%d total=%.2f items=%d", r.PaymentType, r.City, r.Age, r.Total, len(r.Items))
}
