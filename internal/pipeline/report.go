package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/basketlens/internal/apriori"
	"github.com/KaramelBytes/basketlens/internal/pca"
)

// SegmentSummary aggregates one cluster for tabular display.
type SegmentSummary struct {
	Cluster   int       `json:"cluster"`
	Size      int       `json:"size"`
	MeanAge   float64   `json:"mean_age"`
	MeanTotal float64   `json:"mean_total"`
	Centroid  pca.Point `json:"centroid"`
}

// Segments summarizes the clusters, ordered by label. Empty when
// segmentation failed.
func (r *Result) Segments() []SegmentSummary {
	if len(r.Labels) == 0 {
		return nil
	}
	out := make([]SegmentSummary, len(r.Centroids))
	for i := range out {
		out[i] = SegmentSummary{Cluster: i, Centroid: r.Centroids[i]}
	}
	for i, rec := range r.Records {
		s := &out[r.Labels[i]]
		s.Size++
		s.MeanAge += float64(rec.Age)
		s.MeanTotal += rec.Total
	}
	for i := range out {
		if out[i].Size > 0 {
			out[i].MeanAge /= float64(out[i].Size)
			out[i].MeanTotal /= float64(out[i].Size)
		}
	}
	return out
}

// Markdown renders a compact run report suitable for the terminal or a
// standalone doc.
func (r *Result) Markdown(sampleRows int) string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	b.WriteString(fmt.Sprintf("ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Validated rows: %d\n", len(r.Records)))
	b.WriteString(fmt.Sprintf("Parameters: clusters=%d min_support=%.3f min_confidence=%.3f seed=%d\n",
		r.Config.ClusterCount, r.Config.MinSupport, r.Config.MinConfidence, r.Config.Seed))
	if r.Elapsed > 0 {
		b.WriteString(fmt.Sprintf("Elapsed: %s\n", r.Elapsed))
	}

	b.WriteString("\n[SEGMENTS]\n")
	if r.ClusterErr != nil {
		b.WriteString(fmt.Sprintf("- skipped: %v\n", r.ClusterErr))
	} else {
		for _, s := range r.Segments() {
			b.WriteString(fmt.Sprintf("- cluster %d: n=%d, mean age %.1f, mean total %.2f, centroid (%.3f, %.3f)\n",
				s.Cluster, s.Size, s.MeanAge, s.MeanTotal, s.Centroid.PC1, s.Centroid.PC2))
		}
	}

	if sampleRows > 0 && len(r.Records) > 0 {
		b.WriteString("\n[SAMPLE RECORDS]\n")
		b.WriteString("| payment | age | city | total | items | cluster |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		n := sampleRows
		if len(r.Records) < n {
			n = len(r.Records)
		}
		for i := 0; i < n; i++ {
			rec := r.Records[i]
			label := "-"
			if i < len(r.Labels) {
				label = fmt.Sprintf("%d", r.Labels[i])
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %.2f | %s | %s |\n",
				safeVal(rec.PaymentType), rec.Age, safeVal(rec.City), rec.Total,
				safeVal(strings.Join(rec.Items, ", ")), label))
		}
	}

	if r.Frequent != nil {
		b.WriteString(fmt.Sprintf("\n[FREQUENT ITEMSETS]\nFound: %d (over %d transactions)\n",
			len(r.Frequent.Sets), r.Frequent.Transactions))
		writeRules(&b, "[RULES BY CONFIDENCE]", r.Rules.ByConfidence)
		writeRules(&b, "[RULES BY SUPPORT]", r.Rules.BySupport)
		if r.Rules.Empty() {
			b.WriteString("\nNo rules at these thresholds; try lowering --min-support or --min-confidence.\n")
		}
	}
	return b.String()
}

func writeRules(b *strings.Builder, header string, rules []apriori.Rule) {
	if len(rules) == 0 {
		return
	}
	b.WriteString("\n" + header + "\n")
	for _, rule := range rules {
		b.WriteString(fmt.Sprintf("- %s → %s (confidence %.3f, support %.3f)\n",
			strings.Join(rule.Antecedent, ", "), strings.Join(rule.Consequent, ", "),
			rule.Confidence, rule.Support))
	}
}

// JSON renders the result for machine consumption. The cluster error, when
// present, is carried as a plain string.
func (r *Result) JSON() ([]byte, error) {
	type alias Result
	view := struct {
		*alias
		Segments     []SegmentSummary `json:"segments,omitempty"`
		ClusterError string           `json:"cluster_error,omitempty"`
	}{alias: (*alias)(r), Segments: r.Segments()}
	if r.ClusterErr != nil {
		view.ClusterError = r.ClusterErr.Error()
	}
	b, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return b, nil
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
