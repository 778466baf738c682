package kmeans

import (
	"errors"
	"reflect"
	"testing"

	"github.com/KaramelBytes/basketlens/internal/pca"
)

func blobs() []pca.Point {
	return []pca.Point{
		{PC1: 0.0, PC2: 0.1},
		{PC1: 0.2, PC2: -0.1},
		{PC1: -0.1, PC2: 0.0},
		{PC1: 10.0, PC2: 9.9},
		{PC1: 9.8, PC2: 10.2},
		{PC1: 10.1, PC2: 10.0},
	}
}

func TestCluster_InvalidK(t *testing.T) {
	points := blobs()
	var kErr *InvalidClusterCountError
	if _, err := Cluster(points, 0, Options{}); !errors.As(err, &kErr) {
		t.Fatalf("expected InvalidClusterCountError for k=0, got %v", err)
	}
	if _, err := Cluster(points, len(points)+1, Options{}); !errors.As(err, &kErr) {
		t.Fatalf("expected InvalidClusterCountError for k>n, got %v", err)
	}
}

func TestCluster_SeparatesBlobs(t *testing.T) {
	points := blobs()
	res, err := Cluster(points, 2, Options{Seed: 42})
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(res.Labels) != len(points) {
		t.Fatalf("expected %d labels, got %d", len(points), len(res.Labels))
	}
	for i, label := range res.Labels {
		if label < 0 || label >= 2 {
			t.Fatalf("label %d out of range: %d", i, label)
		}
	}
	// Points within one blob must share a label; across blobs they differ.
	if res.Labels[0] != res.Labels[1] || res.Labels[1] != res.Labels[2] {
		t.Fatalf("first blob split across clusters: %v", res.Labels)
	}
	if res.Labels[3] != res.Labels[4] || res.Labels[4] != res.Labels[5] {
		t.Fatalf("second blob split across clusters: %v", res.Labels)
	}
	if res.Labels[0] == res.Labels[3] {
		t.Fatalf("blobs should land in different clusters: %v", res.Labels)
	}
}

func TestCluster_NoEmptyClustersAfterConvergence(t *testing.T) {
	points := blobs()
	for _, k := range []int{2, 3, 4} {
		res, err := Cluster(points, k, Options{Seed: 7})
		if err != nil {
			t.Fatalf("Cluster k=%d: %v", k, err)
		}
		sizes := make([]int, k)
		for _, label := range res.Labels {
			sizes[label]++
		}
		for j, size := range sizes {
			if size == 0 {
				t.Fatalf("k=%d left cluster %d empty: %v", k, j, res.Labels)
			}
		}
	}
}

func TestCluster_DeterministicForSeed(t *testing.T) {
	points := blobs()
	first, err := Cluster(points, 3, Options{Seed: 99})
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	second, err := Cluster(points, 3, Options{Seed: 99})
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different results:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCluster_KEqualsPointCount(t *testing.T) {
	points := blobs()
	res, err := Cluster(points, len(points), Options{Seed: 1})
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	seen := make(map[int]bool)
	for _, label := range res.Labels {
		if seen[label] {
			t.Fatalf("with k=n every point should own a cluster: %v", res.Labels)
		}
		seen[label] = true
	}
}
