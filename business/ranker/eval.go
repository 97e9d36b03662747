package ranker

import "math"

// AUC is the probability a random positive outscores a random negative,
// ties counting half. It is 0.5 when either class is empty.
func AUC(labels []int, scores []float64) float64 {
	var pos, neg []float64
	for i := range labels {
		if i >= len(scores) {
			break
		}
		if labels[i] == 1 {
			pos = append(pos, scores[i])
		} else {
			neg = append(neg, scores[i])
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return 0.5
	}

	wins := 0.0
	for _, p := range pos {
		for _, n := range neg {
			switch {
			case p > n:
				wins++
			case p == n:
				wins += 0.5
			}
		}
	}
	return wins / float64(len(pos)*len(neg))
}

func PrecisionAtK(pred []string, truth map[string]struct{}, k int) float64 {
	top := head(pred, k)
	if len(top) == 0 {
		return 0
	}
	return float64(hits(top, truth)) / float64(len(top))
}

func RecallAtK(pred []string, truth map[string]struct{}, k int) float64 {
	if len(truth) == 0 {
		return 0
	}
	return float64(hits(head(pred, k), truth)) / float64(len(truth))
}

// NDCGAtK uses binary relevance.
func NDCGAtK(pred []string, truth map[string]struct{}, k int) float64 {
	dcg := 0.0
	for i, id := range head(pred, k) {
		if _, ok := truth[id]; ok {
			dcg += 1 / math.Log2(float64(i+2))
		}
	}

	ideal := len(truth)
	if k < ideal {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i+2))
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

func BatchMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func head(pred []string, k int) []string {
	if k < 0 {
		k = 0
	}
	if k < len(pred) {
		return pred[:k]
	}
	return pred
}

func hits(pred []string, truth map[string]struct{}) int {
	n := 0
	for _, id := range pred {
		if _, ok := truth[id]; ok {
			n++
		}
	}
	return n
}
