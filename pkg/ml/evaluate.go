package ml

// EvaluationMetrics holds classification metrics over a test partition.
// The confusion matrix is indexed by class encoding order: rows are actual
// classes, columns predicted.
type EvaluationMetrics struct {
	Accuracy        float64            `json:"accuracy"`
	Precision       map[string]float64 `json:"precision"`
	Recall          map[string]float64 `json:"recall"`
	F1Score         map[string]float64 `json:"f1_score"`
	ConfusionMatrix [][]int            `json:"confusion_matrix"`
	Support         map[string]int     `json:"support"`
	TotalSamples    int                `json:"total_samples"`
	Correct         int                `json:"correct_predictions"`
}

// CalculateMetrics computes accuracy, per-class precision/recall/F1 and the
// confusion matrix from encoded actual/predicted class indices.
func CalculateMetrics(yTrue, yPred []int, classes []string) *EvaluationMetrics {
	k := len(classes)
	m := &EvaluationMetrics{
		Precision:       make(map[string]float64, k),
		Recall:          make(map[string]float64, k),
		F1Score:         make(map[string]float64, k),
		Support:         make(map[string]int, k),
		ConfusionMatrix: make([][]int, k),
		TotalSamples:    len(yTrue),
	}
	for i := range m.ConfusionMatrix {
		m.ConfusionMatrix[i] = make([]int, k)
	}

	for i := range yTrue {
		m.ConfusionMatrix[yTrue[i]][yPred[i]]++
		m.Support[classes[yTrue[i]]]++
		if yTrue[i] == yPred[i] {
			m.Correct++
		}
	}
	if m.TotalSamples > 0 {
		m.Accuracy = float64(m.Correct) / float64(m.TotalSamples)
	}

	for class := 0; class < k; class++ {
		tp := m.ConfusionMatrix[class][class]
		fn, fp := 0, 0
		for other := 0; other < k; other++ {
			if other == class {
				continue
			}
			fn += m.ConfusionMatrix[class][other]
			fp += m.ConfusionMatrix[other][class]
		}

		name := classes[class]
		if tp+fp > 0 {
			m.Precision[name] = float64(tp) / float64(tp+fp)
		} else {
			m.Precision[name] = 0
		}
		if tp+fn > 0 {
			m.Recall[name] = float64(tp) / float64(tp+fn)
		} else {
			m.Recall[name] = 0
		}
		prec, rec := m.Precision[name], m.Recall[name]
		if prec+rec > 0 {
			m.F1Score[name] = 2 * prec * rec / (prec + rec)
		} else {
			m.F1Score[name] = 0
		}
	}
	return m
}
