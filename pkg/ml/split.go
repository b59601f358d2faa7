package ml

import (
	"math/rand"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// StratifiedSplit partitions row indices into train and test sets,
// preserving class proportions. Rows within each class are shuffled by the
// seeded generator before the cut. A class with fewer than 2 members cannot
// appear on both sides of the split and fails fast with
// *models.ErrStratificationInfeasible.
func StratifiedSplit(y []int, classes []string, testFraction float64, seed int64) (trainIdx, testIdx []int, err error) {
	rng := rand.New(rand.NewSource(seed))

	byClass := make(map[int][]int)
	for i, class := range y {
		byClass[class] = append(byClass[class], i)
	}

	// Iterate in encoding order so the seeded shuffle is deterministic
	for class := 0; class < len(classes); class++ {
		rows := byClass[class]
		if len(rows) == 0 {
			continue
		}
		if len(rows) < 2 {
			return nil, nil, &models.ErrStratificationInfeasible{Class: classes[class], Count: len(rows)}
		}
		rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})

		nTest := int(float64(len(rows)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(rows) {
			nTest = len(rows) - 1
		}
		testIdx = append(testIdx, rows[:nTest]...)
		trainIdx = append(trainIdx, rows[nTest:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) {
		trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
	})
	rng.Shuffle(len(testIdx), func(i, j int) {
		testIdx[i], testIdx[j] = testIdx[j], testIdx[i]
	})
	return trainIdx, testIdx, nil
}
