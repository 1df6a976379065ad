package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"go_code_tuner/services/tuner/internal/models"
)

// Split shuffles blocks with a seeded source and holds out ceil(testSize*n) of them.
func Split(blocks []models.Block, testSize float64, seed int64) (models.Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return models.Split{}, fmt.Errorf("%w: test size %v is outside (0, 1)", ErrInvalidSplit, testSize)
	}

	n := len(blocks)
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return models.Split{}, fmt.Errorf("%w: %d blocks cannot be split with test size %v", ErrInvalidSplit, n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	split := models.Split{
		Train: make([]models.Block, 0, nTrain),
		Test:  make([]models.Block, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			split.Test = append(split.Test, blocks[idx])
		} else {
			split.Train = append(split.Train, blocks[idx])
		}
	}
	return split, nil
}
