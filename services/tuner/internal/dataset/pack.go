package dataset

import (
	"go_code_tuner/services/tuner/internal/models"
)

type PackOptions struct {
	PadTokenID int
	// MaskPadding sets the labels of padded positions to models.IgnoreIndex.
	MaskPadding bool
}

// PackBlocks concatenates the sequences in order and slices the stream into blocks of
// exactly blockSize tokens. A trailing remainder is right-padded into one last block.
func PackBlocks(sequences []models.TokenSequence, blockSize int, opts PackOptions) ([]models.Block, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}

	total := 0
	for _, seq := range sequences {
		total += len(seq.InputIDs)
	}
	if total == 0 {
		return nil, ErrEmptyInput
	}

	stream := make([]int, 0, total)
	for _, seq := range sequences {
		stream = append(stream, seq.InputIDs...)
	}

	truncated := (total / blockSize) * blockSize
	blocks := make([]models.Block, 0, (total+blockSize-1)/blockSize)
	for start := 0; start < truncated; start += blockSize {
		blocks = append(blocks, newBlock(stream[start:start+blockSize], blockSize, opts))
	}
	if truncated < total {
		blocks = append(blocks, newBlock(stream[truncated:], blockSize, opts))
	}
	return blocks, nil
}

func newBlock(tokens []int, blockSize int, opts PackOptions) models.Block {
	block := models.Block{
		InputIDs:      make([]int, blockSize),
		Labels:        make([]int, blockSize),
		AttentionMask: make([]int, blockSize),
	}
	for i := 0; i < blockSize; i++ {
		if i < len(tokens) {
			block.InputIDs[i] = tokens[i]
			block.Labels[i] = tokens[i]
			block.AttentionMask[i] = 1
			continue
		}
		block.InputIDs[i] = opts.PadTokenID
		block.Labels[i] = opts.PadTokenID
		if opts.MaskPadding {
			block.Labels[i] = models.IgnoreIndex
		}
	}
	return block
}
