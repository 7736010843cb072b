package pretrain

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch groups BatchSize transformed instances into per-field arrays, the
// instance order preserved along the first (batch) axis. Field order is fixed
// and matches the training-loop contract: input ids, segment ids, input mask,
// masked ids, masked positions, masked weights, is-next label.
type Batch struct {
	InputIDs      [][]int32 // [batch][maxLen]
	SegmentIDs    [][]int32 // [batch][maxLen]
	InputMask     [][]int32 // [batch][maxLen]
	MaskedIDs     [][]int32 // [batch][maxPred]
	MaskedPos     [][]int32 // [batch][maxPred]
	MaskedWeights [][]int32 // [batch][maxPred]
	IsNext        []int32   // [batch], 0 or 1
}

// NumFields is the number of per-instance fields in a batch.
const NumFields = 7

// assembleBatch transposes transformed instances field-wise. Shape
// consistency is guaranteed by construction: every instance went through the
// same Masker.
func assembleBatch(instances []Instance) *Batch {
	b := &Batch{
		InputIDs:      make([][]int32, len(instances)),
		SegmentIDs:    make([][]int32, len(instances)),
		InputMask:     make([][]int32, len(instances)),
		MaskedIDs:     make([][]int32, len(instances)),
		MaskedPos:     make([][]int32, len(instances)),
		MaskedWeights: make([][]int32, len(instances)),
		IsNext:        make([]int32, len(instances)),
	}
	for i, inst := range instances {
		b.InputIDs[i] = inst.InputIDs
		b.SegmentIDs[i] = inst.SegmentIDs
		b.InputMask[i] = inst.InputMask
		b.MaskedIDs[i] = inst.MaskedIDs
		b.MaskedPos[i] = inst.MaskedPos
		b.MaskedWeights[i] = inst.MaskedWeights
		if inst.IsNext {
			b.IsNext[i] = 1
		}
	}
	return b
}

// Size returns the number of instances in the batch.
func (b *Batch) Size() int {
	return len(b.IsNext)
}

// Tensors converts the batch to GoMLX tensors in the fixed field order. The
// six wide fields have shape [batch, width]; IsNext has shape [batch].
func (b *Batch) Tensors() []*tensors.Tensor {
	return []*tensors.Tensor{
		rowsToTensor(b.InputIDs),
		rowsToTensor(b.SegmentIDs),
		rowsToTensor(b.InputMask),
		rowsToTensor(b.MaskedIDs),
		rowsToTensor(b.MaskedPos),
		rowsToTensor(b.MaskedWeights),
		tensors.FromFlatDataAndDimensions(b.IsNext, len(b.IsNext)),
	}
}

// rowsToTensor flattens [batch][width] rows into one [batch, width] tensor.
func rowsToTensor(rows [][]int32) *tensors.Tensor {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	flat := make([]int32, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return tensors.FromFlatDataAndDimensions(flat, len(rows), width)
}
