package pretrain

import (
	"encoding/binary"
	"testing"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeInstance(isNext bool, base int32) Instance {
	return Instance{
		IsNext:        isNext,
		InputIDs:      []int32{base, base + 1, base + 2},
		SegmentIDs:    []int32{0, 0, 1},
		InputMask:     []int32{1, 1, 1},
		MaskedIDs:     []int32{base, 0},
		MaskedPos:     []int32{1, 0},
		MaskedWeights: []int32{1, 0},
	}
}

func TestAssembleBatch(t *testing.T) {
	instances := []Instance{
		makeInstance(true, 10),
		makeInstance(false, 20),
		makeInstance(true, 30),
	}
	b := assembleBatch(instances)

	require.Equal(t, 3, b.Size())
	// Instance order is preserved along the batch axis.
	assert.Equal(t, []int32{10, 11, 12}, b.InputIDs[0])
	assert.Equal(t, []int32{20, 21, 22}, b.InputIDs[1])
	assert.Equal(t, []int32{30, 31, 32}, b.InputIDs[2])
	assert.Equal(t, []int32{1, 0, 1}, b.IsNext)
	assert.Equal(t, []int32{10, 0}, b.MaskedIDs[0])
}

func TestAssembleEmptyBatch(t *testing.T) {
	b := assembleBatch(nil)
	assert.Equal(t, 0, b.Size())
}

func TestBatchTensors(t *testing.T) {
	instances := []Instance{
		makeInstance(true, 10),
		makeInstance(false, 20),
	}
	fields := assembleBatch(instances).Tensors()
	require.Len(t, fields, NumFields)

	// Six [batch, width] fields followed by the [batch] is-next labels.
	for i, field := range fields[:3] {
		assert.Equal(t, []int{2, 3}, field.Shape().Dimensions, "field %d", i)
	}
	for i, field := range fields[3:6] {
		assert.Equal(t, []int{2, 2}, field.Shape().Dimensions, "field %d", i+3)
	}
	assert.Equal(t, []int{2}, fields[6].Shape().Dimensions)

	assert.Equal(t, []int32{10, 11, 12, 20, 21, 22}, tensorData(fields[0]))
	assert.Equal(t, []int32{1, 0}, tensorData(fields[6]))
}

// tensorData reads back the flat int32 content of a tensor.
func tensorData(tensor *tensors.Tensor) []int32 {
	flat := make([]int32, tensor.Shape().Size())
	tensor.MutableBytes(func(data []byte) {
		for i := range flat {
			flat[i] = int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
		}
	})
	return flat
}
