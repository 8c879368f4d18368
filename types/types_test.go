package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1})
		assert.Equal(t, EdgeKey((1<<32-1)<<32+1), en)
		assert.Equal(t, [2]int{1, 1<<32 - 1}, en.GetVertices(false))
	}
	{
		assert.Equal(t, NewFaceKey([3]int{2, 0, 1}), NewFaceKey([3]int{1, 2, 0}))
		assert.Equal(t, FaceKey{0, 1, 2}, NewFaceKey([3]int{2, 0, 1}))
	}
	{
		assert.Equal(t, "line", Line.String())
		assert.Equal(t, "grade(7)", Grade(7).String())
		assert.Equal(t, 4, Volume.NVertices())
		assert.False(t, Grade(-1).Valid())
		assert.Equal(t, Area, GradeNameMap["faces"])
		assert.Equal(t, "AddToSynonyms", SymmetryAdd.String())
	}
}
