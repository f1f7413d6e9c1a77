package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualTypes(t *testing.T) {
	a1, a2, b := newClassType("A"), newClassType("A"), newClassType("B")
	testData := []struct {
		Left, Right TypeDenoter
		Equal       bool
	}{
		{Left: intType, Right: newBaseType(IntTypeKind, SourcePosition{Start: 3}), Equal: true},
		{Left: intType, Right: booleanType, Equal: false},
		{Left: a1, Right: a2, Equal: true},
		{Left: a1, Right: b, Equal: false},
		{Left: &ArrayType{ElementType: a1}, Right: &ArrayType{ElementType: a2}, Equal: true},
		{Left: &ArrayType{ElementType: intType}, Right: &ArrayType{ElementType: a1}, Equal: false},
		{Left: &ArrayType{ElementType: intType}, Right: intType, Equal: false},
		{Left: nullType, Right: a1, Equal: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Equal, EqualTypes(data.Left, data.Right), "%s == %s", data.Left, data.Right)
		assert.Equal(t, data.Equal, EqualTypes(data.Right, data.Left), "%s == %s", data.Right, data.Left)
	}
}

func TestCanAssign(t *testing.T) {
	types := []TypeDenoter{intType, booleanType, newClassType("A"), &ArrayType{ElementType: intType}}
	for _, tp := range types {
		assert.True(t, CanAssign(tp, tp), tp.String())
	}
	assert.True(t, CanAssign(newClassType("A"), nullType))
	assert.True(t, CanAssign(&ArrayType{ElementType: newClassType("A")}, nullType))
	assert.False(t, CanAssign(intType, nullType))
	assert.False(t, CanAssign(booleanType, nullType))
	assert.False(t, CanAssign(newClassType("A"), newClassType("B")))
	assert.False(t, CanAssign(nullType, newClassType("A")))
}
