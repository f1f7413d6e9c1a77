package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterClasses(t *testing.T) {
	testData := []struct {
		B       byte
		Number  bool
		Letter  bool
		IdeChar bool
		Space   bool
	}{
		{B: '0', Number: true, IdeChar: true},
		{B: '9', Number: true, IdeChar: true},
		{B: 'a', Letter: true, IdeChar: true},
		{B: 'Z', Letter: true, IdeChar: true},
		{B: '_', IdeChar: true},
		{B: ' ', Space: true},
		{B: '\t', Space: true},
		{B: '\n', Space: true},
		{B: '\r', Space: true},
		{B: '#'},
		{B: '.'},
	}
	for _, data := range testData {
		assert.Equal(t, data.Number, IsNumber(data.B), "%q", data.B)
		assert.Equal(t, data.Letter, IsLetter(data.B), "%q", data.B)
		assert.Equal(t, data.IdeChar, IsLetterOrUnderscoreOrNumber(data.B), "%q", data.B)
		assert.Equal(t, data.Space, IsSpace(data.B), "%q", data.B)
	}
	assert.True(t, IsUnderScore('_'))
	assert.False(t, IsUnderScore('-'))
}
