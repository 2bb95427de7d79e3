package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	buf := &Buffer{}
	buf.Feed(5, -3)

	assert.Equal([]int32{5, -3}, buf.Pending())

	value, err := buf.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(5), value)
	assert.Equal([]int32{-3}, buf.Pending())

	value, err = buf.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(-3), value)
	assert.Empty(buf.Pending())

	_, err = buf.ReadInt()
	assert.Equal(ErrInputEmpty, err)

	assert.NoError(buf.WriteInt(8))
	assert.NoError(buf.WriteInt(9))
	assert.Equal([]int32{8, 9}, buf.Out)
}

func TestBuffer_Rewind(t *testing.T) {
	assert := assert.New(t)

	buf := &Buffer{In: []int32{1, 2}}

	value, err := buf.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(1), value)
	assert.NoError(buf.WriteInt(10))

	buf.Rewind()

	assert.Equal([]int32{1, 2}, buf.Pending())
	assert.Empty(buf.Out)

	value, err = buf.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(1), value)
}
