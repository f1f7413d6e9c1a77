package mjam

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, m *Machine) (string, error) {
	out := &bytes.Buffer{}
	err := NewInterpreter(m.Code, nil, out).Run()
	return out.String(), err
}

func TestInterpreter_Arithmetic(t *testing.T) {
	testData := []struct {
		A, B   int
		Prim   Prim
		Output string
	}{
		{A: 2, B: 3, Prim: PrimAdd, Output: "5\n"},
		{A: 2, B: 3, Prim: PrimSub, Output: "-1\n"},
		{A: 6, B: 7, Prim: PrimMult, Output: "42\n"},
		{A: 7, B: 2, Prim: PrimDiv, Output: "3\n"},
		{A: 2, B: 3, Prim: PrimLt, Output: "1\n"},
		{A: 3, B: 3, Prim: PrimGt, Output: "0\n"},
		{A: 3, B: 3, Prim: PrimEq, Output: "1\n"},
		{A: 3, B: 4, Prim: PrimNe, Output: "1\n"},
	}
	for _, data := range testData {
		m := NewMachine()
		m.Emit(LOADL, 0, ZR, data.A)
		m.Emit(LOADL, 0, ZR, data.B)
		m.EmitPrim(data.Prim)
		m.EmitPrim(PrimPutintnl)
		m.Emit(HALT, 0, ZR, 0)
		output, err := run(t, m)
		require.Nil(t, err, data)
		assert.Equal(t, data.Output, output, data)
	}
}

func TestInterpreter_CallAndReturn(t *testing.T) {
	// main: push 20 and 22, call add2, print the result.
	m := NewMachine()
	m.Emit(LOADL, 0, ZR, 20)
	m.Emit(LOADL, 0, ZR, 22)
	call := m.Emit(CALL, 0, CB, Unresolved)
	m.EmitPrim(PrimPutintnl)
	m.Emit(HALT, 0, ZR, 0)
	add2 := m.NextInstrAddr()
	m.Emit(LOAD, 0, LB, -2)
	m.Emit(LOAD, 0, LB, -1)
	m.EmitPrim(PrimAdd)
	m.Emit(RETURN, 1, ZR, 2)
	m.Patch(call, add2)

	output, err := run(t, m)
	require.Nil(t, err)
	assert.Equal(t, "42\n", output)
}

func TestInterpreter_InstanceCall(t *testing.T) {
	// Allocate an object with one field, store 9 into it through an instance method
	// and read it back.
	m := NewMachine()
	m.Emit(LOADL, 0, ZR, -1)
	m.Emit(LOADL, 0, ZR, 1)
	m.EmitPrim(PrimNewobj)
	m.Emit(LOAD, 0, ST, -1)
	call := m.Emit(CALLI, 0, CB, Unresolved)
	m.Emit(LOADL, 0, ZR, 0)
	m.EmitPrim(PrimFieldref)
	m.EmitPrim(PrimPutintnl)
	m.Emit(HALT, 0, ZR, 0)
	set := m.NextInstrAddr()
	m.Emit(LOADA, 0, OB, 0)
	m.Emit(LOADL, 0, ZR, 0)
	m.Emit(LOADL, 0, ZR, 9)
	m.EmitPrim(PrimFieldupd)
	m.Emit(RETURN, 0, ZR, 0)
	m.Patch(call, set)

	output, err := run(t, m)
	require.Nil(t, err)
	assert.Equal(t, "9\n", output)
}

func TestInterpreter_Arrays(t *testing.T) {
	m := NewMachine()
	m.Emit(LOADL, 0, ZR, 3)
	m.EmitPrim(PrimNewarr)
	m.Emit(LOAD, 0, ST, -1)
	m.Emit(LOADL, 0, ZR, 2)
	m.Emit(LOADL, 0, ZR, 11)
	m.EmitPrim(PrimArrayupd)
	m.Emit(LOAD, 0, ST, -1)
	m.EmitPrim(PrimArraylen)
	m.EmitPrim(PrimPutintnl)
	m.Emit(LOADL, 0, ZR, 2)
	m.EmitPrim(PrimArrayref)
	m.EmitPrim(PrimPutintnl)
	m.Emit(HALT, 0, ZR, 0)

	output, err := run(t, m)
	require.Nil(t, err)
	assert.Equal(t, "3\n11\n", output)
}

func TestInterpreter_RuntimeErrors(t *testing.T) {
	testData := []struct {
		Name  string
		Build func(m *Machine)
		Msg   string
	}{
		{Name: "null field", Msg: "null pointer", Build: func(m *Machine) {
			m.Emit(LOADL, 0, ZR, NullRep)
			m.Emit(LOADL, 0, ZR, 0)
			m.EmitPrim(PrimFieldref)
		}},
		{Name: "index out of range", Msg: "out of range", Build: func(m *Machine) {
			m.Emit(LOADL, 0, ZR, 2)
			m.EmitPrim(PrimNewarr)
			m.Emit(LOADL, 0, ZR, 2)
			m.EmitPrim(PrimArrayref)
		}},
		{Name: "division by zero", Msg: "division by zero", Build: func(m *Machine) {
			m.Emit(LOADL, 0, ZR, 1)
			m.Emit(LOADL, 0, ZR, 0)
			m.EmitPrim(PrimDiv)
		}},
		{Name: "negative array size", Msg: "negative", Build: func(m *Machine) {
			m.Emit(LOADL, 0, ZR, -1)
			m.EmitPrim(PrimNewarr)
		}},
		{Name: "jump out of code", Msg: "code address", Build: func(m *Machine) {
			m.Emit(JUMP, 0, CB, 100)
		}},
	}
	for _, data := range testData {
		m := NewMachine()
		data.Build(m)
		m.Emit(HALT, 0, ZR, 0)
		_, err := run(t, m)
		require.NotNil(t, err, data.Name)
		_, ok := err.(*RuntimeError)
		assert.True(t, ok, data.Name)
		assert.True(t, strings.Contains(err.Error(), data.Msg), err.Error())
	}
}
