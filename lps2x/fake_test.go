package lps2x

import (
	"errors"
	"fmt"
)

// op is one recorded bus access.
type op struct {
	write bool
	reg   byte
	n     int  // bytes read
	value byte // byte written
}

func (o op) String() string {
	if o.write {
		return fmt.Sprintf("W %#02x=%#02x", o.reg, o.value)
	}
	return fmt.Sprintf("R %#02x[%d]", o.reg, o.n)
}

// regFile is an in-memory register file that behaves like the device for
// plain reads and writes, with auto-increment on multi-byte reads.
type regFile struct {
	model Model
	regs  [256]byte
	ops   []op

	// failAfter makes the access with this index (0-based) fail. Negative
	// disables injection.
	failAfter int
}

var errInjected = errors.New("injected bus failure")

func newRegFile(m Model) *regFile {
	return &regFile{model: m, failAfter: -1}
}

func (f *regFile) Model() Model { return f.model }

func (f *regFile) fail() bool {
	return f.failAfter >= 0 && len(f.ops) > f.failAfter
}

func (f *regFile) Read(reg byte, b []byte) error {
	f.ops = append(f.ops, op{reg: reg, n: len(b)})
	if f.fail() {
		return &BusError{Op: "read", Reg: reg, Err: errInjected}
	}
	copy(b, f.regs[int(reg):])
	return nil
}

func (f *regFile) Write(reg, value byte) error {
	f.ops = append(f.ops, op{write: true, reg: reg, value: value})
	if f.fail() {
		return &BusError{Op: "write", Reg: reg, Err: errInjected}
	}
	f.regs[reg] = value
	return nil
}

// writes returns the recorded writes.
func (f *regFile) writes() []op {
	var w []op
	for _, o := range f.ops {
		if o.write {
			w = append(w, o)
		}
	}
	return w
}

func mustDev(m Model) (*Dev, *regFile) {
	f := newRegFile(m)
	d, err := New(f)
	if err != nil {
		panic(err)
	}
	return d, f
}

// addrOf returns the address of r on m.
func addrOf(m Model, r Register) byte {
	v, err := m.variant()
	if err != nil {
		panic(err)
	}
	a, ok := v.regs[r]
	if !ok {
		panic(fmt.Sprintf("%s has no %s", m, r))
	}
	return a
}

var models = []Model{LPS22HB, LPS25HB}
