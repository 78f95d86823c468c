package amd

import (
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestConditions(t *testing.T) {
	c := NewConditions(3)
	c.SetScalar(CondAltitude, []float64{0, 10, 20})
	c.SetColumn(CondVelocity, 3, 2, []float64{1, 2, 3})
	if !c.Has(CondVelocity) || c.Has(CondMach) {
		t.Fatal("unexpected conditions")
	}
	if v := c.Column(CondVelocity, 0); !floats.Equal(v, []float64{0, 0, 0}) {
		t.Fatalf("unset column is %v", v)
	}
	if v := c.Column(CondMach, 0); !floats.Equal(v, []float64{0, 0, 0}) {
		t.Fatalf("missing condition is %v", v)
	}
	// Scalar returns a copy.
	alt := c.Scalar(CondAltitude)
	alt[0] = 42
	if c.Scalar(CondAltitude)[0] != 0 {
		t.Fatal("Scalar leaked the underlying storage")
	}
	clone := c.Clone()
	c.SetScalar(CondAltitude, []float64{5, 5, 5})
	if clone.Scalar(CondAltitude)[0] != 0 {
		t.Fatal("the clone shares its storage")
	}
	if names := c.Names(); len(names) != 2 || names[0] != CondVelocity {
		t.Fatalf("unexpected names %v", names)
	}
	if row := c.Row(1); row[CondVelocity][2] != 2 || row[CondAltitude][0] != 5 {
		t.Fatalf("unexpected row %v", row)
	}

	assertPanic(t, func() {
		c.SetScalar(CondMach, []float64{1, 2})
	})
	assertPanic(t, func() {
		c.Set(CondMach, mat.NewDense(4, 1, nil))
	})
	assertPanic(t, func() {
		// Velocity has three columns.
		c.Ensure(CondVelocity, 1)
	})
	assertPanic(t, func() {
		NewConditions(0)
	})
}

func TestVariables(t *testing.T) {
	v := NewVariables(2)
	v.Declare("throttle", 1.5, 0, 1)
	v.Declare("angle", -0.1, -1, 1)
	if got, _ := v.Get("throttle"); !floats.Equal(got, []float64{1, 1}) {
		t.Fatalf("the initial value was not clipped: %v", got)
	}
	if v.Len() != 4 {
		t.Fatalf("length %d", v.Len())
	}
	x := []float64{0.1, 0.2, 0.3, 0.4}
	v.Unpack(x)
	if !floats.Equal(v.Pack(), x) {
		t.Fatalf("pack/unpack: %v", v.Pack())
	}
	if angle, _ := v.Get("angle"); !floats.Equal(angle, []float64{0.3, 0.4}) {
		t.Fatalf("variables are not packed one after the other: %v", angle)
	}
	lo, hi := v.Bounds()
	if !floats.Equal(lo, []float64{0, 0, -1, -1}) || !floats.Equal(hi, []float64{1, 1, 1, 1}) {
		t.Fatalf("bounds %v %v", lo, hi)
	}
	if name, node := v.Locate(3); name != "angle" || node != 1 {
		t.Fatalf("index 3 is %s[%d]", name, node)
	}
	snap := v.Snapshot()
	v.Set("angle", []float64{0, 0})
	if snap["angle"][0] != 0.3 {
		t.Fatal("the snapshot shares its storage")
	}
	if names := v.Names(); names[0] != "throttle" || names[1] != "angle" {
		t.Fatalf("declaration order lost: %v", names)
	}

	assertPanic(t, func() {
		v.Declare("angle", 0, -1, 1)
	})
	assertPanic(t, func() {
		v.Set("nope", []float64{0, 0})
	})
	assertPanic(t, func() {
		v.Set("angle", []float64{0})
	})
	assertPanic(t, func() {
		v.Unpack([]float64{1, 2, 3})
	})
}

func TestStateTimes(t *testing.T) {
	st := NewState(NewOperators(Uniform, 5))
	st.Initial = Seed{Time: 100}
	st.Duration = 40
	if got := st.Times(); !floats.Equal(got, []float64{100, 110, 120, 130, 140}) {
		t.Fatalf("times %v", got)
	}
	st.Conditions.SetScalar(CondTime, st.Times())
	st.Conditions.SetScalar(CondMass, []float64{10, 9, 8, 7, 6})
	st.Conditions.SetScalar(CondAltitude, filled(5, 300))
	st.Conditions.SetColumn(CondPosition, 3, 0, []float64{0, 1, 2, 3, -4})
	end := st.Terminal()
	if end.Time != 140 || end.Mass != 6 || end.Altitude != 300 || end.Position[0] != -4 {
		t.Fatalf("terminal row %+v", end)
	}
	if d := st.Distance(); d != 4 {
		t.Fatalf("distance %f", d)
	}
}
