package govasc

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// boundsOf returns the axis-aligned box holding at(0) .. at(n-1); n must be positive.
func boundsOf(n int, at func(i int) r3.Vec) r3.Box {
	box := r3.Box{Min: at(0), Max: at(0)}
	for i := 1; i < n; i++ {
		p := at(i)
		box.Min = r3.Vec{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}
	return box
}

func unit(v r3.Vec) r3.Vec {
	L := r3.Norm(v)
	if L == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/L, v)
}
