// Package formats selects morphology readers and writers by explicit tag or by content sniffing.
package formats

import (
	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/h5"
	"github.com/2x3systems/govasc/libvasc/formats/swc"
	"github.com/2x3systems/govasc/libvasc/formats/vmv"
)

// Registry holds the known formats in probe order.
type Registry struct {
	readers []govasc.MorphologyReader
	writers []govasc.MorphologyWriter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default returns a registry of the built-in formats.
// H5 is probed first since its signature check is exact; the text formats fall back to heuristics.
func Default() *Registry {
	reg := NewRegistry()
	reg.Add(h5.Format{}, h5.Format{})
	reg.Add(vmv.Format{}, vmv.Format{})
	reg.Add(swc.Format{}, swc.Format{})
	return reg
}

// Add registers a reader and/or writer; either may be nil.
func (reg *Registry) Add(r govasc.MorphologyReader, w govasc.MorphologyWriter) {
	if r != nil {
		reg.readers = append(reg.readers, r)
	}
	if w != nil {
		reg.writers = append(reg.writers, w)
	}
}
