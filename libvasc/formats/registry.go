package formats

import (
	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
)

// Reader returns the reader registered under tag.
func (reg *Registry) Reader(tag string) (govasc.MorphologyReader, error) {
	for _, r := range reg.readers {
		if r.Format() == tag {
			return r, nil
		}
	}
	return nil, errors.Wrapf(govasc.ErrUnknownFormat, "no reader for %q", tag)
}

// Writer returns the writer registered under tag.
func (reg *Registry) Writer(tag string) (govasc.MorphologyWriter, error) {
	for _, w := range reg.writers {
		if w.Format() == tag {
			return w, nil
		}
	}
	return nil, errors.Wrapf(govasc.ErrUnknownFormat, "no writer for %q", tag)
}

// Sniff returns the first reader whose Probe accepts pathname.
func (reg *Registry) Sniff(pathname string) (govasc.MorphologyReader, error) {
	for _, r := range reg.readers {
		if r.Probe(pathname) {
			return r, nil
		}
	}
	return nil, errors.Wrapf(govasc.ErrUnknownFormat, "%s", pathname)
}

// Load reads pathname with the reader named by tag, or the sniffed reader when tag is empty.
func (reg *Registry) Load(pathname, tag string) (*govasc.RawGraph, error) {
	var (
		r   govasc.MorphologyReader
		err error
	)
	if tag == "" {
		r, err = reg.Sniff(pathname)
	} else {
		r, err = reg.Reader(tag)
	}
	if err != nil {
		return nil, err
	}
	return r.Load(pathname)
}

// ReaderTags lists the registered reader tags in probe order.
func (reg *Registry) ReaderTags() []string {
	tags := make([]string, len(reg.readers))
	for i, r := range reg.readers {
		tags[i] = r.Format()
	}
	return tags
}

// WriterTags lists the registered writer tags.
func (reg *Registry) WriterTags() []string {
	tags := make([]string, len(reg.writers))
	for i, w := range reg.writers {
		tags[i] = w.Format()
	}
	return tags
}
