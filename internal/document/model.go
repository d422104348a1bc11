package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inamate/spider/internal/engine"
)

// DefaultBase is the rest pose used when a document does not name one.
const DefaultBase = "stop"

// Document is an authored pose library.
type Document struct {
	Base  string     `yaml:"base,omitempty" json:"base,omitempty"`
	Poses []PoseSpec `yaml:"poses" json:"poses"`
}

// PoseSpec is one named pose. Joint keys are joint names ("ring-middle");
// values are degrees about X, Y and Z.
type PoseSpec struct {
	Name   string                `yaml:"name" json:"name"`
	Joints map[string][3]float32 `yaml:"joints" json:"joints"`
}

// Load decodes a pose document. Unknown fields are rejected.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("pose document is empty")
		}
		return nil, fmt.Errorf("decode pose document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads a pose document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pose document: %w", err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks pose names, joint names and the base pose.
func (d *Document) Validate() error {
	if len(d.Poses) == 0 {
		return errors.New("pose document has no poses")
	}
	seen := make(map[string]bool, len(d.Poses))
	for i, p := range d.Poses {
		if p.Name == "" {
			return fmt.Errorf("pose %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate pose %q", p.Name)
		}
		seen[p.Name] = true
		for name := range p.Joints {
			if _, err := engine.ParseJoint(name); err != nil {
				return fmt.Errorf("pose %q: %w", p.Name, err)
			}
		}
	}
	if !seen[d.base()] {
		return fmt.Errorf("base pose %q: %w", d.base(), engine.ErrUnknownPose)
	}
	return nil
}

func (d *Document) base() string {
	if d.Base == "" {
		return DefaultBase
	}
	return d.Base
}

// EnginePoses converts the document into engine poses, in document order.
func (d *Document) EnginePoses() ([]engine.Pose, error) {
	out := make([]engine.Pose, 0, len(d.Poses))
	for _, p := range d.Poses {
		angles := make(map[engine.Joint]engine.Angles, len(p.Joints))
		for name, v := range p.Joints {
			j, err := engine.ParseJoint(name)
			if err != nil {
				return nil, fmt.Errorf("pose %q: %w", p.Name, err)
			}
			angles[j] = engine.NewAngles(v[0], v[1], v[2])
		}
		out = append(out, engine.NewPose(p.Name, angles))
	}
	return out, nil
}

// Library builds the cyclic pose library.
func (d *Document) Library() (*engine.PoseLibrary, error) {
	poses, err := d.EnginePoses()
	if err != nil {
		return nil, err
	}
	return engine.NewPoseLibrary(d.base(), poses...)
}

// FromLibrary turns a library back into a document, e.g. for dumping.
func FromLibrary(l *engine.PoseLibrary) *Document {
	doc := &Document{Base: l.Stop().Name()}
	for _, name := range l.Names() {
		p, _ := l.Get(name)
		spec := PoseSpec{Name: name, Joints: make(map[string][3]float32, p.Len())}
		for _, j := range p.Joints() {
			a, _ := p.Angles(j)
			spec.Joints[j.String()] = a.Array()
		}
		doc.Poses = append(doc.Poses, spec)
	}
	return doc
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode pose document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode pose document: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
