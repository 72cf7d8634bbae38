package inout

// Metadata carries the descriptive identity shared by every input and
// output declaration.
type Metadata struct {
	Identifier string   `json:"identifier"`
	Title      string   `json:"title,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Description is the read-only projection of a declaration consumed by
// the protocol layer when serializing responses.
type Description struct {
	Identifier       string        `json:"identifier"`
	Title            string        `json:"title,omitempty"`
	Abstract         string        `json:"abstract,omitempty"`
	Keywords         []string      `json:"keywords,omitempty"`
	Type             string        `json:"type"`
	DataType         LiteralType   `json:"data_type,omitempty"`
	Allowed          AllowedValues `json:"allowed_values,omitzero"`
	UOMs             []string      `json:"uoms,omitempty"`
	UOM              string        `json:"uom,omitempty"`
	Format           *Format       `json:"data_format,omitempty"`
	SupportedFormats []Format      `json:"supported_formats,omitempty"`
	File             string        `json:"file,omitempty"`
	Workdir          string        `json:"workdir,omitempty"`
	Mode             Mode          `json:"mode"`
}

// LiteralInput is a declared scalar input.
type LiteralInput struct {
	Metadata
	*LiteralHandle
}

func NewLiteralInput(meta Metadata, typ LiteralType, allowed AllowedValues, uoms []string, workdir string, mode Mode) *LiteralInput {
	return &LiteralInput{
		Metadata:      meta,
		LiteralHandle: NewLiteralHandle(workdir, typ, allowed, uoms, mode),
	}
}

func (l *LiteralInput) Describe() Description {
	return Description{
		Identifier: l.Identifier,
		Title:      l.Title,
		Abstract:   l.Abstract,
		Keywords:   l.Keywords,
		Type:       "literal",
		DataType:   l.DataType(),
		Allowed:    l.Allowed(),
		UOMs:       l.UOMs(),
		UOM:        l.UOM(),
		Workdir:    l.Workdir(),
		Mode:       l.Mode(),
	}
}

// LiteralOutput is a produced scalar value; output values accept
// anything convertible.
type LiteralOutput struct {
	Metadata
	*LiteralHandle
}

func NewLiteralOutput(meta Metadata, typ LiteralType, uoms []string, workdir string) *LiteralOutput {
	return &LiteralOutput{
		Metadata:      meta,
		LiteralHandle: NewLiteralHandle(workdir, typ, AnyValue(), uoms, ModeNone),
	}
}

// ComplexInput is a declared file-shaped input.
type ComplexInput struct {
	Metadata
	*ComplexHandle
}

func NewComplexInput(meta Metadata, supported []Format, workdir string, mode Mode) (*ComplexInput, error) {
	ch, err := NewComplexHandle(workdir, supported, mode)
	if err != nil {
		return nil, err
	}
	return &ComplexInput{Metadata: meta, ComplexHandle: ch}, nil
}

func (c *ComplexInput) Describe() Description {
	return describeComplex(c.Metadata, c.ComplexHandle)
}

// ComplexOutput is a produced file-shaped value; it is what storage
// backends deliver.
type ComplexOutput struct {
	Metadata
	*ComplexHandle
}

func NewComplexOutput(meta Metadata, supported []Format, workdir string) (*ComplexOutput, error) {
	ch, err := NewComplexHandle(workdir, supported, ModeNone)
	if err != nil {
		return nil, err
	}
	return &ComplexOutput{Metadata: meta, ComplexHandle: ch}, nil
}

func (c *ComplexOutput) Describe() Description {
	return describeComplex(c.Metadata, c.ComplexHandle)
}

func describeComplex(meta Metadata, ch *ComplexHandle) Description {
	d := Description{
		Identifier:       meta.Identifier,
		Title:            meta.Title,
		Abstract:         meta.Abstract,
		Keywords:         meta.Keywords,
		Type:             "complex",
		Format:           ch.Format(),
		SupportedFormats: ch.SupportedFormats(),
		Workdir:          ch.Workdir(),
		Mode:             ch.Mode(),
	}
	// only report a file once one exists; never materialize here
	if ch.Kind() == KindFile {
		if f, err := ch.File(); err == nil {
			d.File = f
		}
	}
	return d
}

// BoundingBox is a spatial extent with a CRS chosen from a declared
// list; the first declared CRS is the default.
type BoundingBox struct {
	crss       []string
	crs        string
	dimensions int
	Lower      []float64 `json:"ll"`
	Upper      []float64 `json:"ur"`
}

func NewBoundingBox(crss []string, dimensions int) BoundingBox {
	if len(crss) == 0 {
		crss = []string{"epsg:4326"}
	}
	if dimensions == 0 {
		dimensions = 2
	}
	return BoundingBox{crss: crss, crs: crss[0], dimensions: dimensions}
}

func (b *BoundingBox) CRS() string       { return b.crs }
func (b *BoundingBox) CRSList() []string { return b.crss }
func (b *BoundingBox) Dimensions() int   { return b.dimensions }

// SetCRS selects a CRS from the declared list.
func (b *BoundingBox) SetCRS(crs string) error {
	for _, c := range b.crss {
		if c == crs {
			b.crs = crs
			return nil
		}
	}
	return InvalidInputError("crs %q is not among declared reference systems", crs)
}

// SetCorners sets the lower and upper corners; both must match the
// declared dimensionality.
func (b *BoundingBox) SetCorners(lower, upper []float64) error {
	if len(lower) != b.dimensions || len(upper) != b.dimensions {
		return InvalidInputError("bounding box corners must have %d dimensions", b.dimensions)
	}
	b.Lower = lower
	b.Upper = upper
	return nil
}

// BoundingBoxInput is a declared spatial-extent input.
type BoundingBoxInput struct {
	Metadata
	BoundingBox
	*Handle
}

func NewBoundingBoxInput(meta Metadata, crss []string, dimensions int, workdir string, mode Mode) *BoundingBoxInput {
	return &BoundingBoxInput{
		Metadata:    meta,
		BoundingBox: NewBoundingBox(crss, dimensions),
		Handle:      NewHandle(workdir, mode),
	}
}

// BoundingBoxOutput is a produced spatial extent.
type BoundingBoxOutput struct {
	Metadata
	BoundingBox
	*Handle
}

func NewBoundingBoxOutput(meta Metadata, crss []string, dimensions int, workdir string) *BoundingBoxOutput {
	return &BoundingBoxOutput{
		Metadata:    meta,
		BoundingBox: NewBoundingBox(crss, dimensions),
		Handle:      NewHandle(workdir, ModeNone),
	}
}
