package inout

// DataCategory is the broad shape of complex data, used by the storage
// layer to dispatch database persistence.
type DataCategory int

const (
	CategoryVector DataCategory = iota
	CategoryRaster
	CategoryOther
)

func (c DataCategory) String() string {
	switch c {
	case CategoryVector:
		return "vector"
	case CategoryRaster:
		return "raster"
	case CategoryOther:
		return "other"
	default:
		return "unknown"
	}
}

// ComplexHandle is a DataHandle for file-shaped data with format
// negotiation among a declared set of supported formats.
type ComplexHandle struct {
	Handle
	supported []Format
	format    *Format
	category  DataCategory
}

// NewComplexHandle declares a handle over a non-empty set of supported
// formats; the first entry becomes the current format. Each accepted
// format has its validator resolved from the registry exactly once.
func NewComplexHandle(workdir string, supported []Format, mode Mode) (*ComplexHandle, error) {
	if len(supported) == 0 {
		return nil, InvalidInputError("complex handle requires at least one supported format")
	}
	ch := &ComplexHandle{category: CategoryOther}
	ch.Handle = *NewHandle(workdir, mode)
	ch.supported = make([]Format, len(supported))
	for i, f := range supported {
		if f.validator == nil {
			f.validator = validatorFor(f.MimeType)
		}
		ch.supported[i] = f
	}
	if err := ch.SetFormat(ch.supported[0]); err != nil {
		return nil, err
	}
	ch.SetValidator(ch.validate)
	return ch, nil
}

func (c *ComplexHandle) SupportedFormats() []Format { return c.supported }
func (c *ComplexHandle) Format() *Format            { return c.format }

func (c *ComplexHandle) Category() DataCategory       { return c.category }
func (c *ComplexHandle) SetCategory(cat DataCategory) { c.category = cat }

// SetFormat selects the current format. Membership is judged by the
// mime/encoding/schema triple; a non-member fails before any mutation.
func (c *ComplexHandle) SetFormat(f Format) error {
	for _, s := range c.supported {
		if s.SameAs(f) {
			// keep the validator resolved at configuration time
			chosen := s
			c.format = &chosen
			c.Handle.setFormat(c.format)
			return nil
		}
	}
	return InvalidInputError("requested format %s, %s, %s not supported",
		f.MimeType, f.Encoding, f.Schema)
}

// FormatByMime returns the first supported format with the given mime
// type, or nil.
func (c *ComplexHandle) FormatByMime(mimeType string) *Format {
	for i := range c.supported {
		if c.supported[i].MimeType == mimeType {
			return &c.supported[i]
		}
	}
	return nil
}

func (c *ComplexHandle) validate(h *Handle, mode Mode) bool {
	return c.format.Validator()(h, mode)
}
