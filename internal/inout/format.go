package inout

import "sync"

// Format describes the wire shape of complex data. Two formats are the
// same iff mime type, encoding and schema all match; the extension is
// advisory and only used when materializing files.
type Format struct {
	MimeType  string `json:"mime_type"`
	Encoding  string `json:"encoding,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Extension string `json:"extension,omitempty"`

	// resolved once when the format is accepted by a handle
	validator Validator
}

func (f Format) SameAs(other Format) bool {
	return f.MimeType == other.MimeType &&
		f.Encoding == other.Encoding &&
		f.Schema == other.Schema
}

// Validator returns the capability resolved for this format, falling
// back to AcceptAll when none was registered.
func (f Format) Validator() Validator {
	if f.validator == nil {
		return AcceptAll
	}
	return f.validator
}

// Well-known formats, matching the extensions the storage layer picks
// when a source file has none.
var (
	FormatGML     = Format{MimeType: "application/gml+xml", Encoding: "UTF-8", Extension: ".gml"}
	FormatGeoJSON = Format{MimeType: "application/vnd.geo+json", Extension: ".geojson"}
	FormatJSON    = Format{MimeType: "application/json", Extension: ".json"}
	FormatShp     = Format{MimeType: "application/x-zipped-shp", Encoding: "base64", Extension: ".zip"}
	FormatGeoTIFF = Format{MimeType: "image/tiff; subtype=geotiff", Encoding: "base64", Extension: ".tiff"}
	FormatText    = Format{MimeType: "text/plain", Extension: ".txt"}
	FormatNetCDF  = Format{MimeType: "application/x-netcdf", Encoding: "base64", Extension: ".nc"}
)

// The validator registry maps a mime type to the capability used to
// gate data bound under that format. Resolution happens once, when a
// format is accepted by a handle; the result is cached on the
// descriptor and never looked up again per call.
var (
	validatorMu  sync.RWMutex
	validatorReg = map[string]Validator{}
)

// RegisterValidator installs a validator for a mime type, replacing any
// previous registration.
func RegisterValidator(mimeType string, v Validator) {
	validatorMu.Lock()
	defer validatorMu.Unlock()
	validatorReg[mimeType] = v
}

func validatorFor(mimeType string) Validator {
	validatorMu.RLock()
	defer validatorMu.RUnlock()
	if v, ok := validatorReg[mimeType]; ok {
		return v
	}
	return AcceptAll
}
