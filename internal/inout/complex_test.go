package inout

import (
	"errors"
	"strings"
	"testing"
)

func TestComplexHandle_RequiresFormats(t *testing.T) {
	if _, err := NewComplexHandle(t.TempDir(), nil, ModeNone); err == nil {
		t.Fatal("expected error for empty format set")
	}
}

func TestComplexHandle_DefaultFormatIsFirst(t *testing.T) {
	ch, err := NewComplexHandle(t.TempDir(), []Format{FormatGML, FormatGeoJSON}, ModeNone)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if ch.Format().MimeType != FormatGML.MimeType {
		t.Fatalf("expected GML default, got %s", ch.Format().MimeType)
	}
}

func TestComplexHandle_NonMemberFormatRejected(t *testing.T) {
	ch, err := NewComplexHandle(t.TempDir(), []Format{FormatGML}, ModeNone)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	before := ch.Format().MimeType

	err = ch.SetFormat(FormatGeoTIFF)
	if err == nil {
		t.Fatal("expected rejection of non-member format")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	// the message names the rejected triple
	if !strings.Contains(ioErr.Message, FormatGeoTIFF.MimeType) {
		t.Fatalf("message does not name the mime type: %s", ioErr.Message)
	}
	// no mutation happened
	if ch.Format().MimeType != before {
		t.Fatal("current format changed on rejected assignment")
	}
}

func TestComplexHandle_SameFormatRule(t *testing.T) {
	a := Format{MimeType: "application/gml+xml", Encoding: "UTF-8", Extension: ".gml"}
	b := Format{MimeType: "application/gml+xml", Encoding: "UTF-8", Extension: ".xml"}
	c := Format{MimeType: "application/gml+xml", Encoding: "base64"}
	if !a.SameAs(b) {
		t.Fatal("extension must not participate in format identity")
	}
	if a.SameAs(c) {
		t.Fatal("encoding must participate in format identity")
	}
}

func TestComplexHandle_ValidatorResolvedOnce(t *testing.T) {
	const mime = "application/x-resolved-once"
	RegisterValidator(mime, AcceptAll)
	defer func() {
		validatorMu.Lock()
		delete(validatorReg, mime)
		validatorMu.Unlock()
	}()

	ch, err := NewComplexHandle(t.TempDir(), []Format{{MimeType: mime, Extension: ".bin"}}, ModeSimple)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}

	// re-registering after configuration must not affect the handle:
	// the capability was resolved once and cached on the descriptor
	RegisterValidator(mime, func(h *Handle, mode Mode) bool { return false })

	if err := ch.BindData([]byte("a")); err != nil {
		t.Fatalf("cached validator must still accept: %v", err)
	}
}

func TestComplexHandle_RejectingValidator(t *testing.T) {
	const mime = "application/x-reject"
	RegisterValidator(mime, func(h *Handle, mode Mode) bool { return false })
	defer func() {
		validatorMu.Lock()
		delete(validatorReg, mime)
		validatorMu.Unlock()
	}()

	ch, err := NewComplexHandle(t.TempDir(), []Format{{MimeType: mime}}, ModeSimple)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if err := ch.BindData([]byte("x")); err == nil {
		t.Fatal("expected rejection by format validator")
	}
	if ch.Validated() {
		t.Fatal("handle must not be marked validated")
	}
}

func TestComplexHandle_UnregisteredMimeFallsBack(t *testing.T) {
	ch, err := NewComplexHandle(t.TempDir(), []Format{{MimeType: "application/x-unknown"}}, ModeStrict)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if err := ch.BindData([]byte("anything")); err != nil {
		t.Fatalf("fallback validator must accept: %v", err)
	}
}

func TestComplexHandle_MaterializedExtension(t *testing.T) {
	ch, err := NewComplexHandle(t.TempDir(), []Format{FormatGML}, ModeNone)
	if err != nil {
		t.Fatalf("new handle: %v", err)
	}
	if err := ch.BindData([]byte("<gml/>")); err != nil {
		t.Fatalf("bind: %v", err)
	}
	path, err := ch.File()
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if !strings.HasSuffix(path, ".gml") {
		t.Fatalf("expected .gml extension, got %s", path)
	}
}

func TestComplexInput_Describe(t *testing.T) {
	in, err := NewComplexInput(
		Metadata{Identifier: "layer", Title: "Layer", Keywords: []string{"vector"}},
		[]Format{FormatGML, FormatGeoJSON},
		t.TempDir(), ModeSimple,
	)
	if err != nil {
		t.Fatalf("new input: %v", err)
	}
	d := in.Describe()
	if d.Identifier != "layer" || d.Type != "complex" {
		t.Fatalf("unexpected projection %+v", d)
	}
	if len(d.SupportedFormats) != 2 {
		t.Fatalf("expected 2 supported formats, got %d", len(d.SupportedFormats))
	}
	if d.Format == nil || d.Format.MimeType != FormatGML.MimeType {
		t.Fatalf("unexpected current format %+v", d.Format)
	}
}

func TestBoundingBox_CRSMembership(t *testing.T) {
	in := NewBoundingBoxInput(Metadata{Identifier: "extent"},
		[]string{"epsg:4326", "epsg:3857"}, 2, t.TempDir(), ModeNone)
	if in.CRS() != "epsg:4326" {
		t.Fatalf("expected default crs, got %s", in.CRS())
	}
	if err := in.SetCRS("epsg:3857"); err != nil {
		t.Fatalf("declared crs rejected: %v", err)
	}
	if err := in.SetCRS("epsg:9999"); err == nil {
		t.Fatal("undeclared crs accepted")
	}
	if err := in.SetCorners([]float64{0, 0}, []float64{1, 1}); err != nil {
		t.Fatalf("set corners: %v", err)
	}
	if err := in.SetCorners([]float64{0}, []float64{1}); err == nil {
		t.Fatal("dimension mismatch accepted")
	}
}
