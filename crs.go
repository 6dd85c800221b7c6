package bag

// CrsTranslator is the external collaborator responsible for WKT/EPSG and
// legacy-projection-parameter conversion, and for geographic<->projected
// coordinate conversion proper (§1, §2). The Dataset holds a shared handle
// to one, passed in explicitly at construction time rather than consulted
// from process-wide state (DESIGN NOTES §9: "Global-state singletons").
type CrsTranslator interface {
	// ProjectedToGeographic converts a projected (x, y) pair, expressed in
	// the horizontal CRS described by wkt, to geographic (lon, lat).
	ProjectedToGeographic(wkt string, x, y float64) (lon, lat float64, err error)

	// GeographicToProjected is the inverse of ProjectedToGeographic.
	GeographicToProjected(wkt string, lon, lat float64) (x, y float64, err error)

	// IsGeographic reports whether wkt describes a geographic (not
	// projected) horizontal CRS. The SEP resampler (§4.6 step 3) uses this
	// to decide whether to scale the Y term of its distance metric by the
	// dx/dy aspect ratio.
	IsGeographic(wkt string) (bool, error)
}

// NopCrsTranslator is a CrsTranslator that performs no conversion; useful in
// tests and for datasets whose horizontal CRS is already expressed in the
// grid's own projected units.
type NopCrsTranslator struct{}

func (NopCrsTranslator) ProjectedToGeographic(_ string, x, y float64) (float64, float64, error) {
	return x, y, nil
}

func (NopCrsTranslator) GeographicToProjected(_ string, lon, lat float64) (float64, float64, error) {
	return lon, lat, nil
}

func (NopCrsTranslator) IsGeographic(_ string) (bool, error) {
	return false, nil
}
