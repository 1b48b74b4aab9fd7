package core

import (
	"fmt"
	"unicode/utf8"
)

// buildLocation reads one location row. It returns nil when the row has no
// point name or ends up with neither an address nor both coordinates.
func buildLocation(sec *Section, row Row) (*Location, []ValidationError) {
	r := newRowReader(sec, row)
	loc := &Location{Row: row.Number, Category: sec.Category}
	if loc.Category == "" {
		loc.Category = CategoryTargeting
	}

	name, hasName := r.required(FieldPOIName)
	if hasName && utf8.RuneCountInString(name) > MaxNameLength {
		r.fail(FieldPOIName, name, CodeTooLong, fmt.Sprintf("地点名は%d文字以内で入力してください", MaxNameLength))
	}
	loc.Name = name

	switch loc.Category {
	case CategoryVisitMeasurement:
		loc.GroupName = r.value(FieldGroupName)
	default:
		loc.SegmentName = sec.GroupKey
		if sec.Layout.Has(FieldSegmentRef) {
			loc.SegmentName = r.value(FieldSegmentRef)
		}
	}

	loc.Address = r.value(FieldAddress)
	loc.LocationID = r.value(FieldLocationID)

	rawLat, rawLng := r.value(FieldLatitude), r.value(FieldLongitude)
	switch {
	case (rawLat == "") != (rawLng == ""):
		missing := FieldLatitude
		if rawLng == "" {
			missing = FieldLongitude
		}
		r.fail(missing, "", CodeUnpaired, "緯度と経度は両方入力してください")
	case loc.Address == "" && rawLat == "":
		r.fail(FieldAddress, "", CodeRequired, "住所または緯度経度のどちらかは必須です")
	}

	if rawLat != "" {
		if v, ferr := NormalizeLatitude(rawLat); ferr != nil {
			r.reject(FieldLatitude, rawLat, ferr)
		} else {
			loc.Latitude = &v
		}
	}
	if rawLng != "" {
		if v, ferr := NormalizeLongitude(rawLng); ferr != nil {
			r.reject(FieldLongitude, rawLng, ferr)
		} else {
			loc.Longitude = &v
		}
	}

	if !hasName || (loc.Address == "" && !loc.HasCoordinates()) {
		return nil, r.errs
	}
	return loc, r.errs
}
