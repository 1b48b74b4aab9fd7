package core

// Field names a logical column independent of its position.
type Field string

const (
	FieldAdvertiser  Field = "advertiser_name"
	FieldAgency      Field = "agency_name"
	FieldAppeal      Field = "appeal_point"
	FieldServiceID   Field = "universe_service_id"
	FieldServiceName Field = "universe_service_name"
	FieldStart       Field = "delivery_start_date"
	FieldEnd         Field = "delivery_end_date"
	FieldOwner       Field = "person_in_charge"
	FieldSubOwner    Field = "sub_person_in_charge"
	FieldRemarks     Field = "remarks"

	FieldSegmentName    Field = "segment_name"
	FieldMedia          Field = "media_id"
	FieldRadius         Field = "designated_radius"
	FieldPeriod         Field = "extraction_period"
	FieldCustomStart    Field = "extraction_start_date"
	FieldCustomEnd      Field = "extraction_end_date"
	FieldAttribute      Field = "attribute"
	FieldDetectionCount Field = "detection_count"
	FieldTimeStart      Field = "detection_time_start"
	FieldTimeEnd        Field = "detection_time_end"
	FieldStayTime       Field = "stay_time"
	FieldAdsAccountID   Field = "ads_account_id"

	FieldSegmentRef Field = "segment_name_ref"
	FieldPOIName    Field = "poi_name"
	FieldAddress    Field = "address"
	FieldLatitude   Field = "latitude"
	FieldLongitude  Field = "longitude"
	FieldLocationID Field = "location_id"
	FieldGroupName  Field = "group_name"
)

// fieldLabels are the localized column names shown in error reports.
var fieldLabels = map[Field]string{
	FieldAdvertiser:  "広告主名",
	FieldAgency:      "代理店名",
	FieldAppeal:      "訴求内容",
	FieldServiceID:   "サービスID",
	FieldServiceName: "サービス名",
	FieldStart:       "配信開始日",
	FieldEnd:         "配信終了日",
	FieldOwner:       "担当者",
	FieldSubOwner:    "副担当者",
	FieldRemarks:     "備考",

	FieldSegmentName:    "セグメント名",
	FieldMedia:          "配信先",
	FieldRadius:         "配信範囲",
	FieldPeriod:         "抽出期間",
	FieldCustomStart:    "抽出開始日",
	FieldCustomEnd:      "抽出終了日",
	FieldAttribute:      "対象者",
	FieldDetectionCount: "検知回数",
	FieldTimeStart:      "検知時間開始",
	FieldTimeEnd:        "検知時間終了",
	FieldStayTime:       "滞在時間",
	FieldAdsAccountID:   "広告アカウントID",

	FieldSegmentRef: "セグメント名",
	FieldPOIName:    "地点名",
	FieldAddress:    "住所",
	FieldLatitude:   "緯度",
	FieldLongitude:  "経度",
	FieldLocationID: "地点ID",
	FieldGroupName:  "グループ名",
}

// Label returns the localized column name of f.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Column is one positional column of a layout.
type Column struct {
	Field    Field
	Required bool
}

// Layout is the positional column contract of one section. Columns are
// read left to right; a nil Field entry marks a column that is ignored.
type Layout struct {
	Name    string
	Columns []Column
	// Defaults enables the lenient defaults of the bracket grammar
	// (placeholder segment names, 1month period, detector audience).
	Defaults bool

	index map[Field]int
}

func newLayout(name string, defaults bool, cols ...Column) *Layout {
	l := &Layout{Name: name, Columns: cols, Defaults: defaults, index: make(map[Field]int, len(cols))}
	for i, c := range cols {
		if c.Field != "" {
			l.index[c.Field] = i
		}
	}
	return l
}

// Has reports whether the layout carries f.
func (l *Layout) Has(f Field) bool {
	_, ok := l.index[f]
	return ok
}

// Required reports whether f is a required column of the layout.
func (l *Layout) Required(f Field) bool {
	i, ok := l.index[f]
	return ok && l.Columns[i].Required
}

// Get returns the cleaned cell of f in row, or "" when the layout has no such column.
func (l *Layout) Get(row Row, f Field) string {
	i, ok := l.index[f]
	if !ok {
		return ""
	}
	return row.Cell(i)
}

func req(f Field) Column { return Column{Field: f, Required: true} }
func opt(f Field) Column { return Column{Field: f} }

// Column contracts per grammar.
var (
	// project10Layout is used by the bracket and merged grammars.
	project10Layout = newLayout("project10", false,
		req(FieldAdvertiser), opt(FieldAgency), req(FieldAppeal), opt(FieldServiceID), opt(FieldServiceName),
		req(FieldStart), req(FieldEnd), opt(FieldOwner), opt(FieldSubOwner), opt(FieldRemarks),
	)

	// project6Layout is used by the legacy, combined and split grammars.
	project6Layout = newLayout("project6", false,
		req(FieldAdvertiser), req(FieldAgency), req(FieldAppeal), req(FieldStart), req(FieldEnd), opt(FieldRemarks),
	)

	bracketSegmentLayout = newLayout("bracket_segment", true,
		opt(FieldSegmentName), req(FieldMedia), opt(FieldRadius), opt(FieldPeriod), opt(FieldAttribute),
		opt(FieldDetectionCount), opt(FieldTimeStart), opt(FieldTimeEnd), opt(FieldStayTime), opt(FieldAdsAccountID),
	)

	sheetSegmentColumns = []Column{
		req(FieldSegmentName), req(FieldMedia), req(FieldRadius), req(FieldPeriod), opt(FieldCustomStart),
		opt(FieldCustomEnd), req(FieldAttribute), req(FieldDetectionCount), opt(FieldTimeStart), opt(FieldTimeEnd),
		opt(FieldStayTime),
	}

	// sheetSegmentLayout is the 11-column legacy segment sheet.
	sheetSegmentLayout = newLayout("sheet_segment", false, sheetSegmentColumns...)

	// mergedSegmentLayout adds the ads account id column to the legacy layout.
	mergedSegmentLayout = newLayout("merged_segment", false, append(append([]Column{}, sheetSegmentColumns...), opt(FieldAdsAccountID))...)

	// combinedSegmentLayout reads columns A-K of the combined sheet.
	combinedSegmentLayout = newLayout("combined_segment", false, sheetSegmentColumns...)

	// combinedLocationLayout reads columns A and L-P of the combined sheet.
	combinedLocationLayout = newLayout("combined_location", false,
		req(FieldSegmentRef), opt(""), opt(""), opt(""), opt(""), opt(""), opt(""), opt(""), opt(""), opt(""), opt(""),
		req(FieldPOIName), opt(FieldAddress), opt(FieldLatitude), opt(FieldLongitude), opt(FieldLocationID),
	)

	sheetLocationLayout = newLayout("sheet_location", false,
		req(FieldSegmentRef), req(FieldPOIName), opt(FieldAddress), opt(FieldLatitude), opt(FieldLongitude), opt(FieldLocationID),
	)

	visitLocationLayout = newLayout("visit_location", false,
		req(FieldPOIName), req(FieldGroupName), opt(FieldAddress), opt(FieldLatitude), opt(FieldLongitude),
	)

	bracketLocationLayout = newLayout("bracket_location", false,
		req(FieldPOIName), opt(FieldAddress), opt(FieldLatitude), opt(FieldLongitude),
	)

	// bracketUnkeyedLocationLayout serves the bare [LOCATION] marker, which
	// carries the segment name per row.
	bracketUnkeyedLocationLayout = newLayout("bracket_location_unkeyed", false,
		req(FieldSegmentRef), req(FieldPOIName), opt(FieldAddress), opt(FieldLatitude), opt(FieldLongitude),
	)
)
