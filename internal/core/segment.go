package core

import "fmt"

// buildSegment reads one segment row. It returns nil when the row cannot
// produce a segment at all (no valid media); the row's errors are returned
// either way. ordinal is the 1-based position used for placeholder names.
func buildSegment(sec *Section, row Row, ordinal int) (*Segment, []ValidationError) {
	r := newRowReader(sec, row)
	l := sec.Layout
	s := &Segment{Row: row.Number}

	s.Name, _ = r.required(FieldSegmentName)
	if s.Name == "" && l.Defaults {
		s.Name = fmt.Sprintf("セグメント%d", ordinal)
	}

	if raw, ok := r.required(FieldMedia); ok {
		media, ferr := NormalizeMedia(raw)
		if ferr != nil {
			r.reject(FieldMedia, raw, ferr)
		}
		s.Media = media
	}

	if raw, ok := r.required(FieldRadius); ok {
		if v, ferr := NormalizeRadius(raw); ferr != nil {
			r.reject(FieldRadius, raw, ferr)
		} else {
			s.Radius = v
		}
	}

	if raw, ok := r.required(FieldAttribute); ok {
		if v, ferr := NormalizeAttribute(raw); ferr != nil {
			r.reject(FieldAttribute, raw, ferr)
		} else {
			s.Attribute = v
		}
	} else if l.Defaults {
		s.Attribute = AttributeDetector
	}

	s.AdsAccountID = r.value(FieldAdsAccountID)

	if s.Attribute != "" && s.Attribute != AttributeDetector {
		lockAttribute(s)
	} else {
		readDetectorFields(r, s)
	}

	if len(s.Media) == 0 {
		return nil, r.errs
	}
	return s, r.errs
}

// lockAttribute applies the fixed extraction settings of non-detector
// audiences, whatever the row contained.
func lockAttribute(s *Segment) {
	s.Period = PeriodThreeMonths
	s.DetectionCount = LockedDetectionCount
	s.CustomStart, s.CustomEnd = "", ""
	s.TimeStart, s.TimeEnd = "", ""
	s.StayTime = ""
}

// readDetectorFields reads the columns that only detector audiences may set.
func readDetectorFields(r *rowReader, s *Segment) {
	l := r.sec.Layout

	if raw, ok := r.required(FieldPeriod); ok {
		code, start, end, ferr := NormalizePeriod(raw)
		if ferr != nil {
			r.reject(FieldPeriod, raw, ferr)
		} else {
			s.Period, s.CustomStart, s.CustomEnd = code, start, end
		}
	} else if l.Defaults {
		s.Period = PeriodDefault
	}

	if s.Period == PeriodCustom {
		readCustomPeriod(r, s)
	}

	if raw, ok := r.required(FieldDetectionCount); ok {
		if n, ferr := NormalizeDetectionCount(raw); ferr != nil {
			r.reject(FieldDetectionCount, raw, ferr)
		} else {
			s.DetectionCount = n
		}
	} else if l.Defaults {
		s.DetectionCount = 1
	}

	readTimeWindow(r, s)

	if raw := r.value(FieldStayTime); raw != "" {
		if v, ferr := NormalizeStayTime(raw); ferr != nil {
			r.reject(FieldStayTime, raw, ferr)
		} else {
			s.StayTime = v
		}
	}
}

// readCustomPeriod fills the custom dates from their columns when the period
// cell did not carry a range, then checks presence and order.
func readCustomPeriod(r *rowReader, s *Segment) {
	invalid := false
	for _, d := range []struct {
		field Field
		dst   *string
	}{
		{FieldCustomStart, &s.CustomStart},
		{FieldCustomEnd, &s.CustomEnd},
	} {
		if *d.dst != "" {
			continue
		}
		raw := r.value(d.field)
		if raw == "" {
			continue
		}
		v, ferr := NormalizeDate(raw)
		if ferr != nil {
			r.reject(d.field, raw, ferr)
			invalid = true
			continue
		}
		*d.dst = v
	}

	if !invalid && (s.CustomStart == "" || s.CustomEnd == "") {
		r.fail(FieldPeriod, "", CodeUnpaired, "期間指定の場合は開始日と終了日を入力してください")
		return
	}
	r.checkOrder(FieldCustomStart, FieldCustomEnd, s.CustomStart, s.CustomEnd)
}

// readTimeWindow reads the detection time window, which must be given as a pair.
func readTimeWindow(r *rowReader, s *Segment) {
	rawStart, rawEnd := r.value(FieldTimeStart), r.value(FieldTimeEnd)
	if rawStart == "" && rawEnd == "" {
		return
	}
	if rawStart == "" || rawEnd == "" {
		missing := FieldTimeStart
		if rawEnd == "" {
			missing = FieldTimeEnd
		}
		r.fail(missing, "", CodeUnpaired, "検知時間は開始と終了をセットで指定してください")
		return
	}

	start, ferr := NormalizeTime(rawStart)
	if ferr != nil {
		r.reject(FieldTimeStart, rawStart, ferr)
	}
	end, ferr2 := NormalizeTime(rawEnd)
	if ferr2 != nil {
		r.reject(FieldTimeEnd, rawEnd, ferr2)
	}
	if ferr == nil && ferr2 == nil {
		s.TimeStart, s.TimeEnd = start, end
	}
}
