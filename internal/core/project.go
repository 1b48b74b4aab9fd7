package core

// DefaultOwner is recorded as person in charge when the sheet has none.
const DefaultOwner = "システム登録"

// buildProject reads one project row. complete is false when a required
// field is missing, in which case the caller reports no project.
func buildProject(sec *Section, row Row, defaultOwner string) (p *Project, complete bool, errs []ValidationError) {
	r := newRowReader(sec, row)
	complete = true

	p = &Project{Row: row.Number}

	var ok bool
	if p.AdvertiserName, ok = r.required(FieldAdvertiser); !ok && sec.Layout.Required(FieldAdvertiser) {
		complete = false
	}
	if p.AgencyName, ok = r.required(FieldAgency); !ok && sec.Layout.Required(FieldAgency) {
		complete = false
	}
	if p.Appeal, ok = r.required(FieldAppeal); !ok && sec.Layout.Required(FieldAppeal) {
		complete = false
	}
	p.ServiceID = r.value(FieldServiceID)
	p.ServiceName = r.value(FieldServiceName)

	for _, d := range []struct {
		field Field
		dst   *string
	}{
		{FieldStart, &p.DeliveryStart},
		{FieldEnd, &p.DeliveryEnd},
	} {
		raw, ok := r.required(d.field)
		if !ok {
			complete = false
			continue
		}
		v, ferr := NormalizeDate(raw)
		if ferr != nil {
			r.reject(d.field, raw, ferr)
			continue
		}
		*d.dst = v
	}
	r.checkOrder(FieldStart, FieldEnd, p.DeliveryStart, p.DeliveryEnd)

	p.Owner = r.value(FieldOwner)
	if p.Owner == "" {
		p.Owner = defaultOwner
	}
	p.SubOwner = r.value(FieldSubOwner)
	p.Remarks = r.value(FieldRemarks)

	return p, complete, r.errs
}
