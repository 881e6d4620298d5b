package ftfz

// decision is the capture filter's verdict over one field set.
type decision struct {
	category    string
	captured    bool // the capture flag was present and true
	hasCategory bool
}

// evaluate scans a field set for the reserved capture and category keys.
// The capture flag counts only when true: an explicit false is the same as
// an absent flag, so it never blocks inheritance from a captured enclosing
// span. All other fields are ignored here; they still flow into record
// arguments when the entity is captured. No interning happens during
// evaluation.
func evaluate(fields []Field) decision {
	var d decision
	for _, f := range fields {
		switch {
		case f.Key == CaptureKey && f.kind == kindBool && f.b:
			d.captured = true
		case f.Key == CategoryKey && f.kind == kindString:
			d.hasCategory = true
			d.category = f.str
		}
	}
	return d
}
