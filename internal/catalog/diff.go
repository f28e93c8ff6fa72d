package catalog

import (
	"fmt"
	"slices"
)

// Diff describes how other departs from r, one line per difference. Order
// differences are reported because order is part of the schema contract.
func (r *Registry) Diff(other *Registry) []string {
	var out []string

	if !slices.Equal(r.specCategories, other.specCategories) {
		out = append(out, fmt.Sprintf("spec categories: %v != %v", r.specCategories, other.specCategories))
	}
	for _, c := range r.specCategories {
		theirs, ok := other.specFields[c]
		if !ok {
			continue
		}
		ours := r.specFields[c]
		if len(ours) != len(theirs) {
			out = append(out, fmt.Sprintf("%s: %d fields != %d fields", c, len(ours), len(theirs)))
			continue
		}
		for i := range ours {
			a, b := ours[i], theirs[i]
			switch {
			case a.Name != b.Name:
				out = append(out, fmt.Sprintf("%s[%d]: field %s != %s", c, i, a.Name, b.Name))
			case a.Unit != b.Unit:
				out = append(out, fmt.Sprintf("%s.%s: unit %q != %q", c, a.Name, a.Unit, b.Unit))
			case a.Type != b.Type:
				out = append(out, fmt.Sprintf("%s.%s: type %s != %s", c, a.Name, a.Type, b.Type))
			case a.Label != b.Label:
				out = append(out, fmt.Sprintf("%s.%s: label %q != %q", c, a.Name, a.Label, b.Label))
			case !slices.Equal(a.Options, b.Options):
				out = append(out, fmt.Sprintf("%s.%s: options differ", c, a.Name))
			}
		}
	}

	if !slices.Equal(r.featureCategories, other.featureCategories) {
		out = append(out, fmt.Sprintf("feature categories: %v != %v", r.featureCategories, other.featureCategories))
	}
	for _, c := range r.featureCategories {
		theirs, ok := other.featureFlags[c]
		if !ok {
			continue
		}
		if !slices.Equal(r.featureFlags[c], theirs) {
			out = append(out, fmt.Sprintf("%s: flags differ", c))
		}
	}
	return out
}
