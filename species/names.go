package species

import "github.com/pthm-cable/critters/traits"

var (
	namePrefixes = []string{"Verda", "Flora", "Mixo", "Omni", "Sarco", "Carna"}
	nameRoots    = []string{"mic", "pip", "lop", "dor", "gran", "mag", "tit"}
	nameSuffixes = []string{"us", "ix", "ara", "odon", "ops", "ella"}
)

// GenerateName derives a name from diet (prefix), size (root) and speed
// (suffix). Identical trait vectors always get identical names.
func GenerateName(t traits.Traits) string {
	return pick(namePrefixes, t.DietPreference) +
		pick(nameRoots, t.Size) +
		pick(nameSuffixes, t.Speed)
}

func pick(table []string, v float64) string {
	i := int(v * float64(len(table)))
	if i < 0 {
		i = 0
	}
	if i >= len(table) {
		i = len(table) - 1
	}
	return table[i]
}
