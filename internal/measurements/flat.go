package measurements

// Flat is the single-level measurement shape used by the customer creation
// payload, e.g. {"chest": 40, "shirtLength": 29, "pantLength": 40}.
type Flat map[string]float64

type flatKey struct {
	garment Garment
	field   string
	key     string
}

var flatKeys = []flatKey{
	{GarmentShirt, "chest", "chest"},
	{GarmentShirt, "shoulder", "shoulder"},
	{GarmentShirt, "length", "shirtLength"},
	{GarmentShirt, "waist", "shirtWaist"},
	{GarmentShirt, "sleeveLength", "sleeveLength"},
	{GarmentShirt, "armhole", "armhole"},
	{GarmentShirt, "collar", "collar"},
	{GarmentPant, "waist", "waist"},
	{GarmentPant, "length", "pantLength"},
	{GarmentPant, "hip", "hip"},
	{GarmentPant, "inseam", "inseam"},
	{GarmentPant, "thigh", "thigh"},
	{GarmentPant, "bottom", "bottom"},
	{GarmentCoat, "chest", "coatChest"},
	{GarmentCoat, "waist", "coatWaist"},
	{GarmentCoat, "shoulder", "coatShoulder"},
	{GarmentCoat, "length", "coatLength"},
	{GarmentCoat, "sleeveLength", "coatSleeveLength"},
	{GarmentKurta, "chest", "kurtaChest"},
	{GarmentKurta, "waist", "kurtaWaist"},
	{GarmentKurta, "shoulder", "kurtaShoulder"},
	{GarmentKurta, "length", "kurtaLength"},
	{GarmentKurta, "sleeveLength", "kurtaSleeveLength"},
	{GarmentKurta, "neck", "kurtaNeck"},
	{GarmentDhoti, "waist", "dhotiWaist"},
	{GarmentDhoti, "length", "dhotiLength"},
}

// Flatten drops zero values; a garment never measured contributes nothing.
func (s Set) Flatten() Flat {
	out := Flat{}
	for _, k := range flatKeys {
		v, ok, _ := s.Value(k.garment, k.field)
		if ok && v != 0 {
			out[k.key] = v
		}
	}
	return out
}

// Set rebuilds a measurement set. Unknown keys are ignored. A value that
// cannot be stored (a negative one) is left out of the set and reported in
// errs under "garment.field".
func (f Flat) Set() (Set, map[string]string) {
	var s Set
	errs := map[string]string{}
	for _, k := range flatKeys {
		v, ok := f[k.key]
		if !ok {
			continue
		}
		if err := s.SetValue(k.garment, k.field, v); err != nil {
			errs[string(k.garment)+"."+k.field] = "Measurement cannot be negative"
		}
	}
	return s, errs
}
