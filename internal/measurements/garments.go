package measurements

// Shirt measurements in inches. Zero means not taken.
type Shirt struct {
	Chest        float64 `json:"chest,omitempty" dynamodbav:"chest,omitempty" validate:"gte=0"`
	Waist        float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty" validate:"gte=0"`
	Shoulder     float64 `json:"shoulder,omitempty" dynamodbav:"shoulder,omitempty" validate:"gte=0"`
	Length       float64 `json:"length,omitempty" dynamodbav:"length,omitempty" validate:"gte=0"`
	SleeveLength float64 `json:"sleeveLength,omitempty" dynamodbav:"sleeve_length,omitempty" validate:"gte=0"`
	Armhole      float64 `json:"armhole,omitempty" dynamodbav:"armhole,omitempty" validate:"gte=0"`
	Collar       float64 `json:"collar,omitempty" dynamodbav:"collar,omitempty" validate:"gte=0"`
}

func (s *Shirt) field(name string) *float64 {
	switch name {
	case "chest":
		return &s.Chest
	case "waist":
		return &s.Waist
	case "shoulder":
		return &s.Shoulder
	case "length":
		return &s.Length
	case "sleeveLength":
		return &s.SleeveLength
	case "armhole":
		return &s.Armhole
	case "collar":
		return &s.Collar
	}
	return nil
}

type Pant struct {
	Waist  float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty" validate:"gte=0"`
	Hip    float64 `json:"hip,omitempty" dynamodbav:"hip,omitempty" validate:"gte=0"`
	Length float64 `json:"length,omitempty" dynamodbav:"length,omitempty" validate:"gte=0"`
	Inseam float64 `json:"inseam,omitempty" dynamodbav:"inseam,omitempty" validate:"gte=0"`
	Thigh  float64 `json:"thigh,omitempty" dynamodbav:"thigh,omitempty" validate:"gte=0"`
	Bottom float64 `json:"bottom,omitempty" dynamodbav:"bottom,omitempty" validate:"gte=0"`
}

func (p *Pant) field(name string) *float64 {
	switch name {
	case "waist":
		return &p.Waist
	case "hip":
		return &p.Hip
	case "length":
		return &p.Length
	case "inseam":
		return &p.Inseam
	case "thigh":
		return &p.Thigh
	case "bottom":
		return &p.Bottom
	}
	return nil
}

type Coat struct {
	Chest        float64 `json:"chest,omitempty" dynamodbav:"chest,omitempty" validate:"gte=0"`
	Waist        float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty" validate:"gte=0"`
	Shoulder     float64 `json:"shoulder,omitempty" dynamodbav:"shoulder,omitempty" validate:"gte=0"`
	Length       float64 `json:"length,omitempty" dynamodbav:"length,omitempty" validate:"gte=0"`
	SleeveLength float64 `json:"sleeveLength,omitempty" dynamodbav:"sleeve_length,omitempty" validate:"gte=0"`
}

func (c *Coat) field(name string) *float64 {
	switch name {
	case "chest":
		return &c.Chest
	case "waist":
		return &c.Waist
	case "shoulder":
		return &c.Shoulder
	case "length":
		return &c.Length
	case "sleeveLength":
		return &c.SleeveLength
	}
	return nil
}

type Kurta struct {
	Chest        float64 `json:"chest,omitempty" dynamodbav:"chest,omitempty" validate:"gte=0"`
	Waist        float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty" validate:"gte=0"`
	Shoulder     float64 `json:"shoulder,omitempty" dynamodbav:"shoulder,omitempty" validate:"gte=0"`
	Length       float64 `json:"length,omitempty" dynamodbav:"length,omitempty" validate:"gte=0"`
	SleeveLength float64 `json:"sleeveLength,omitempty" dynamodbav:"sleeve_length,omitempty" validate:"gte=0"`
	Neck         float64 `json:"neck,omitempty" dynamodbav:"neck,omitempty" validate:"gte=0"`
}

func (k *Kurta) field(name string) *float64 {
	switch name {
	case "chest":
		return &k.Chest
	case "waist":
		return &k.Waist
	case "shoulder":
		return &k.Shoulder
	case "length":
		return &k.Length
	case "sleeveLength":
		return &k.SleeveLength
	case "neck":
		return &k.Neck
	}
	return nil
}

type Dhoti struct {
	Waist  float64 `json:"waist,omitempty" dynamodbav:"waist,omitempty" validate:"gte=0"`
	Length float64 `json:"length,omitempty" dynamodbav:"length,omitempty" validate:"gte=0"`
}

func (d *Dhoti) field(name string) *float64 {
	switch name {
	case "waist":
		return &d.Waist
	case "length":
		return &d.Length
	}
	return nil
}
