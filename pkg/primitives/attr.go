package primitives

import "fmt"

// Attr names one attribute of a panel component.
type Attr int

const (
	AttrNumber Attr = iota
	AttrPosition
	// AttrNumberPosition tags rules that govern Number and Position jointly (only Constant does).
	AttrNumberPosition
	AttrUniformity
	AttrType
	AttrSize
	AttrColor
	AttrAngle
)

var attrNames = [...]string{
	AttrNumber:         "Number",
	AttrPosition:       "Position",
	AttrNumberPosition: "Number/Position",
	AttrUniformity:     "Uniformity",
	AttrType:           "Type",
	AttrSize:           "Size",
	AttrColor:          "Color",
	AttrAngle:          "Angle",
}

func (a Attr) String() string {
	if a < 0 || int(a) >= len(attrNames) {
		return fmt.Sprintf("Attr(%d)", int(a))
	}
	return attrNames[a]
}

// ParseAttr is the inverse of Attr.String.
func ParseAttr(s string) (Attr, error) {
	for i, name := range attrNames {
		if name == s {
			return Attr(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}

// IsEntity reports whether the attribute lives on entities rather than on the layout.
func (a Attr) IsEntity() bool {
	switch a {
	case AttrType, AttrSize, AttrColor, AttrAngle:
		return true
	}
	return false
}

// MarshalText lets attributes appear by name in JSON and YAML.
func (a Attr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Attr) UnmarshalText(b []byte) error {
	v, err := ParseAttr(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
