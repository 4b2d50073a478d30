package device

import "slices"

// Device is one physical or logical input device's current state: one record
// sequence per component kind, any of which may be empty. Whoever constructs
// a Device owns its backing storage; Merge never retains references to it.
type Device struct {
	AnalogSets  []Analogs
	ButtonSets  []Buttons
	Controllers []Controller
	Motions     []Motion
	TouchPads   []TouchPad
}

// kindOps dispatches over component kinds through a fixed lookup table so
// that adding a kind fails to compile until every table entry exists.
type kindOps struct {
	// singular kinds allow at most one record per device
	singular bool
	length   func(*Device) int
	clone    func(dst, src *Device)
}

var kindTable = [kindCount]kindOps{
	KindAnalogs: {
		length: func(d *Device) int { return len(d.AnalogSets) },
		clone:  func(dst, src *Device) { dst.AnalogSets = slices.Clone(src.AnalogSets) },
	},
	KindButtons: {
		length: func(d *Device) int { return len(d.ButtonSets) },
		clone:  func(dst, src *Device) { dst.ButtonSets = slices.Clone(src.ButtonSets) },
	},
	KindController: {
		singular: true,
		length:   func(d *Device) int { return len(d.Controllers) },
		clone:    func(dst, src *Device) { dst.Controllers = slices.Clone(src.Controllers) },
	},
	KindMotion: {
		singular: true,
		length:   func(d *Device) int { return len(d.Motions) },
		clone:    func(dst, src *Device) { dst.Motions = slices.Clone(src.Motions) },
	},
	KindTouchPad: {
		length: func(d *Device) int { return len(d.TouchPads) },
		clone:  func(dst, src *Device) { dst.TouchPads = slices.Clone(src.TouchPads) },
	},
}

// Len reports how many records the device holds for a kind. Absent data is
// length zero, never an error.
func (d *Device) Len(k Kind) int {
	if int(k) >= kindCount {
		return 0
	}
	return kindTable[k].length(d)
}

// Clone returns a deep copy sharing no storage with d.
func (d *Device) Clone() *Device {
	out := &Device{}
	d.CopyInto(out)
	return out
}

// CopyInto replaces every component sequence of dst with a deep copy of d's.
func (d *Device) CopyInto(dst *Device) {
	for _, k := range Kinds {
		kindTable[k].clone(dst, d)
	}
}

// Filter returns a copy holding only the kinds selected by mask.
func (d *Device) Filter(mask Mask) *Device {
	out := &Device{}
	for _, k := range Kinds {
		if mask.Has(k) {
			kindTable[k].clone(out, d)
		}
	}
	return out
}

// DeviceInfo describes a device's shape: its name, optional stable identity
// and the capability info of every component it reports.
type DeviceInfo struct {
	Name string `json:"name"`
	// ID is a stable identifier; devices with an ID can have their
	// configuration autoloaded without user interaction.
	ID             string `json:"id,omitempty"`
	AutoloadConfig bool   `json:"autoloadConfig,omitempty"`

	AnalogSets  []AnalogsInfo    `json:"analogSets,omitempty"`
	ButtonSets  []ButtonsInfo    `json:"buttonSets,omitempty"`
	Controllers []ControllerInfo `json:"controllers,omitempty"`
	Motions     []MotionInfo     `json:"motions,omitempty"`
	TouchPads   []TouchPadInfo   `json:"touchPads,omitempty"`
}

func NewDeviceInfo(name string) *DeviceInfo {
	return &DeviceInfo{Name: name}
}

func (i *DeviceInfo) WithID(id string) *DeviceInfo {
	i.ID = id
	return i
}

func (i *DeviceInfo) WithAutoloadConfig(autoload bool) *DeviceInfo {
	i.AutoloadConfig = autoload
	return i
}

// AddController appends a controller component and returns its index.
func (i *DeviceInfo) AddController(info ControllerInfo) int {
	i.Controllers = append(i.Controllers, info)
	return len(i.Controllers) - 1
}

func (i *DeviceInfo) AddMotion(info MotionInfo) int {
	i.Motions = append(i.Motions, info)
	return len(i.Motions) - 1
}

func (i *DeviceInfo) AddAnalogs(info AnalogsInfo) int {
	i.AnalogSets = append(i.AnalogSets, info)
	return len(i.AnalogSets) - 1
}

func (i *DeviceInfo) AddButtons(info ButtonsInfo) int {
	i.ButtonSets = append(i.ButtonSets, info)
	return len(i.ButtonSets) - 1
}

func (i *DeviceInfo) AddTouchPad(info TouchPadInfo) int {
	i.TouchPads = append(i.TouchPads, info)
	return len(i.TouchPads) - 1
}

// Len reports how many components of a kind the info declares.
func (i *DeviceInfo) Len(k Kind) int {
	switch k {
	case KindAnalogs:
		return len(i.AnalogSets)
	case KindButtons:
		return len(i.ButtonSets)
	case KindController:
		return len(i.Controllers)
	case KindMotion:
		return len(i.Motions)
	case KindTouchPad:
		return len(i.TouchPads)
	}
	return 0
}

// NewDevice materialises a device with one default-valued record per
// declared component.
func (i *DeviceInfo) NewDevice() *Device {
	d := &Device{}
	if n := len(i.Controllers); n > 0 {
		d.Controllers = make([]Controller, n)
		for j := range d.Controllers {
			d.Controllers[j] = DefaultController()
		}
	}
	if n := len(i.Motions); n > 0 {
		d.Motions = make([]Motion, n)
	}
	if n := len(i.AnalogSets); n > 0 {
		d.AnalogSets = make([]Analogs, n)
	}
	if n := len(i.ButtonSets); n > 0 {
		d.ButtonSets = make([]Buttons, n)
	}
	if n := len(i.TouchPads); n > 0 {
		d.TouchPads = make([]TouchPad, n)
	}
	return d
}

// Config holds per-component transformations applied between a device's raw
// and cooked state. Only controller and analog components carry
// configuration; the remaining kinds pass through untouched.
type Config struct {
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	AnalogSets  []AnalogsConfig    `json:"analogSets,omitempty"`
}

// Apply transforms d in place. Components without a matching config entry
// are left as-is.
func (c *Config) Apply(d *Device) {
	for i := range d.Controllers {
		if i >= len(c.Controllers) {
			break
		}
		c.Controllers[i].apply(&d.Controllers[i])
	}
	for i := range d.AnalogSets {
		if i >= len(c.AnalogSets) {
			break
		}
		c.AnalogSets[i].apply(&d.AnalogSets[i])
	}
}
