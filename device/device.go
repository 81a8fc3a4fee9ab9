package device

// String descriptor indices, as referenced by the device descriptor.
const (
	StringIndexLanguage     = 0
	StringIndexManufacturer = 1
	StringIndexProduct      = 2
	StringIndexSerial       = 3
)

// configTotalLength is the combined length of the configuration,
// interface, and bulk endpoint descriptors.
const configTotalLength = ConfigurationDescriptorSize + InterfaceDescriptorSize + EndpointDescriptorSize

// Device holds the static identity of the ui_to_usb peripheral: its
// descriptor tables, identification strings, and firmware version.
//
// The USB runtime queries descriptors through the *Bytes methods during
// enumeration; everything here is fixed at construction and safe to read
// from any context.
type Device struct {
	version string
	serial  string
	desc    DeviceDescriptor
}

// NewDevice creates the device identity.
//
// version is the firmware build tag (typically the output of git describe;
// "?" when unavailable). uid is the hardware unique ID rendered into the
// serial number string.
func NewDevice(version string, uid []byte) *Device {
	if version == "" {
		version = "?"
	}
	return &Device{
		version: version,
		serial:  FormatSerial(uid),
		desc: DeviceDescriptor{
			Length:         DeviceDescriptorSize,
			DescriptorType: DescriptorTypeDevice,
			USBVersion:     0x0200,
			// Vendor-specific class: no generic host driver binds.
			DeviceClass:       ClassVendor,
			DeviceSubClass:    0x00,
			DeviceProtocol:    0x00,
			MaxPacketSize0:    BulkMaxPacketSize,
			VendorID:          VendorID,
			ProductID:         ProductID,
			DeviceVersion:     0x0100,
			ManufacturerIndex: StringIndexManufacturer,
			ProductIndex:      StringIndexProduct,
			SerialNumberIndex: StringIndexSerial,
			NumConfigurations: 1,
		},
	}
}

// Version returns the firmware version bytes (ASCII, no terminator).
func (d *Device) Version() []byte {
	return []byte(d.version)
}

// Serial returns the serial number string.
func (d *Device) Serial() string {
	return d.serial
}

// Descriptor returns the device descriptor.
func (d *Device) Descriptor() *DeviceDescriptor {
	return &d.desc
}

// DeviceDescriptorBytes writes the device descriptor to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (d *Device) DeviceDescriptorBytes(buf []byte) int {
	return d.desc.MarshalTo(buf)
}

// ConfigurationBytes writes the full configuration descriptor to buf:
// the configuration itself, the single vendor interface, and the bulk OUT
// endpoint carrying framebuffer data.
// Returns the number of bytes written, or 0 if buf is too small.
func (d *Device) ConfigurationBytes(buf []byte) int {
	if len(buf) < configTotalLength {
		return 0
	}

	cfg := ConfigurationDescriptor{
		TotalLength:        configTotalLength,
		NumInterfaces:      1,
		ConfigurationValue: 1,
		Attributes:         ConfigAttrBusPowered,
		MaxPower:           250, // 500mA
	}
	offset := cfg.MarshalTo(buf)

	iface := InterfaceDescriptor{
		InterfaceNumber: 0,
		NumEndpoints:    1,
		InterfaceClass:  ClassVendor,
	}
	offset += iface.MarshalTo(buf[offset:])

	ep := EndpointDescriptor{
		EndpointAddress: BulkOutEndpoint,
		Attributes:      EndpointTypeBulk,
		MaxPacketSize:   BulkMaxPacketSize,
	}
	offset += ep.MarshalTo(buf[offset:])

	return offset
}

// StringDescriptorBytes writes the string descriptor for index to buf.
// Returns the number of bytes written, or 0 for an unknown index or a
// too-small buffer. Unknown indices are left to the runtime to stall.
func (d *Device) StringDescriptorBytes(buf []byte, index uint8) int {
	switch index {
	case StringIndexLanguage:
		return LanguageDescriptorTo(buf, LangIDUSEnglish)
	case StringIndexManufacturer:
		return StringDescriptorTo(buf, ManufacturerString)
	case StringIndexProduct:
		return StringDescriptorTo(buf, ProductString)
	case StringIndexSerial:
		return StringDescriptorTo(buf, d.serial)
	default:
		return 0
	}
}
