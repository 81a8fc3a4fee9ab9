package device

import (
	"testing"
)

func TestParseSetupPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    SetupPacket
		wantErr bool
	}{
		{
			name: "vendor IN version request",
			data: []byte{0xC0, 0x11, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00},
			want: SetupPacket{
				RequestType: 0xC0,
				Request:     RequestVersion,
				Value:       0,
				Index:       0,
				Length:      64,
			},
		},
		{
			name: "vendor OUT LED request",
			data: []byte{0x40, 0x21, 0x73, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: SetupPacket{
				RequestType: 0x40,
				Request:     RequestSetLEDs,
				Value:       0x0073,
				Index:       0,
				Length:      0,
			},
		},
		{
			name:    "too short",
			data:    []byte{0xC0, 0x11, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SetupPacket
			err := ParseSetupPacket(tt.data, &got)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSetupPacket() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseSetupPacket() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetupPacketMarshalTo(t *testing.T) {
	var pkt SetupPacket
	VendorInSetup(&pkt, RequestButtonsEncoder, 0, InputReportSize)

	var buf [SetupPacketSize]byte
	n := pkt.MarshalTo(buf[:])
	if n != SetupPacketSize {
		t.Errorf("MarshalTo() length = %d, want %d", n, SetupPacketSize)
	}

	var parsed SetupPacket
	if err := ParseSetupPacket(buf[:], &parsed); err != nil {
		t.Fatalf("ParseSetupPacket() error = %v", err)
	}
	if parsed != pkt {
		t.Errorf("round-trip failed: got %+v, want %+v", parsed, pkt)
	}
}

func TestVendorSetupBuilders(t *testing.T) {
	var in SetupPacket
	VendorInSetup(&in, RequestVersion, 0, 64)
	if in.RequestType != RequestTypeVendorIn {
		t.Errorf("IN RequestType = 0x%02X, want 0x%02X", in.RequestType, RequestTypeVendorIn)
	}
	if !in.IsVendor() || !in.IsDeviceToHost() {
		t.Error("IN setup must be vendor, device-to-host")
	}

	var out SetupPacket
	VendorOutSetup(&out, RequestSetBrightness, 12)
	if out.RequestType != RequestTypeVendorOut {
		t.Errorf("OUT RequestType = 0x%02X, want 0x%02X", out.RequestType, RequestTypeVendorOut)
	}
	if !out.IsVendor() || !out.IsHostToDevice() {
		t.Error("OUT setup must be vendor, host-to-device")
	}
	if out.HasDataStage() {
		t.Error("OUT command setup carries no data stage")
	}
}

func TestSetupPacketString(t *testing.T) {
	var pkt SetupPacket
	VendorOutSetup(&pkt, RequestSetLEDs, 0x0011)
	got := pkt.String()
	want := "SETUP[OUT Vendor] Request=0x21 Value=0x0011 Index=0x0000 Length=0"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
