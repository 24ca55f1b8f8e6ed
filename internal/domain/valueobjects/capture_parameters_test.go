package valueobjects

import "testing"

func TestParseSource(t *testing.T) {
	tests := []struct {
		input   string
		want    Source
		wantErr bool
	}{
		{input: "camera", want: SourceCamera},
		{input: " Gallery ", want: SourceGallery},
		{input: "pick", want: SourceGallery},
		{input: "scanner", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePhotoSize(t *testing.T) {
	size, err := ParsePhotoSize("")
	if err != nil || size != PhotoSizeMedium {
		t.Errorf("empty photo size should default to medium, got %q (%v)", size, err)
	}

	if _, err := ParsePhotoSize("huge"); err == nil {
		t.Errorf("expected error for unknown photo size")
	}

	factors := map[PhotoSize]float64{
		PhotoSizeSmall:  0.25,
		PhotoSizeMedium: 0.5,
		PhotoSizeLarge:  0.75,
		PhotoSizeFull:   1,
	}
	for size, want := range factors {
		if got := size.ScaleFactor(); got != want {
			t.Errorf("%s.ScaleFactor() = %v, want %v", size, got, want)
		}
	}
}

func TestParsePermissionStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    PermissionStatus
		wantErr bool
	}{
		{input: "granted", want: PermissionGranted},
		{input: "DENIED", want: PermissionDenied},
		{input: "", want: PermissionNotDetermined},
		{input: "maybe", want: PermissionNotDetermined, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePermissionStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePermissionStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePermissionStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if !PermissionGranted.IsGranted() || PermissionDenied.IsGranted() {
		t.Errorf("IsGranted should only hold for granted")
	}
}
