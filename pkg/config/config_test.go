package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScanOptions)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(o *ScanOptions) {},
		},
		{
			name:    "min len below two",
			mutate:  func(o *ScanOptions) { o.MinLen = 1 },
			wantErr: ErrMinLenTooSmall,
		},
		{
			name:    "zero min len",
			mutate:  func(o *ScanOptions) { o.MinLen = 0 },
			wantErr: ErrMinLenTooSmall,
		},
		{
			name: "no encodings",
			mutate: func(o *ScanOptions) {
				o.ASCII, o.UTF16LE, o.UTF16BE = false, false, false
			},
			wantErr: ErrNoEncodingsSelected,
		},
		{
			name:    "zero cap",
			mutate:  func(o *ScanOptions) { o.CapRunBytes = 0 },
			wantErr: ErrInvalidCap,
		},
		{
			name:    "negative threads",
			mutate:  func(o *ScanOptions) { o.Threads = -1 },
			wantErr: ErrInvalidThreads,
		},
		{
			name:   "auto threads",
			mutate: func(o *ScanOptions) { o.Threads = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultScanOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestApplyEncodings(t *testing.T) {
	tests := []struct {
		name     string
		list     []string
		ascii    bool
		utf16le  bool
		utf16be  bool
		wantErr  bool
	}{
		{name: "ascii only", list: []string{"ascii"}, ascii: true},
		{name: "utf16le only", list: []string{"utf16le"}, utf16le: true},
		{name: "utf16be only", list: []string{"utf16be"}, utf16be: true},
		{name: "pair", list: []string{"ascii", "utf16le"}, ascii: true, utf16le: true},
		{name: "all", list: []string{"all"}, ascii: true, utf16le: true, utf16be: true},
		{name: "case insensitive", list: []string{"ASCII", "Utf16LE"}, ascii: true, utf16le: true},
		{name: "whitespace tolerated", list: []string{" ascii ", ""}, ascii: true},
		{name: "unknown", list: []string{"ebcdic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultScanOptions()
			err := opts.ApplyEncodings(tt.list)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEncoding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ascii, opts.ASCII)
			assert.Equal(t, tt.utf16le, opts.UTF16LE)
			assert.Equal(t, tt.utf16be, opts.UTF16BE)
		})
	}
}

func TestParseThreads(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "auto", value: "auto", want: 0},
		{name: "auto uppercase", value: "AUTO", want: 0},
		{name: "zero means auto", value: "0", want: 0},
		{name: "explicit count", value: "8", want: 8},
		{name: "one", value: "1", want: 1},
		{name: "negative", value: "-2", wantErr: true},
		{name: "garbage", value: "many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThreads(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidThreads)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
