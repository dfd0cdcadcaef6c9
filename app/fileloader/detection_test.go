package fileloader

import (
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FileFormat
	}{
		{
			name:  "plain csv is generic",
			input: "x,y\n1,2\n",
			want:  FormatGeneric,
		},
		{
			name:  "DataName line selects tagged-row",
			input: "TestParameter,Channel.Unit,SMU1\nDataName,Vg,Id\nDataValue,0.1,1e-6\n",
			want:  FormatTaggedRow,
		},
		{
			name:  "start-condition marker selects column-table",
			input: "Device,Q42\nAutoAnalysis.Marker.Data.StartCondition,0\nVd,Id\n0.1,1e-6\n",
			want:  FormatColumnTable,
		},
		{
			name:  "DataName wins when both markers appear",
			input: "AutoAnalysis.Marker.Data.StartCondition,0\nDataName,Vg\nDataValue,1\n",
			want:  FormatTaggedRow,
		},
		{
			name:  "markers past the sniff window are ignored",
			input: strings.Repeat("k,v\n", maxSniffLines) + "DataName,Vg\n",
			want:  FormatGeneric,
		},
		{
			name:  "marker on the last sniffed line still counts",
			input: strings.Repeat("k,v\n", maxSniffLines-1) + "DataName,Vg\n",
			want:  FormatTaggedRow,
		},
		{
			name:  "empty input is generic",
			input: "",
			want:  FormatGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(strings.NewReader(tt.input)); got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFileFormat(t *testing.T) {
	tests := []struct {
		hint    string
		want    FileFormat
		wantErr bool
	}{
		{"", FormatUnknown, false},
		{"auto", FormatUnknown, false},
		{"generic", FormatGeneric, false},
		{"csv", FormatGeneric, false},
		{"tagged-row", FormatTaggedRow, false},
		{"TaggedRow", FormatTaggedRow, false},
		{"column-table", FormatColumnTable, false},
		{" columntable ", FormatColumnTable, false},
		{"parquet", FormatUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got, err := ParseFileFormat(tt.hint)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFileFormat(%q) error = %v, wantErr %v", tt.hint, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFileFormat(%q) = %v, want %v", tt.hint, got, tt.want)
			}
		})
	}
}
