package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
)

func TestParseArchivePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected backends.Path
		wantErr  bool
	}{
		{name: "empty", input: "", expected: backends.EmptyPath()},
		{name: "text", input: "/save.bin", expected: backends.StringPath("/save.bin")},
		{name: "binary", input: "hex:0102ff", expected: backends.BinaryPath([]byte{1, 2, 0xff})},
		{name: "extra data", input: "ext:sdmc:0:1234", expected: hostdir.ExtSaveDataPath(backends.MediaSDMC, 0, 0x1234)},
		{name: "system save", input: "sys:0:0x00010026", expected: hostdir.SystemSaveDataPath(0, 0x00010026)},
		{name: "bad hex", input: "hex:zz", wantErr: true},
		{name: "short extra data", input: "ext:sdmc:1", wantErr: true},
		{name: "bad media", input: "ext:tape:0:1", wantErr: true},
		{name: "bad id", input: "sys:0:xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArchivePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
