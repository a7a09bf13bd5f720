package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ebogdum/archivefs/backends"
	"github.com/ebogdum/archivefs/backends/hostdir"
)

// parseArchivePath converts the --archive-path flag into an archive path.
//
//	""                        empty path
//	hex:<bytes>               binary path
//	ext:<media>:<high>:<low>  extra data path (media is nand or sdmc)
//	sys:<high>:<low>          system save path
//	anything else             text path
func parseArchivePath(s string) (backends.Path, error) {
	switch {
	case s == "":
		return backends.EmptyPath(), nil

	case strings.HasPrefix(s, "hex:"):
		data, err := hex.DecodeString(strings.TrimPrefix(s, "hex:"))
		if err != nil {
			return backends.Path{}, fmt.Errorf("invalid binary path %q: %w", s, err)
		}
		return backends.BinaryPath(data), nil

	case strings.HasPrefix(s, "ext:"):
		parts := strings.Split(strings.TrimPrefix(s, "ext:"), ":")
		if len(parts) != 3 {
			return backends.Path{}, fmt.Errorf("extra data path must be ext:<media>:<high>:<low>, got %q", s)
		}
		media, err := parseMedia(parts[0])
		if err != nil {
			return backends.Path{}, err
		}
		high, low, err := parseIDPair(parts[1], parts[2])
		if err != nil {
			return backends.Path{}, err
		}
		return hostdir.ExtSaveDataPath(media, high, low), nil

	case strings.HasPrefix(s, "sys:"):
		parts := strings.Split(strings.TrimPrefix(s, "sys:"), ":")
		if len(parts) != 2 {
			return backends.Path{}, fmt.Errorf("system save path must be sys:<high>:<low>, got %q", s)
		}
		high, low, err := parseIDPair(parts[0], parts[1])
		if err != nil {
			return backends.Path{}, err
		}
		return hostdir.SystemSaveDataPath(high, low), nil

	default:
		return backends.StringPath(s), nil
	}
}

func parseMedia(s string) (backends.MediaType, error) {
	switch strings.ToLower(s) {
	case "nand":
		return backends.MediaNAND, nil
	case "sdmc", "sd":
		return backends.MediaSDMC, nil
	case "gamecard":
		return backends.MediaGameCard, nil
	default:
		return 0, fmt.Errorf("unknown media type %q", s)
	}
}

// parseIDPair parses the high and low words of a save id. Both are hexadecimal.
func parseIDPair(high, low string) (uint32, uint32, error) {
	h, err := strconv.ParseUint(strings.TrimPrefix(high, "0x"), 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid high id %q: %w", high, err)
	}
	l, err := strconv.ParseUint(strings.TrimPrefix(low, "0x"), 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid low id %q: %w", low, err)
	}
	return uint32(h), uint32(l), nil
}
