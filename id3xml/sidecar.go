// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package id3xml

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sa-tools/sacdvfs/sacdsrc"
)

const sidecarVersion = "1.0"

type sidecarDoc struct {
	XMLName xml.Name     `xml:"SacdId3Overlay"`
	Version string       `xml:"version,attr"`
	ISO     string       `xml:"iso,attr"`
	Areas   []sidecarArea `xml:"Area"`
}

type sidecarArea struct {
	Type   string        `xml:"type,attr"`
	Tracks []sidecarTrack `xml:"Track"`
}

type sidecarTrack struct {
	Number int    `xml:"number,attr"`
	ID3    string `xml:"Id3"`
}

func areaTypeName(ct sacdsrc.ChannelType) string {
	if ct == sacdsrc.ChannelTypeMultichannel {
		return "multichannel"
	}
	return "stereo"
}

// SidecarPath returns the sidecar path for the given ISO path: "<iso>.xml".
func SidecarPath(isoPath string) string {
	return isoPath + ".xml"
}

// Save writes the sidecar for isoPath if any entry is valid and (dirty or
// from_xml); otherwise it removes any existing sidecar. On a successful
// write every saved entry becomes dirty=false, from_xml=true. The file is
// written to a temporary path and renamed into place so a crash mid-write
// never leaves a partially-written sidecar behind.
func (c *Cache) Save(isoPath string) error {
	c.mu.Lock()
	doc := sidecarDoc{Version: sidecarVersion, ISO: filepath.Base(isoPath)}
	byArea := map[sacdsrc.ChannelType][]sidecarTrack{}
	var toCommit []areaKey
	anyEntry := false
	for key, e := range c.entries {
		if e.valid && (e.dirty || e.fromXML) {
			anyEntry = true
			byArea[key.ct] = append(byArea[key.ct], sidecarTrack{
				Number: key.track,
				ID3:    base64.StdEncoding.EncodeToString(e.data),
			})
			toCommit = append(toCommit, key)
		}
	}
	c.mu.Unlock()

	path := SidecarPath(isoPath)
	if !anyEntry {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale sidecar %s: %w", path, err)
		}
		return nil
	}

	for _, ct := range []sacdsrc.ChannelType{sacdsrc.ChannelTypeStereo, sacdsrc.ChannelTypeMultichannel} {
		if tracks, ok := byArea[ct]; ok {
			doc.Areas = append(doc.Areas, sidecarArea{Type: areaTypeName(ct), Tracks: tracks})
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	full := append([]byte(xml.Header), out...)
	full = append(full, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, full, 0o644); err != nil {
		return fmt.Errorf("write sidecar temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename sidecar temp file into place: %w", err)
	}

	c.mu.Lock()
	for _, key := range toCommit {
		if e, ok := c.entries[key]; ok {
			e.dirty = false
			e.fromXML = true
		}
	}
	c.mu.Unlock()
	return nil
}

// Load populates the cache from isoPath's sidecar, if it exists and parses.
// Any error reading or parsing the sidecar is tolerated silently: the
// sidecar is treated as absent and the cache is left as it was.
func (c *Cache) Load(isoPath string) {
	data, err := os.ReadFile(SidecarPath(isoPath))
	if err != nil {
		return
	}
	var doc sidecarDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, area := range doc.Areas {
		ct := sacdsrc.ChannelTypeStereo
		if area.Type == "multichannel" {
			ct = sacdsrc.ChannelTypeMultichannel
		}
		for _, tr := range area.Tracks {
			raw, err := base64.StdEncoding.DecodeString(tr.ID3)
			if err != nil {
				continue
			}
			c.entries[areaKey{ct, tr.Number}] = &entry{
				data:    raw,
				valid:   true,
				dirty:   false,
				fromXML: true,
			}
		}
	}
}
