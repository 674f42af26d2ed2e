// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package forgery

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// knownEditors are software-tag substrings that indicate the image passed
// through an editor rather than straight off a camera or phone sensor.
var knownEditors = []string{
	"photoshop",
	"lightroom",
	"gimp",
	"snapseed",
	"picsart",
	"affinity",
	"pixelmator",
	"paint",
}

// editingSoftware decodes EXIF from the raw encoded bytes and reports the
// software tag when it names a known editor. Images without EXIF (PNG,
// stripped JPEG) simply yield no evidence — absence of metadata is not
// suspicious on its own.
func editingSoftware(rawData []byte) (string, bool) {
	if len(rawData) == 0 {
		return "", false
	}

	meta, err := exif.Decode(bytes.NewReader(rawData))
	if err != nil || meta == nil {
		return "", false
	}

	tag, err := meta.Get(exif.Software)
	if err != nil {
		return "", false
	}
	software, err := tag.StringVal()
	if err != nil || software == "" {
		return "", false
	}

	lower := strings.ToLower(software)
	for _, editor := range knownEditors {
		if strings.Contains(lower, editor) {
			return software, true
		}
	}
	return "", false
}
