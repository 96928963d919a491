/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imaging reads natural pixel dimensions from uploaded image bytes
// and converts between raw bytes and the embeddable data-URI payload stored
// with each overlay.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Stdlib decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// Extra formats users commonly drop in.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotDataURI is returned when a stored payload is not a data URI.
var ErrNotDataURI = errors.New("payload is not a data URI")

// Decode returns the natural width and height of the encoded image without
// decoding the full pixel data.
func Decode(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// DataURI encodes raw image bytes as a base64 data URI. The format name is
// sniffed from the bytes; unknown formats fall back to octet-stream, which
// keeps the payload embeddable even if we cannot name it.
func DataURI(data []byte) string {
	mime := "application/octet-stream"
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		mime = "image/" + format
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI extracts the raw bytes from a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, ErrNotDataURI
	}
	idx := strings.Index(uri, ",")
	if idx < 0 {
		return nil, ErrNotDataURI
	}
	meta, payload := uri[len("data:"):idx], uri[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding %q", meta)
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URI payload: %w", err)
	}
	return b, nil
}
