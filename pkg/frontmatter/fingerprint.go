// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

const (
	FieldTitle       = "title"
	FieldUID         = "uid"
	FieldCreated     = "created"
	FieldUpdated     = "updated"
	FieldFingerprint = mdfp.FingerprintField
)

// 🔏 Fingerprint hashes the header (minus volatile fields) and body.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case FieldFingerprint, FieldUID, FieldUpdated:
			continue
		}
		hashed[k] = v
	}

	header := ""
	if len(hashed) > 0 {
		raw, err := Serialize(hashed)
		if err != nil {
			return "", err
		}
		header = strings.TrimSuffix(string(raw), "\n")
	}

	return mdfp.CalculateFingerprintFromParts(header, string(body)), nil
}
