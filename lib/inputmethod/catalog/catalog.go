// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/imrouter/lib/codec"
	"github.com/bureau-foundation/imrouter/lib/inputmethod"
)

// digestKey separates catalog digests from any other BLAKE3 use. The
// bytes are the ASCII domain name, zero-padded to 32.
var digestKey = [32]byte{
	'i', 'm', 'r', 'o', 'u', 't', 'e', 'r', '.', 'c', 'a', 't', 'a', 'l', 'o', 'g',
}

// Catalog is an immutable, validated list of installed input methods.
type Catalog struct {
	methods []inputmethod.InputMethodInfo
	index   map[inputmethod.MethodID]int
	digest  string
}

type file struct {
	Methods []inputmethod.InputMethodInfo `json:"methods"`
}

// Parse strips JSONC comments and trailing commas from data, decodes
// it, and validates the result.
func Parse(data []byte) (*Catalog, error) {
	var parsed file
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(parsed.Methods)
}

// ReadFile reads and parses a JSONC catalog from disk.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// New validates methods and builds a Catalog. The slice is copied.
func New(methods []inputmethod.InputMethodInfo) (*Catalog, error) {
	if err := validate(methods); err != nil {
		return nil, err
	}

	owned := make([]inputmethod.InputMethodInfo, len(methods))
	index := make(map[inputmethod.MethodID]int, len(methods))
	for i, method := range methods {
		method.Subtypes = append([]inputmethod.Subtype(nil), method.Subtypes...)
		owned[i] = method
		index[method.ID] = i
	}

	encoded, err := codec.Marshal(owned)
	if err != nil {
		return nil, fmt.Errorf("encoding catalog for digest: %w", err)
	}
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("catalog: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)

	return &Catalog{
		methods: owned,
		index:   index,
		digest:  hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func validate(methods []inputmethod.InputMethodInfo) error {
	var errs []error
	seen := make(map[inputmethod.MethodID]bool, len(methods))
	for i, method := range methods {
		if method.ID == "" {
			errs = append(errs, fmt.Errorf("methods[%d]: id is required", i))
			continue
		}
		if seen[method.ID] {
			errs = append(errs, fmt.Errorf("methods[%d]: duplicate id %q", i, method.ID))
		}
		seen[method.ID] = true

		subtypeIDs := make(map[int32]bool, len(method.Subtypes))
		for _, subtype := range method.Subtypes {
			if subtypeIDs[subtype.ID] {
				errs = append(errs, fmt.Errorf("method %q: duplicate subtype id %d", method.ID, subtype.ID))
			}
			subtypeIDs[subtype.ID] = true
		}
		if len(method.Subtypes) > 0 && !subtypeIDs[method.DefaultSubtypeID] {
			errs = append(errs, fmt.Errorf("method %q: default_subtype_id %d is not one of its subtypes", method.ID, method.DefaultSubtypeID))
		}
	}
	return errors.Join(errs...)
}

// Methods returns a copy of every method in catalog order.
func (c *Catalog) Methods() []inputmethod.InputMethodInfo {
	result := make([]inputmethod.InputMethodInfo, len(c.methods))
	for i, method := range c.methods {
		result[i] = cloneMethod(method)
	}
	return result
}

// Lookup returns a copy of the method with the given ID.
func (c *Catalog) Lookup(id inputmethod.MethodID) (inputmethod.InputMethodInfo, bool) {
	i, ok := c.index[id]
	if !ok {
		return inputmethod.InputMethodInfo{}, false
	}
	return cloneMethod(c.methods[i]), true
}

// SystemMethods returns the IDs of methods enabled by default, in
// catalog order.
func (c *Catalog) SystemMethods() []inputmethod.MethodID {
	var ids []inputmethod.MethodID
	for _, method := range c.methods {
		if method.System {
			ids = append(ids, method.ID)
		}
	}
	return ids
}

// Digest returns the hex BLAKE3 digest of the catalog contents.
func (c *Catalog) Digest() string { return c.digest }

// Len returns the number of methods.
func (c *Catalog) Len() int { return len(c.methods) }

func cloneMethod(method inputmethod.InputMethodInfo) inputmethod.InputMethodInfo {
	method.Subtypes = append([]inputmethod.Subtype(nil), method.Subtypes...)
	return method
}
