// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog loads the set of installed input methods from a
// JSONC file (JSON with // and /* */ comments and trailing commas).
//
// A catalog is shared read-only by every per-user instance. Each user
// starts with the catalog's system methods enabled and may enable or
// disable others through the local control plane.
//
//	{
//	  "methods": [
//	    {
//	      "id": "org.example.latin/.LatinIME",
//	      "label": "Latin keyboard",
//	      "system": true,
//	      "default_subtype_id": 1,
//	      "subtypes": [
//	        {"id": 1, "locale": "en-US", "mode": "keyboard", "implicitly_selected": true},
//	      ],
//	    },
//	  ],
//	}
//
// [Catalog.Digest] is a BLAKE3 keyed hash over the deterministic CBOR
// encoding of the parsed methods, so reformatting or re-commenting the
// file does not change it. The daemon reports it in status output so
// operators can confirm which catalog a running router loaded.
package catalog
