// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package components

import "fmt"

// MergeWithRenaming merges src into dst, category by category. A component
// name already present in dst's category is never overwritten; the incoming
// one is stored under "name (1)", "name (2)" and so on. Non-category values
// in src replace dst's wholesale.
//
// dst is mutated and returned for chaining.
func MergeWithRenaming(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for category, value := range src {
		incoming, ok := value.(map[string]any)
		existing, have := dst[category].(map[string]any)
		if !ok || !have {
			dst[category] = value
			continue
		}
		for name, descriptor := range incoming {
			if _, taken := existing[name]; taken {
				name = nextFreeKey(existing, name)
			}
			existing[name] = descriptor
		}
	}
	return dst
}

// nextFreeKey finds the first "name (N)" not present in the category.
func nextFreeKey(category map[string]any, name string) string {
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)", name, counter)
		if _, taken := category[candidate]; !taken {
			return candidate
		}
	}
}
