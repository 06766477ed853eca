// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

//go:build debug

package bnmc

import (
	"log"
	"os"
)

const _DEBUG bool = true
const _LOGLEVEL int = 1

// ******************************************************************************************************

func init() {
	log.SetOutput(os.Stdout)
}

// ******************************************************************************************************

// logTable prints the content of the cache, one line per computed entry.
func (c *Cache) logTable() {
	log.Printf("cache: %s\n", c.stat)
	for t, entries := range c.entries {
		for id, p := range entries {
			if p == notCached {
				continue
			}
			log.Printf("(%-3d, %-6d) %-12g | task: %d\n", t, id, p, c.slots[t][id])
		}
	}
}
