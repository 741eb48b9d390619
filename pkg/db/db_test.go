// plover
// (C) 2025, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package db

import (
	"reflect"
	"sync"
	"testing"

	"github.com/caas-team/plover/pkg/checks"
)

func TestNewInMemory(t *testing.T) {
	tests := []struct {
		name string
		want *InMemory
	}{
		{name: "Creates without nil pointers", want: &InMemory{data: sync.Map{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewInMemory(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewInMemory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInMemory_SaveAndGet(t *testing.T) {
	i := NewInMemory()

	saved := CategoryResult{
		Category: "completeness",
		Results:  map[string]checks.Result{"table_completeness": {Status: checks.StatusPass}},
		Summary:  checks.Summary{Total: 1, Passed: 1},
	}
	i.Save(saved)

	got, ok := i.Get("completeness")
	if !ok {
		t.Fatalf("Expected to find category %q", saved.Category)
	}
	if !reflect.DeepEqual(got, saved) {
		t.Fatalf("Get() = %v, want %v", got, saved)
	}

	if _, ok := i.Get("NOTFOUND"); ok {
		t.Errorf("Expected NOTFOUND to be absent")
	}
}

func TestInMemory_SaveReplaces(t *testing.T) {
	i := NewInMemory()

	i.Save(CategoryResult{Category: "temporal", Summary: checks.Summary{Total: 5, Failed: 2}})
	i.Save(CategoryResult{Category: "temporal", Summary: checks.Summary{Total: 5, Passed: 5}})

	got, ok := i.Get("temporal")
	if !ok {
		t.Fatal("Expected to find category temporal")
	}
	if got.Summary.Failed != 0 || got.Summary.Passed != 5 {
		t.Errorf("Expected the second save to replace the first, got %+v", got.Summary)
	}
}

func TestInMemory_List(t *testing.T) {
	i := NewInMemory()
	i.Save(CategoryResult{Category: "completeness"})
	i.Save(CategoryResult{Category: "referential"})

	list := i.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(list))
	}
	for _, category := range []string{"completeness", "referential"} {
		if _, ok := list[category]; !ok {
			t.Errorf("List() is missing category %q", category)
		}
	}
}
