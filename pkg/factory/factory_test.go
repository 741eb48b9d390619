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

package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caas-team/plover/pkg/config"
	"github.com/caas-team/plover/pkg/datasource"
)

func TestNew(t *testing.T) {
	c, err := New(CategoryCompleteness, datasource.NewMock(), config.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, "completeness", c.Name())
	assert.Equal(t, []string{
		"table_completeness",
		"critical_fields",
		"person_completeness",
		"domain_completeness",
		"empty_tables",
	}, c.Checks())
}

func TestNew_UnknownCategory(t *testing.T) {
	_, err := New("latency", datasource.NewMock(), config.DefaultThresholds())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownChecker)
}

func TestNewAll(t *testing.T) {
	all := NewAll(datasource.NewMock(), config.DefaultThresholds())

	require.Len(t, all, 5)
	for category, c := range all {
		assert.Equal(t, string(category), c.Name())
		assert.NotEmpty(t, c.Checks())
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []Category{
		CategoryCompleteness,
		CategoryConceptMapping,
		CategoryReferential,
		CategoryStatistical,
		CategoryTemporal,
	}, Categories())
}

func TestParseCategory(t *testing.T) {
	category, err := ParseCategory("temporal")
	require.NoError(t, err)
	assert.Equal(t, CategoryTemporal, category)

	_, err = ParseCategory("dns")
	assert.ErrorIs(t, err, ErrUnknownChecker)
}
