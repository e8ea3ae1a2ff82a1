// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdrfw/fwnet/private/config"
)

type block struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
	err   error
}

func (b *block) InitDefaults() {
	if b.Count == 0 {
		b.Count = 3
	}
}

func (b *block) Validate() error { return b.err }

func (b *block) Sample(dst io.Writer, _ config.Path, ctx config.CtxMap) {
	config.WriteString(dst, "\nname = \""+ctx[config.ID]+"\"\n\ncount = 3\n")
}

func (b *block) ConfigName() string { return "block" }

// comment is a sampler without a table.
type comment string

func (c comment) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, string(c))
}

func TestWriteSample(t *testing.T) {
	var buf bytes.Buffer
	config.WriteSample(&buf, config.Path{"device"}, config.CtxMap{config.ID: "dev1"},
		comment("# top level\n"),
		&block{},
	)
	want := "# top level\n" +
		"\n[device.block]\n" +
		"    name = \"dev1\"\n" +
		"\n" +
		"    count = 3\n"
	assert.Equal(t, want, buf.String())
}

func TestPathExtend(t *testing.T) {
	p := config.Path{"a"}
	q := p.Extend("b")
	r := p.Extend("c")
	assert.Equal(t, config.Path{"a", "b"}, q)
	assert.Equal(t, config.Path{"a", "c"}, r)
	assert.Equal(t, config.Path{"a"}, p)
}

func TestValidateAll(t *testing.T) {
	assert.NoError(t, config.ValidateAll(&block{}, config.NoValidator{}))
	err := config.ValidateAll(&block{}, &block{err: assert.AnError})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInitAll(t *testing.T) {
	a, b := &block{}, &block{Count: 7}
	config.InitAll(a, b, config.NoDefaulter{})
	assert.Equal(t, 3, a.Count)
	assert.Equal(t, 7, b.Count)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("name = \"x\"\ncount = 2\n"), 0o644))
	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("nope = 1\n"), 0o644))

	var b block
	require.NoError(t, config.LoadFile(good, &b))
	assert.Equal(t, block{Name: "x", Count: 2}, b)

	assert.Error(t, config.LoadFile(unknown, &block{}), "unknown keys are rejected")
	assert.Error(t, config.LoadFile(filepath.Join(dir, "missing.toml"), &block{}))
}
